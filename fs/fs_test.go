package fs

import (
	"testing"

	"github.com/fingon/go-litefs/storage"
	"github.com/stvp/assert"
)

func newTestFS(t *testing.T, blockSize, blockCount, programBlockSize int) *FS {
	dev := storage.MemDevice{}.Init(blockSize, blockCount)
	f, err := Format(dev, programBlockSize)
	assert.Nil(t, err)
	return f
}

func TestFormatWritesBothRootHalvesWithIncreasingRevisions(t *testing.T) {
	dev := storage.MemDevice{}.Init(512, 64)
	f, err := Format(dev, 512)
	assert.Nil(t, err)

	ps, err := storage.ReadMetaPair(dev, 512, storage.RootPair)
	assert.Nil(t, err)
	assert.Equal(t, ps.Block.RevisionCount, uint32(2))

	sb := f.Info()
	assert.Equal(t, sb.Version, storage.CurrentVersion)
	assert.Equal(t, sb.BlockSize, uint32(512))
	assert.Equal(t, sb.BlockCount, uint32(64))

	entries := ps.Block.CompactedEntries()
	name, found := storage.NameOf(entries, 0)
	assert.True(t, found)
	assert.Equal(t, string(name.Payload), storage.MagicName)
}

func TestConnectRejectsMismatchedGeometry(t *testing.T) {
	dev := storage.MemDevice{}.Init(512, 64)
	_, err := Format(dev, 512)
	assert.Nil(t, err)

	wrongDev := storage.MemDevice{}.Init(512, 32)
	// Fake mismatched geometry by pointing a second FS handle at a
	// device whose block count disagrees with the recorded superblock:
	// copy the formatted image's root blocks onto the smaller device.
	buf := make([]byte, 512)
	assert.Nil(t, dev.ReadBlock(0, buf))
	assert.Nil(t, wrongDev.ProgramBlock(0, buf))
	assert.Nil(t, dev.ReadBlock(1, buf))
	assert.Nil(t, wrongDev.ProgramBlock(1, buf))

	_, err = Connect(wrongDev, 512)
	assert.Equal(t, err, ErrBadGeometry)
}

func TestConnectRoundTrip(t *testing.T) {
	dev := storage.MemDevice{}.Init(512, 64)
	_, err := Format(dev, 512)
	assert.Nil(t, err)

	f2, err := Connect(dev, 512)
	assert.Nil(t, err)
	assert.Equal(t, f2.Info().BlockCount, uint32(64))

	entries, err := f2.List("/")
	assert.Nil(t, err)
	assert.Equal(t, len(entries), 0)
}

func TestFsckOnFreshFormatCountsOnlyRootPair(t *testing.T) {
	f := newTestFS(t, 512, 64, 512)
	report := f.Fsck()
	assert.Equal(t, report.BlockCount, 64)
	assert.Equal(t, report.LiveBlocks, 2)
	assert.Equal(t, report.FreeBlocks, 62)
}
