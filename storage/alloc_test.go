package storage

import (
	"testing"

	"github.com/stvp/assert"
)

func TestAllocatorNeverHandsOutRootBlocks(t *testing.T) {
	dev := newTestDevice(128, 16)
	alloc := NewAllocator(dev, 32, RootPair)
	for i := 0; i < 10; i++ {
		addr, err := alloc.GetBlock()
		assert.Nil(t, err)
		assert.True(t, addr != 0 && addr != 1)
	}
}

// TestAllocatorExhaustion covers the "Live = all blocks" boundary from
// the specification: once every block on the device is reachable from
// the root, GetBlock must report ErrNoSpace.
func TestAllocatorExhaustion(t *testing.T) {
	dev := newTestDevice(128, 4)
	const programBlockSize = 32

	childPair := Pair{2, 3}
	childPS := NewPairState(childPair)
	_, _, err := childPS.Commit(dev, programBlockSize, nil)
	assert.Nil(t, err)

	rootPS := NewPairState(RootPair)
	_, _, err = rootPS.Commit(dev, programBlockSize, []Entry{
		NameEntry(1, NameKindDir, "child"),
		DirStructEntry(1, childPair),
	})
	assert.Nil(t, err)

	alloc := NewAllocator(dev, programBlockSize, RootPair)
	_, err = alloc.GetBlock()
	assert.Equal(t, err, ErrNoSpace)
}

func TestScanLiveFollowsHardTailAndDirAndCTZ(t *testing.T) {
	dev := newTestDevice(128, 64)
	const programBlockSize = 32

	// A child directory pair with a CTZ file inside it.
	childPair := Pair{4, 5}
	alloc := NewAllocator(dev, programBlockSize, RootPair)
	dataSize := ctzBlockDataSize(dev.BlockSize())
	head, size, err := CTZWrite(dev, func() (BlockAddr, error) { return nextFree(dev, map[BlockAddr]bool{0: true, 1: true, 4: true, 5: true}), nil }, make([]byte, dataSize*2+5))
	assert.Nil(t, err)

	childPS := NewPairState(childPair)
	childPS, _, err = childPS.Commit(dev, programBlockSize, []Entry{
		NameEntry(1, NameKindFile, "big"),
		CTZStructEntry(1, head, size),
	})
	assert.Nil(t, err)

	rootPS := NewPairState(RootPair)
	rootPS, _, err = rootPS.Commit(dev, programBlockSize, []Entry{
		NameEntry(1, NameKindDir, "child"),
		DirStructEntry(1, childPair),
	})
	assert.Nil(t, err)
	_ = rootPS
	_ = childPS

	live := alloc.ScanLive()
	assert.True(t, live[0] && live[1])
	assert.True(t, live[4] && live[5])
	ctzBlocks := CTZBlocks(dev, head, size)
	assert.Equal(t, len(ctzBlocks), 3)
	for _, b := range ctzBlocks {
		assert.True(t, live[b])
	}
}

// nextFree is a tiny linear scanner used only to seed a CTZ chain in a
// test without going through the real Allocator (which would rescan
// reachability before the root/child pairs exist).
func nextFree(dev Device, used map[BlockAddr]bool) BlockAddr {
	for i := BlockAddr(0); int(i) < dev.BlockCount(); i++ {
		if !used[i] {
			used[i] = true
			return i
		}
	}
	panic("out of blocks")
}

func TestAllocatorBiasAlternatesAcrossRefills(t *testing.T) {
	dev := newTestDevice(128, 8)
	alloc := NewAllocator(dev, 32, RootPair)
	assert.Equal(t, alloc.bias, biasLower)
	_, err := alloc.GetBlock()
	assert.Nil(t, err)
	assert.Equal(t, alloc.bias, biasUpper)
}
