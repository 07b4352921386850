package storage

import (
	"bytes"
	"testing"

	"github.com/stvp/assert"
)

func TestNPointersOf(t *testing.T) {
	const dataSize = 100
	_, _, p0 := ctzIndexOf(0, dataSize)
	assert.Equal(t, p0, 0)
	_, _, p1 := ctzIndexOf(dataSize, dataSize) // index 1
	assert.Equal(t, p1, 1)                     // ctz(1)+1 = 1
	_, _, p2 := ctzIndexOf(dataSize*2, dataSize) // index 2
	assert.Equal(t, p2, 2)                       // ctz(2)+1 = 2
	_, _, p3 := ctzIndexOf(dataSize*3, dataSize) // index 3
	assert.Equal(t, p3, 1)                       // ctz(3)+1 = 1
	_, _, p4 := ctzIndexOf(dataSize*4, dataSize) // index 4
	assert.Equal(t, p4, 3)                       // ctz(4)+1 = 3
}

func writeAndReadBack(t *testing.T, dev Device, content []byte) []byte {
	alloc := NewAllocator(dev, 32, RootPair)
	// Reserve the root pair so the allocator never hands it out.
	head, size, err := CTZWrite(dev, alloc.GetBlock, content)
	assert.Nil(t, err)
	assert.Equal(t, int(size), len(content))

	out := make([]byte, size)
	off := 0
	for off < int(size) {
		n, err := CTZReadAt(dev, head, size, off, out[off:])
		assert.Nil(t, err)
		if n == 0 {
			break
		}
		off += n
	}
	return out[:off]
}

func TestCTZWriteReadRoundTripVariousSizes(t *testing.T) {
	dev := newTestDevice(128, 4096)
	sizes := []int{0, 1, 31, 32, 33, 1000, 4000, 20000}
	for _, sz := range sizes {
		content := make([]byte, sz)
		for i := range content {
			content[i] = byte(i % 251)
		}
		got := writeAndReadBack(t, dev, content)
		assert.True(t, bytes.Equal(got, content))
	}
}

func TestCTZWriteSingleBlockForSmallFile(t *testing.T) {
	dev := newTestDevice(512, 64)
	alloc := NewAllocator(dev, 32, RootPair)
	content := []byte("hello ctz")
	head, size, err := CTZWrite(dev, alloc.GetBlock, content)
	assert.Nil(t, err)
	blocks := CTZBlocks(dev, head, size)
	assert.Equal(t, len(blocks), 1)
	assert.Equal(t, blocks[0], head)
}

func TestCTZBlocksCountsMultipleBlocks(t *testing.T) {
	dev := newTestDevice(128, 4096)
	alloc := NewAllocator(dev, 32, RootPair)
	dataSize := ctzBlockDataSize(dev.BlockSize())
	content := make([]byte, dataSize*4+17)
	head, size, err := CTZWrite(dev, alloc.GetBlock, content)
	assert.Nil(t, err)
	blocks := CTZBlocks(dev, head, size)
	assert.Equal(t, len(blocks), 5)
}

func TestCTZReadAtRandomOffsets(t *testing.T) {
	dev := newTestDevice(128, 4096)
	alloc := NewAllocator(dev, 32, RootPair)
	dataSize := ctzBlockDataSize(dev.BlockSize())
	content := make([]byte, dataSize*5+40)
	for i := range content {
		content[i] = byte(i % 256)
	}
	head, size, err := CTZWrite(dev, alloc.GetBlock, content)
	assert.Nil(t, err)

	offsets := []int{0, 1, dataSize - 1, dataSize, dataSize + 1, dataSize*3 + 5, int(size) - 1}
	for _, off := range offsets {
		dst := make([]byte, 5)
		n, err := CTZReadAt(dev, head, size, off, dst)
		assert.Nil(t, err)
		assert.True(t, bytes.Equal(dst[:n], content[off:off+n]))
	}
}
