package storage

import (
	"encoding/binary"
	"math/bits"
)

// ctzHeaderSlots is the number of back-pointer slots reserved in
// every CTZ block's header. A block at skip-list index n only uses
// trailingZeros(n)+1 of them, but fixing the header size (rather than
// growing it with the popcount/index math real littlefs uses)
// decouples "how many bytes of content fit in this block" from "which
// block this is", which keeps the read/write/scan code in this file
// a straight division instead of the closed-form index formula.
// Sixteen slots cover hops of up to 2^15 blocks; a block whose index
// would need more keeps only the first sixteen (ctzIndexOf caps the
// count) and reads take shorter hops past it. The header is
// 4+16*4 = 68 bytes, so CTZ blocks must be larger than that.
const ctzHeaderSlots = 16

func ctzHeaderSize() int { return 4 + ctzHeaderSlots*4 }

func ctzBlockDataSize(blockSize int) int { return blockSize - ctzHeaderSize() }

// ctzIndexOf returns the 0-based skip-list block index covering
// logical offset off, the offset within that block's data region, and
// the number of back-pointers the block at that index carries.
func ctzIndexOf(off, dataSize int) (index, within, pointers int) {
	index = off / dataSize
	within = off % dataSize
	if index == 0 {
		return 0, within, 0
	}
	pointers = bits.TrailingZeros(uint(index)) + 1
	if pointers > ctzHeaderSlots {
		pointers = ctzHeaderSlots
	}
	return index, within, pointers
}

func readBackPointer(buf []byte, slot int) BlockAddr {
	off := 4 + slot*4
	return BlockAddr(binary.LittleEndian.Uint32(buf[off : off+4]))
}

func writeCTZHeader(buf []byte, pointers []BlockAddr) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(pointers)))
	for i, p := range pointers {
		off := 4 + i*4
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(p))
	}
}

// CTZReadAt reads the CTZ file identified by (head, size), where head
// points at the file's *last* block, starting at logical offset off
// into dst. It walks back-pointers down from the last block to the
// block containing off.
func CTZReadAt(dev Device, head BlockAddr, size uint32, off int, dst []byte) (int, error) {
	if off >= int(size) || len(dst) == 0 {
		return 0, nil
	}
	dataSize := ctzBlockDataSize(dev.BlockSize())
	lastIndex, _, _ := ctzIndexOf(int(size)-1, dataSize)
	targetIndex, within, targetPointers := ctzIndexOf(off, dataSize)

	addr := head
	curIndex := lastIndex
	buf := make([]byte, dev.BlockSize())
	for curIndex > targetIndex {
		if err := dev.ReadBlock(addr, buf); err != nil {
			return 0, err
		}
		_, _, pointers := ctzIndexOf(curIndex, dataSize)
		skip := curIndex - targetIndex
		hop := bits.Len(uint(skip)) - 1
		if hop >= pointers {
			hop = pointers - 1
		}
		if hop < 0 {
			hop = 0
		}
		addr = readBackPointer(buf, hop)
		curIndex -= 1 << uint(hop)
	}
	if err := dev.ReadBlock(addr, buf); err != nil {
		return 0, err
	}
	_ = targetPointers
	headerSize := ctzHeaderSize()
	avail := dataSize - within
	remaining := int(size) - off
	want := len(dst)
	if want > avail {
		want = avail
	}
	if want > remaining {
		want = remaining
	}
	copy(dst[:want], buf[headerSize+within:headerSize+within+want])
	return want, nil
}

// CTZWrite writes content as a brand new CTZ skip-list file, one
// block per dataSize-sized chunk (always at least one block, even for
// an empty file, so every file has a head pointer). alloc must return
// a fresh, currently-unreferenced block address on each call.
func CTZWrite(dev Device, alloc func() (BlockAddr, error), content []byte) (head BlockAddr, size uint32, err error) {
	blockSize := dev.BlockSize()
	dataSize := ctzBlockDataSize(blockSize)
	headerSize := ctzHeaderSize()

	var history []BlockAddr
	pos := 0
	index := 0
	for {
		end := pos + dataSize
		if end > len(content) {
			end = len(content)
		}
		_, _, pointers := ctzIndexOf(index, dataSize)
		addr, aerr := alloc()
		if aerr != nil {
			return 0, 0, aerr
		}
		buf := make([]byte, blockSize)
		backPtrs := make([]BlockAddr, pointers)
		for i := 0; i < pointers; i++ {
			backPtrs[i] = history[len(history)-(1<<uint(i))]
		}
		writeCTZHeader(buf, backPtrs)
		copy(buf[headerSize:], content[pos:end])
		if err := dev.ProgramBlock(addr, buf); err != nil {
			return 0, 0, err
		}
		history = append(history, addr)
		pos = end
		index++
		if pos >= len(content) {
			break
		}
	}
	return history[len(history)-1], uint32(len(content)), nil
}

// CTZBlocks returns every block address reachable from a CTZ file's
// head pointer, used by the allocator's reachability scan. It walks
// pointer slot 0 one block at a time rather than taking the larger
// skip-list hops CTZReadAt uses for random access: slot 0 always
// points at index-1, so a sequential walk is the only traversal
// guaranteed to visit every physical block the file occupies, not
// just the shortest path down to block 0. A read failure partway
// through is treated as a dead end rather than a hard error, so a
// damaged file only loses liveness for the blocks beyond the failure.
func CTZBlocks(dev Device, head BlockAddr, size uint32) []BlockAddr {
	if size == 0 {
		return []BlockAddr{head}
	}
	dataSize := ctzBlockDataSize(dev.BlockSize())
	lastIndex, _, _ := ctzIndexOf(int(size)-1, dataSize)
	addr := head
	curIndex := lastIndex
	buf := make([]byte, dev.BlockSize())
	var out []BlockAddr
	for {
		out = append(out, addr)
		if curIndex == 0 {
			break
		}
		if err := dev.ReadBlock(addr, buf); err != nil {
			break
		}
		addr = readBackPointer(buf, 0)
		curIndex--
	}
	return out
}
