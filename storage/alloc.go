package storage

import (
	"sort"

	"github.com/fingon/go-litefs/mlog"
)

// scanBias alternates which half of the block address space the
// allocator's lookahead buffer is refilled from, so long-lived
// allocations spread across the device instead of hammering the
// lowest-numbered free blocks forever.
type scanBias int

const (
	biasLower scanBias = iota
	biasUpper
)

// Allocator hands out free block addresses by scanning for blocks
// unreachable from the root directory. It holds a small lookahead
// buffer of known-free addresses and rescans reachability only when
// that buffer is exhausted.
type Allocator struct {
	dev              Device
	programBlockSize int
	root             Pair
	bias             scanBias
	free             []BlockAddr
}

func NewAllocator(dev Device, programBlockSize int, root Pair) *Allocator {
	return &Allocator{dev: dev, programBlockSize: programBlockSize, root: root, bias: biasLower}
}

// GetBlock returns a currently-unreferenced block address, refilling
// the lookahead buffer with a fresh reachability scan if needed.
func (self *Allocator) GetBlock() (BlockAddr, error) {
	if len(self.free) == 0 {
		if err := self.refill(); err != nil {
			return 0, err
		}
		if len(self.free) == 0 {
			return 0, ErrNoSpace
		}
	}
	addr := self.free[0]
	self.free = self.free[1:]
	mlog.Printf2("storage/alloc", "GetBlock -> %d (%d left in lookahead)", addr, len(self.free))
	return addr, nil
}

func (self *Allocator) refill() error {
	live := self.ScanLive()
	n := self.dev.BlockCount()
	mid := n / 2
	lo, hi := 0, mid
	if self.bias == biasUpper {
		lo, hi = mid, n
	}
	if self.bias == biasLower {
		self.bias = biasUpper
	} else {
		self.bias = biasLower
	}
	var candidates []BlockAddr
	for i := lo; i < hi; i++ {
		addr := BlockAddr(i)
		if !live[addr] {
			candidates = append(candidates, addr)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	self.free = candidates
	mlog.Printf2("storage/alloc", "refill: bias-scanned [%d,%d) found %d free", lo, hi, len(candidates))
	return nil
}

// ScanLive walks every directory reachable from the root, following
// hard-tail chains, directory-struct pointers, and CTZ file chains,
// and returns the set of block addresses still in use. It is
// deliberately tolerant of read/parse failures along the way: an
// unreachable-because-corrupt subtree just fails to mark its own
// blocks live, which is the conservative (never-reuse-something-
// still-needed) direction to err in.
func (self *Allocator) ScanLive() map[BlockAddr]bool {
	live := map[BlockAddr]bool{}
	visited := map[Pair]bool{}
	self.walkDirectory(self.root, live, visited)
	return live
}

func (self *Allocator) walkDirectory(p Pair, live map[BlockAddr]bool, visited map[Pair]bool) {
	if visited[p] {
		return
	}
	visited[p] = true
	live[p[0]] = true
	live[p[1]] = true

	ps, err := ReadMetaPair(self.dev, self.programBlockSize, p)
	if err != nil {
		mlog.Printf2("storage/alloc", "walkDirectory %v: read failed: %v", p, err)
		return
	}
	for _, e := range ps.Block.CompactedEntries() {
		switch {
		case e.Tag.IsTail():
			if child, ok := decodePair(e.Payload); ok {
				self.walkDirectory(child, live, visited)
			}
		case e.Tag.IsStruct() && e.Tag.Chunk == StructDir:
			if child, ok := decodePair(e.Payload); ok {
				self.walkDirectory(child, live, visited)
			}
		case e.Tag.IsStruct() && e.Tag.Chunk == StructCTZ:
			if head, size, ok := decodeCTZPointer(e.Payload); ok {
				for _, addr := range CTZBlocks(self.dev, head, size) {
					live[addr] = true
				}
			}
		}
	}
}
