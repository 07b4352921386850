/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 */

// fs turns the tag/entry/commit/block/metadata-pair/CTZ machinery of
// the storage package into a path-addressed filesystem: directory
// trees made of hard-tail-chained metadata pairs, and files stored
// either inline or as CTZ skip-lists.
package fs

import (
	"errors"
	"fmt"

	"github.com/fingon/go-litefs/mlog"
	"github.com/fingon/go-litefs/storage"
)

var (
	ErrNotFound          = errors.New("fs: no such file or directory")
	ErrExists            = errors.New("fs: already exists")
	ErrNotDirectory      = errors.New("fs: not a directory")
	ErrIsDirectory       = errors.New("fs: is a directory")
	ErrDirectoryNotEmpty = errors.New("fs: directory not empty")
	ErrBadGeometry       = errors.New("fs: device geometry does not match superblock")
)

// FS is a mounted filesystem: a device, the program_block_size it was
// formatted with, and the block allocator built on top of both.
type FS struct {
	dev              storage.Device
	programBlockSize int
	sb               storage.Superblock
	alloc            *storage.Allocator
}

// Kind distinguishes a regular file from a sub-directory in listings.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
)

func kindFromTag(chunk uint8) Kind {
	if chunk == storage.NameKindDir {
		return KindDir
	}
	return KindFile
}

// DirEntry is one row of a List() result.
type DirEntry struct {
	Name string
	Kind Kind
}

// Format initializes a fresh filesystem image: it writes the
// superblock commit to both halves of the root pair (so a crash
// between the two writes still leaves a readable, if younger-looking,
// root), matching the scenario real littlefs formats to: revision 1
// on the first physical block, 2 on the second.
func Format(dev storage.Device, programBlockSize int) (*FS, error) {
	sb := storage.Superblock{
		Version:    storage.CurrentVersion,
		BlockSize:  uint32(dev.BlockSize()),
		BlockCount: uint32(dev.BlockCount()),
		NameMax:    255,
		FileMax:    1 << 31,
		AttrMax:    1022,
	}
	ps := storage.NewPairState(storage.RootPair)
	ps, result, err := ps.Commit(dev, programBlockSize, storage.SuperblockEntries(sb))
	if err != nil {
		return nil, err
	}
	if result != storage.CommitOK {
		return nil, fmt.Errorf("fs: superblock does not fit in one block")
	}
	ps, result, err = ps.Commit(dev, programBlockSize, nil)
	if err != nil {
		return nil, err
	}
	if result != storage.CommitOK {
		return nil, fmt.Errorf("fs: superblock does not fit in one block")
	}
	mlog.Printf2("fs/fs", "Format: wrote superblock, block_size=%d block_count=%d", sb.BlockSize, sb.BlockCount)
	return &FS{
		dev:              dev,
		programBlockSize: programBlockSize,
		sb:               sb,
		alloc:            storage.NewAllocator(dev, programBlockSize, storage.RootPair),
	}, nil
}

// Connect mounts an already-formatted image, validating that the
// device's geometry agrees with the stored superblock.
func Connect(dev storage.Device, programBlockSize int) (*FS, error) {
	ps, err := storage.ReadMetaPair(dev, programBlockSize, storage.RootPair)
	if err != nil {
		return nil, err
	}
	sb, ok := storage.DecodeSuperblockFrom(ps.Block.CompactedEntries())
	if !ok {
		return nil, storage.ErrCorrupt
	}
	if int(sb.BlockSize) != dev.BlockSize() || int(sb.BlockCount) != dev.BlockCount() {
		return nil, ErrBadGeometry
	}
	mlog.Printf2("fs/fs", "Connect: mounted, block_size=%d block_count=%d", sb.BlockSize, sb.BlockCount)
	return &FS{
		dev:              dev,
		programBlockSize: programBlockSize,
		sb:               sb,
		alloc:            storage.NewAllocator(dev, programBlockSize, storage.RootPair),
	}, nil
}

// Info returns the mounted filesystem's decoded superblock.
func (f *FS) Info() storage.Superblock { return f.sb }

// FsckReport summarizes a read-only reachability pass.
type FsckReport struct {
	BlockCount int
	LiveBlocks int
	FreeBlocks int
}

// Fsck walks every block reachable from the root directory (the same
// scan the allocator uses to find free blocks) and reports basic
// liveness counts without mutating anything.
func (f *FS) Fsck() FsckReport {
	live := f.alloc.ScanLive()
	return FsckReport{
		BlockCount: f.dev.BlockCount(),
		LiveBlocks: len(live),
		FreeBlocks: f.dev.BlockCount() - len(live),
	}
}
