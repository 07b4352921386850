/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 */

// fuseops adapts fs.FS onto github.com/hanwen/go-fuse/v2's node-based
// filesystem API, the same split the teacher keeps between its
// path/tree logic (fs/fs.go) and the raw FUSE callback glue
// (fs/ops.go) — except targeting the v2 fusefs.Inode style instead of
// the teacher's v1 RawFileSystem.
package fuseops

import (
	"context"
	"path"
	"syscall"
	"time"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/fingon/go-litefs/fs"
	"github.com/fingon/go-litefs/mlog"
	"github.com/fingon/go-litefs/util"
)

// Node is one FUSE inode: a path into the mounted fs.FS. Directories
// and files share the same type; kind distinguishes them for
// Getattr.
type Node struct {
	fusefs.Inode

	fsys *fs.FS
	path string

	mu      util.MutexLocked
	kind    fs.Kind
	pending []byte // buffered content between Create/Write and Flush
	dirty   bool
}

var _ fusefs.InodeEmbedder = (*Node)(nil)
var _ fusefs.NodeLookuper = (*Node)(nil)
var _ fusefs.NodeGetattrer = (*Node)(nil)
var _ fusefs.NodeReaddirer = (*Node)(nil)
var _ fusefs.NodeOpener = (*Node)(nil)
var _ fusefs.NodeReader = (*Node)(nil)
var _ fusefs.NodeWriter = (*Node)(nil)
var _ fusefs.NodeFlusher = (*Node)(nil)
var _ fusefs.NodeCreater = (*Node)(nil)
var _ fusefs.NodeMkdirer = (*Node)(nil)
var _ fusefs.NodeUnlinker = (*Node)(nil)
var _ fusefs.NodeRmdirer = (*Node)(nil)

// Root constructs the mountpoint's root node for fusefs.Mount /
// fusefs.NewNodeFS.
func Root(fsys *fs.FS) *Node {
	return &Node{fsys: fsys, path: "/", kind: fs.KindDir}
}

func childPath(parent, name string) string {
	return path.Clean(path.Join(parent, name))
}

func errnoOf(err error) syscall.Errno {
	switch err {
	case nil:
		return 0
	case fs.ErrNotFound:
		return syscall.ENOENT
	case fs.ErrExists:
		return syscall.EEXIST
	case fs.ErrNotDirectory:
		return syscall.ENOTDIR
	case fs.ErrIsDirectory:
		return syscall.EISDIR
	case fs.ErrDirectoryNotEmpty:
		return syscall.ENOTEMPTY
	default:
		return syscall.EIO
	}
}

func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	cp := childPath(n.path, name)
	mlog.Printf2("fuseops/fuseops", "Lookup %s", cp)
	entries, err := n.fsys.List(n.path)
	if err != nil {
		return nil, errnoOf(err)
	}
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		child := &Node{fsys: n.fsys, path: cp, kind: e.Kind}
		fillAttr(&out.Attr, e.Kind, childSizeHint(n, e))
		mode := uint32(fuse.S_IFREG | 0644)
		if e.Kind == fs.KindDir {
			mode = fuse.S_IFDIR | 0755
		}
		return n.NewInode(ctx, child, fusefs.StableAttr{Mode: mode}), 0
	}
	return nil, syscall.ENOENT
}

func childSizeHint(n *Node, e fs.DirEntry) uint64 {
	if e.Kind == fs.KindDir {
		return 0
	}
	data, err := n.fsys.Get(childPath(n.path, e.Name))
	if err != nil {
		return 0
	}
	return uint64(len(data))
}

func fillAttr(a *fuse.Attr, kind fs.Kind, size uint64) {
	now := time.Now()
	a.Size = size
	a.SetTimes(&now, &now, &now)
	if kind == fs.KindDir {
		a.Mode = fuse.S_IFDIR | 0755
	} else {
		a.Mode = fuse.S_IFREG | 0644
	}
}

func (n *Node) Getattr(ctx context.Context, f fusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	var size uint64
	if n.kind == fs.KindFile {
		data, err := n.fsys.Get(n.path)
		if err != nil {
			return errnoOf(err)
		}
		size = uint64(len(data))
	}
	fillAttr(&out.Attr, n.kind, size)
	return 0
}

func (n *Node) Readdir(ctx context.Context) (fusefs.DirStream, syscall.Errno) {
	entries, err := n.fsys.List(n.path)
	if err != nil {
		return nil, errnoOf(err)
	}
	list := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := uint32(fuse.S_IFREG)
		if e.Kind == fs.KindDir {
			mode = fuse.S_IFDIR
		}
		list = append(list, fuse.DirEntry{Name: e.Name, Mode: mode})
	}
	return fusefs.NewListDirStream(list), 0
}

func (n *Node) Open(ctx context.Context, flags uint32) (fusefs.FileHandle, uint32, syscall.Errno) {
	return nil, 0, 0
}

func (n *Node) Read(ctx context.Context, f fusefs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.fsys.Get(n.path)
	if err != nil {
		return nil, errnoOf(err)
	}
	if off >= int64(len(data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return fuse.ReadResultData(data[off:end]), 0
}

// Write buffers into memory (loading the existing content on first
// touch) and defers the actual Set() to Flush, mirroring how small,
// single-writer FUSE filesystems in the pack avoid a partial-write
// commit per syscall.
func (n *Node) Write(ctx context.Context, f fusefs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	defer n.mu.Locked()()
	if n.pending == nil {
		existing, err := n.fsys.Get(n.path)
		if err != nil && err != fs.ErrNotFound {
			return 0, errnoOf(err)
		}
		n.pending = append([]byte(nil), existing...)
	}
	end := off + int64(len(data))
	if end > int64(len(n.pending)) {
		grown := make([]byte, end)
		copy(grown, n.pending)
		n.pending = grown
	}
	copy(n.pending[off:end], data)
	n.dirty = true
	return uint32(len(data)), 0
}

func (n *Node) Flush(ctx context.Context, f fusefs.FileHandle) syscall.Errno {
	defer n.mu.Locked()()
	if !n.dirty {
		return 0
	}
	if err := n.fsys.Set(n.path, n.pending); err != nil {
		return errnoOf(err)
	}
	n.dirty = false
	mlog.Printf2("fuseops/fuseops", "Flush %s: %d bytes", n.path, len(n.pending))
	return 0
}

func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fusefs.Inode, fusefs.FileHandle, uint32, syscall.Errno) {
	cp := childPath(n.path, name)
	if err := n.fsys.Set(cp, nil); err != nil {
		return nil, nil, 0, errnoOf(err)
	}
	child := &Node{fsys: n.fsys, path: cp, kind: fs.KindFile}
	fillAttr(&out.Attr, fs.KindFile, 0)
	inode := n.NewInode(ctx, child, fusefs.StableAttr{Mode: fuse.S_IFREG | 0644})
	return inode, nil, 0, 0
}

func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	cp := childPath(n.path, name)
	if err := n.fsys.Mkdir(cp); err != nil {
		return nil, errnoOf(err)
	}
	child := &Node{fsys: n.fsys, path: cp, kind: fs.KindDir}
	fillAttr(&out.Attr, fs.KindDir, 0)
	return n.NewInode(ctx, child, fusefs.StableAttr{Mode: fuse.S_IFDIR | 0755}), 0
}

func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return errnoOf(n.fsys.Delete(childPath(n.path, name)))
}

func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return errnoOf(n.fsys.Delete(childPath(n.path, name)))
}
