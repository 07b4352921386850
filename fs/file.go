package fs

import (
	"github.com/fingon/go-litefs/mlog"
	"github.com/fingon/go-litefs/storage"
)

// inlineThreshold returns the largest file size still stored inline
// in its directory entry rather than as a CTZ skip-list.
func (f *FS) inlineThreshold() int {
	return f.dev.BlockSize() / storage.InlineThresholdDivisor
}

// Get returns the full content of the file at path.
func (f *FS) Get(path string) ([]byte, error) {
	parentPair, name, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	parent, err := f.readChain(parentPair)
	if err != nil {
		return nil, err
	}
	entries := parent.entries()
	id, kind, found := storage.FindIDByName(entries, name)
	if !found {
		return nil, ErrNotFound
	}
	if kind != storage.NameKindFile {
		return nil, ErrIsDirectory
	}
	se, found := storage.StructOf(entries, id)
	if !found {
		return nil, storage.ErrCorrupt
	}
	switch se.Tag.Chunk {
	case storage.StructInline:
		return append([]byte(nil), se.Payload...), nil
	case storage.StructCTZ:
		head, size, ok := storage.DecodeCTZPointer(se.Payload)
		if !ok {
			return nil, storage.ErrCorrupt
		}
		return f.readCTZ(head, size)
	default:
		return nil, storage.ErrCorrupt
	}
}

func (f *FS) readCTZ(head storage.BlockAddr, size uint32) ([]byte, error) {
	out := make([]byte, size)
	off := 0
	for off < int(size) {
		n, err := storage.CTZReadAt(f.dev, head, size, off, out[off:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		off += n
	}
	return out[:off], nil
}

// Set creates or overwrites the file at path with data, choosing
// between an inline entry and a CTZ skip-list based on size.
func (f *FS) Set(path string, data []byte) error {
	parentPair, name, err := f.resolve(path)
	if err != nil {
		return err
	}
	parent, err := f.readChain(parentPair)
	if err != nil {
		return err
	}
	entries := parent.entries()
	id, kind, found := storage.FindIDByName(entries, name)
	if found && kind != storage.NameKindFile {
		return ErrIsDirectory
	}
	if !found {
		id = storage.MaxID(entries) + 1
	}

	var structEntry storage.Entry
	if len(data) <= f.inlineThreshold() {
		structEntry = storage.InlineStructEntry(id, data)
	} else {
		head, size, err := storage.CTZWrite(f.dev, f.alloc.GetBlock, data)
		if err != nil {
			return err
		}
		structEntry = storage.CTZStructEntry(id, head, size)
	}

	mlog.Printf2("fs/file", "Set %s: id=%d bytes=%d inline=%v", path, id, len(data), structEntry.Tag.Chunk == storage.StructInline)
	return f.commit(parent, []storage.Entry{
		storage.NameEntry(id, storage.NameKindFile, name),
		structEntry,
	})
}

// Delete removes the file or empty directory at path. Deleting a path
// whose basename does not exist in its parent succeeds idempotently
// rather than reporting ErrNotFound (a missing parent directory still
// fails, since resolve/readChain couldn't find anything to check).
func (f *FS) Delete(path string) error {
	parentPair, name, err := f.resolve(path)
	if err != nil {
		return err
	}
	parent, err := f.readChain(parentPair)
	if err != nil {
		return err
	}
	entries := parent.entries()
	id, kind, found := storage.FindIDByName(entries, name)
	if !found {
		return nil
	}
	if kind == storage.NameKindDir {
		se, found := storage.StructOf(entries, id)
		if !found {
			return storage.ErrCorrupt
		}
		childPair, ok := storage.DecodePair(se.Payload)
		if !ok {
			return storage.ErrCorrupt
		}
		childChain, err := f.readChain(childPair)
		if err != nil {
			return err
		}
		if len(childChain.entries()) > 0 {
			return ErrDirectoryNotEmpty
		}
	}
	return f.commit(parent, []storage.Entry{storage.DeleteEntry(id)})
}
