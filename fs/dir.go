package fs

import (
	"strings"

	"github.com/fingon/go-litefs/mlog"
	"github.com/fingon/go-litefs/storage"
)

// splitPath cleans and splits a slash-separated path into its
// non-empty components; "/" and "" both yield an empty slice (the
// root).
func splitPath(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// chain is every metadata pair in a directory's hard-tail chain, read
// in order; entries grow across pairs, and only the last pair is
// where new entries are appended.
type chain struct {
	pairs []storage.PairState
}

func (f *FS) readChain(root storage.Pair) (*chain, error) {
	var pairs []storage.PairState
	seen := map[storage.Pair]bool{}
	p := root
	for {
		if seen[p] {
			break
		}
		seen[p] = true
		ps, err := storage.ReadMetaPair(f.dev, f.programBlockSize, p)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, ps)
		tail, ok := storage.FindHardTail(ps.Block.CompactedEntries())
		if !ok {
			break
		}
		p = tail
	}
	return &chain{pairs: pairs}, nil
}

// entries merges the compacted entries of every pair in the chain,
// excluding each pair's own hard-tail bookkeeping entry.
func (c *chain) entries() []storage.Entry {
	var all []storage.Entry
	for _, ps := range c.pairs {
		for _, e := range ps.Block.CompactedEntries() {
			if e.Tag.IsTail() {
				continue
			}
			all = append(all, e)
		}
	}
	return all
}

func (c *chain) tail() storage.PairState { return c.pairs[len(c.pairs)-1] }

// commit appends entries to the chain's writable (last) pair,
// transparently performing a real structural split — allocating a
// fresh pair and wiring a hard-tail entry — when the pair is too full
// even after compaction.
func (f *FS) commit(c *chain, entries []storage.Entry) error {
	last := c.tail()
	next, result, err := last.Commit(f.dev, f.programBlockSize, entries)
	if err != nil {
		return err
	}
	if result == storage.CommitOK {
		c.pairs[len(c.pairs)-1] = next
		return nil
	}

	mlog.Printf2("fs/dir", "commit: pair %v full, splitting", last.Pair)
	tailAddr1, err := f.alloc.GetBlock()
	if err != nil {
		return err
	}
	tailAddr2, err := f.alloc.GetBlock()
	if err != nil {
		return err
	}
	newTailPair := storage.Pair{tailAddr1, tailAddr2}
	headState, tailState, err := storage.CommitSplit(f.dev, f.programBlockSize, last, entries, newTailPair)
	if err != nil {
		return err
	}
	c.pairs[len(c.pairs)-1] = headState
	c.pairs = append(c.pairs, tailState)
	return nil
}

// findDirectory walks dirSegments from the root, requiring each to
// name an existing sub-directory, and returns that directory's
// metadata pair (the chain's root, not necessarily its tail).
func (f *FS) findDirectory(dirSegments []string) (storage.Pair, error) {
	cur := storage.RootPair
	for _, seg := range dirSegments {
		c, err := f.readChain(cur)
		if err != nil {
			return storage.Pair{}, err
		}
		entries := c.entries()
		id, kind, found := storage.FindIDByName(entries, seg)
		if !found {
			return storage.Pair{}, ErrNotFound
		}
		if kind != storage.NameKindDir {
			return storage.Pair{}, ErrNotDirectory
		}
		se, found := storage.StructOf(entries, id)
		if !found || se.Tag.Chunk != storage.StructDir {
			return storage.Pair{}, ErrNotDirectory
		}
		child, ok := storage.DecodePair(se.Payload)
		if !ok {
			return storage.Pair{}, storage.ErrCorrupt
		}
		cur = child
	}
	return cur, nil
}

// resolve splits path into (parent directory pair, basename).
func (f *FS) resolve(path string) (storage.Pair, string, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return storage.Pair{}, "", ErrIsDirectory
	}
	parent, err := f.findDirectory(segs[:len(segs)-1])
	if err != nil {
		return storage.Pair{}, "", err
	}
	return parent, segs[len(segs)-1], nil
}

// List returns the directory entries of path, which must name an
// existing directory (the root is named by "" or "/").
func (f *FS) List(path string) ([]DirEntry, error) {
	segs := splitPath(path)
	pair, err := f.findDirectory(segs)
	if err != nil {
		return nil, err
	}
	c, err := f.readChain(pair)
	if err != nil {
		return nil, err
	}
	var out []DirEntry
	for _, e := range c.entries() {
		if !e.Tag.IsName() || e.Tag.ID == 0 {
			continue // id 0 of the root pair is the magic superblock entry
		}
		out = append(out, DirEntry{Name: string(e.Payload), Kind: kindFromTag(e.Tag.Chunk)})
	}
	return out, nil
}

// Mkdir creates an empty directory at path; its parent must already
// exist and must not already contain an entry of that name.
func (f *FS) Mkdir(path string) error {
	parentPair, name, err := f.resolve(path)
	if err != nil {
		return err
	}
	parent, err := f.readChain(parentPair)
	if err != nil {
		return err
	}
	entries := parent.entries()
	if _, _, found := storage.FindIDByName(entries, name); found {
		return ErrExists
	}
	id := storage.MaxID(entries) + 1

	addr1, err := f.alloc.GetBlock()
	if err != nil {
		return err
	}
	addr2, err := f.alloc.GetBlock()
	if err != nil {
		return err
	}
	newPair := storage.Pair{addr1, addr2}

	ps := storage.NewPairState(newPair)
	if ps, _, err = ps.Commit(f.dev, f.programBlockSize, nil); err != nil {
		return err
	}
	if _, _, err = ps.Commit(f.dev, f.programBlockSize, nil); err != nil {
		return err
	}

	return f.commit(parent, []storage.Entry{
		storage.NameEntry(id, storage.NameKindDir, name),
		storage.DirStructEntry(id, newPair),
	})
}
