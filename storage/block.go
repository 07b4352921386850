package storage

import (
	"encoding/binary"
	"sort"

	"github.com/fingon/go-litefs/mlog"
)

// Block is the in-memory form of one physical metadata block: a
// revision count and the ordered list of commits parsed from (or
// pending write to) it. Commits are kept raw/uncompacted until
// compaction is actually needed; Entries/CompactedEntries flatten
// them on demand.
type Block struct {
	RevisionCount uint32
	rawCommits    []Commit
}

// parseBlock parses one physical block image. It only fails when the
// 4-byte revision count header itself cannot be read; a block whose
// every commit fails its CRC check parses successfully with zero
// commits (this is what a torn write during a crash looks like).
func parseBlock(programBlockSize int, buf []byte) (*Block, error) {
	if len(buf) < 4 {
		return nil, ErrCorrupt
	}
	rev := binary.LittleEndian.Uint32(buf[0:4])
	st := newCommitState(buf[0:4])
	st.off = 4
	pos := 4
	b := &Block{RevisionCount: rev}
	for pos < len(buf) {
		entries, consumed, next, ok := parseCommit(buf[pos:], programBlockSize, st)
		if !ok || consumed == 0 {
			break
		}
		b.rawCommits = append(b.rawCommits, Commit{Entries: entries})
		st = next
		pos += consumed
	}
	mlog.Printf2("storage/block", "parseBlock: rev=%d commits=%d", rev, len(b.rawCommits))
	return b, nil
}

// Entries returns every content entry across all raw commits, in
// commit order, without compaction applied.
func (b *Block) Entries() []Entry {
	var all []Entry
	for _, c := range b.rawCommits {
		all = append(all, c.Entries...)
	}
	return all
}

// CompactedEntries returns the minimal equivalent entry list: deletes
// applied, ids renumbered, later writes winning over earlier ones.
func (b *Block) CompactedEntries() []Entry {
	return compactEntries(b.Entries())
}

func compactBlock(b *Block) *Block {
	return &Block{RevisionCount: b.RevisionCount, rawCommits: []Commit{{Entries: b.CompactedEntries()}}}
}

func addCommit(b *Block, entries []Entry) *Block {
	commits := append(append([]Commit{}, b.rawCommits...), Commit{Entries: entries})
	return &Block{RevisionCount: b.RevisionCount + 1, rawCommits: commits}
}

// SerializeStatus reports whether a serialized block still has
// headroom, is full enough to warrant proactive compaction, or does
// not fit at all.
type SerializeStatus int

const (
	SerializeOK SerializeStatus = iota
	SerializeSplit
	SerializeSplitEmergency
)

// serializeBlock writes every raw commit of b, in order, to a fresh
// byte image at b's current revision count (the bump to the next
// revision is addCommit's job, not this one's), and classifies the
// result's headroom.
func serializeBlock(programBlockSize, blockSize int, b *Block) ([]byte, SerializeStatus) {
	var rev [4]byte
	binary.LittleEndian.PutUint32(rev[:], b.RevisionCount)
	buf := append([]byte(nil), rev[:]...)
	st := newCommitState(rev[:])
	for _, c := range b.rawCommits {
		st = writeCommit(&buf, programBlockSize, st, c)
	}
	if len(b.rawCommits) == 0 {
		st = writeCommit(&buf, programBlockSize, st, Commit{})
	}
	if len(buf) > blockSize {
		return nil, SerializeSplitEmergency
	}
	if blockSize-len(buf) < programBlockSize {
		return buf, SerializeSplit
	}
	return buf, SerializeOK
}

func padToBlockSize(data []byte, blockSize int) []byte {
	if len(data) >= blockSize {
		return data[:blockSize]
	}
	out := make([]byte, blockSize)
	copy(out, data)
	for i := len(data); i < blockSize; i++ {
		out[i] = 0xff
	}
	return out
}

// splitBlock partitions a block's compacted entries at the id
// midpoint. Id 0 (the root pair's magic NAME/superblock entries, or
// an ordinary unused id elsewhere) always stays in head at id 0,
// unrenumbered, since both the directory listing and superblock
// lookup key off it directly. The remaining lower half of ids stays
// in head (renumbered from 1) with a hard-tail entry appended
// pointing at tailPair; the upper half (renumbered from 1) is
// returned as the commit for the new tail block.
func splitBlock(b *Block, tailPair Pair) (head *Block, tailEntries []Entry) {
	compacted := compactEntries(b.Entries())

	var idZero []Entry
	var ids []uint16
	byID := map[uint16][]Entry{}
	for _, e := range compacted {
		switch e.Tag.ID {
		case NoID:
			continue
		case 0:
			idZero = append(idZero, e)
			continue
		}
		if _, ok := byID[e.Tag.ID]; !ok {
			ids = append(ids, e.Tag.ID)
		}
		byID[e.Tag.ID] = append(byID[e.Tag.ID], e)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	mid := (len(ids) + 1) / 2
	renumber := func(idList []uint16) []Entry {
		var out []Entry
		next := uint16(1)
		for _, id := range idList {
			for _, e := range byID[id] {
				e2 := e
				e2.Tag.ID = next
				out = append(out, e2)
			}
			next++
		}
		return out
	}

	headEntries := append([]Entry{}, idZero...)
	headEntries = append(headEntries, renumber(ids[:mid])...)
	tailEntries = renumber(ids[mid:])
	headEntries = append(headEntries, hardTailEntry(tailPair))

	head = &Block{RevisionCount: b.RevisionCount, rawCommits: []Commit{{Entries: headEntries}}}
	return head, tailEntries
}

// FindHardTail reports the pair a directory block's hard-tail entry
// points at, if any.
func FindHardTail(entries []Entry) (Pair, bool) {
	return findHardTail(entries)
}

func findHardTail(entries []Entry) (Pair, bool) {
	for _, e := range entries {
		if e.Tag.IsTail() {
			if p, ok := decodePair(e.Payload); ok {
				return p, true
			}
		}
	}
	return Pair{}, false
}
