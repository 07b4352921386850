package storage

import (
	"github.com/fingon/go-litefs/mlog"
)

// CommitResult reports the outcome of a metadata pair commit attempt.
type CommitResult int

const (
	// CommitOK means the entries were durably written.
	CommitOK CommitResult = iota
	// CommitNeedsSplit means the entries do not fit even after
	// compaction; the caller must allocate a new pair, split the
	// block, and commit the two halves separately. Nothing was
	// written.
	CommitNeedsSplit
)

// PairState is a metadata pair together with its currently-read
// logical content and which physical half holds it.
type PairState struct {
	Pair    Pair
	Block   *Block
	Current int // 0 or 1: index into Pair of the side holding Block
}

// NewPairState seeds a PairState for a freshly allocated, still-empty
// pair: its first commit will land on Pair[0].
func NewPairState(p Pair) PairState {
	return PairState{Pair: p, Block: &Block{}, Current: 1}
}

func (ps PairState) otherAddr() BlockAddr {
	return ps.Pair[1-ps.Current]
}

// ReadMetaPair reads both halves of a pair and returns the logically
// current one: whichever side has at least one CRC-verified commit,
// preferring the higher revision count (by signed 32-bit subtraction,
// so counters wrap safely) when both sides are valid. A side whose
// revision-count header was updated but whose commit was torn by a
// crash is treated as invalid regardless of its revision count, which
// is what keeps a half-written commit from ever being preferred over
// the last good state.
func ReadMetaPair(dev Device, programBlockSize int, pair Pair) (PairState, error) {
	var blocks [2]*Block
	var valid [2]bool
	var firstErr error

	for i, addr := range pair {
		buf := make([]byte, dev.BlockSize())
		if err := dev.ReadBlock(addr, buf); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		b, err := parseBlock(programBlockSize, buf)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		blocks[i] = b
		valid[i] = len(b.rawCommits) > 0
	}

	switch {
	case valid[0] && valid[1]:
		d := int32(blocks[0].RevisionCount) - int32(blocks[1].RevisionCount)
		if d >= 0 {
			return PairState{Pair: pair, Block: blocks[0], Current: 0}, nil
		}
		return PairState{Pair: pair, Block: blocks[1], Current: 1}, nil
	case valid[0]:
		return PairState{Pair: pair, Block: blocks[0], Current: 0}, nil
	case valid[1]:
		return PairState{Pair: pair, Block: blocks[1], Current: 1}, nil
	default:
		if firstErr != nil {
			return PairState{}, firstErr
		}
		return PairState{}, ErrCorrupt
	}
}

// Commit appends entries as a new commit, attempts to serialize the
// whole logical block, compacting proactively (or mandatorily, if the
// uncompacted form does not even fit) before giving up and asking the
// caller to split. On success the result is programmed to the other
// physical half of the pair, which becomes current.
func (ps PairState) Commit(dev Device, programBlockSize int, entries []Entry) (PairState, CommitResult, error) {
	appended := addCommit(ps.Block, entries)
	data, status := serializeBlock(programBlockSize, dev.BlockSize(), appended)
	result := appended

	if status != SerializeOK {
		compacted := compactBlock(appended)
		cdata, cstatus := serializeBlock(programBlockSize, dev.BlockSize(), compacted)
		switch {
		case cstatus == SerializeSplitEmergency && status == SerializeSplitEmergency:
			return ps, CommitNeedsSplit, nil
		case cstatus != SerializeSplitEmergency:
			data, result = cdata, compacted
		}
		// status == Split but compaction still only yields Split or
		// worse: fall through using whichever buffer we have (prefer
		// compacted unless it failed outright).
	}

	other := ps.otherAddr()
	padded := padToBlockSize(data, dev.BlockSize())
	mlog.Printf2("storage/metapair", "Commit: pair=%v writing addr=%d rev=%d", ps.Pair, other, result.RevisionCount)
	if err := dev.ProgramBlock(other, padded); err != nil {
		return ps, CommitOK, err
	}
	return PairState{Pair: ps.Pair, Block: result, Current: 1 - ps.Current}, CommitOK, nil
}

// CommitSplit performs a real structural split: tailPair must already
// be allocated and empty. The head half (with a hard-tail entry
// appended) is committed to ps's pair; the tail half is committed
// fresh to tailPair.
func CommitSplit(dev Device, programBlockSize int, ps PairState, entries []Entry, tailPair Pair) (headState, tailState PairState, err error) {
	appended := addCommit(ps.Block, entries)
	head, tailEntries := splitBlock(appended, tailPair)

	tps := NewPairState(tailPair)
	tps, _, err = tps.Commit(dev, programBlockSize, tailEntries)
	if err != nil {
		return PairState{}, PairState{}, err
	}
	tps, _, err = tps.Commit(dev, programBlockSize, nil)
	if err != nil {
		return PairState{}, PairState{}, err
	}

	fresh := PairState{Pair: ps.Pair, Block: &Block{RevisionCount: ps.Block.RevisionCount}, Current: ps.Current}
	hps, _, err := fresh.Commit(dev, programBlockSize, head.CompactedEntries())
	if err != nil {
		return PairState{}, PairState{}, err
	}
	return hps, tps, nil
}
