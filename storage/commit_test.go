package storage

import (
	"testing"

	"github.com/stvp/assert"
)

func TestWriteParseCommitRoundTrip(t *testing.T) {
	const programBlockSize = 32
	rev := []byte{1, 0, 0, 0}
	st := newCommitState(rev)

	commit := Commit{Entries: []Entry{
		NameEntry(1, NameKindFile, "a"),
		InlineStructEntry(1, []byte("hello")),
	}}

	var buf []byte
	afterWrite := writeCommit(&buf, programBlockSize, st, commit)
	assert.Equal(t, len(buf)%programBlockSize, 0)

	entries, consumed, afterParse, ok := parseCommit(buf, programBlockSize, st)
	assert.True(t, ok)
	assert.Equal(t, consumed, len(buf))
	assert.Equal(t, afterParse.raw, afterWrite.raw)
	assert.Equal(t, afterParse.crc, afterWrite.crc)
	assert.Equal(t, len(entries), 2)
	assert.Equal(t, string(entries[0].Payload), "a")
	assert.Equal(t, string(entries[1].Payload), "hello")
}

func TestParseCommitMultipleCommitsChainState(t *testing.T) {
	const programBlockSize = 32
	rev := []byte{1, 0, 0, 0}
	st := newCommitState(rev)

	var buf []byte
	st = writeCommit(&buf, programBlockSize, st, Commit{Entries: []Entry{NameEntry(1, NameKindFile, "a")}})
	afterSecond := writeCommit(&buf, programBlockSize, st, Commit{Entries: []Entry{NameEntry(2, NameKindFile, "b")}})

	parseSt := newCommitState(rev)
	entries1, consumed1, parseSt, ok := parseCommit(buf, programBlockSize, parseSt)
	assert.True(t, ok)
	assert.Equal(t, len(entries1), 1)

	entries2, consumed2, parseSt, ok := parseCommit(buf[consumed1:], programBlockSize, parseSt)
	assert.True(t, ok)
	assert.Equal(t, len(entries2), 1)
	assert.Equal(t, consumed1+consumed2, len(buf))
	assert.Equal(t, parseSt.crc, afterSecond.crc)
}

func TestParseCommitDetectsTornWrite(t *testing.T) {
	const programBlockSize = 32
	rev := []byte{1, 0, 0, 0}
	st := newCommitState(rev)

	commit := Commit{Entries: []Entry{InlineStructEntry(1, []byte("hello world"))}}
	var buf []byte
	writeCommit(&buf, programBlockSize, st, commit)

	// Truncate mid-commit, simulating a crash during programming.
	torn := buf[:len(buf)-programBlockSize]
	_, _, _, ok := parseCommit(torn, programBlockSize, st)
	assert.False(t, ok)
}

func TestParseCommitDetectsCorruptedCRC(t *testing.T) {
	const programBlockSize = 32
	rev := []byte{1, 0, 0, 0}
	st := newCommitState(rev)

	commit := Commit{Entries: []Entry{InlineStructEntry(1, []byte("hello"))}}
	var buf []byte
	writeCommit(&buf, programBlockSize, st, commit)

	corrupted := append([]byte(nil), buf...)
	corrupted[0] ^= 0xff

	_, _, _, ok := parseCommit(corrupted, programBlockSize, st)
	assert.False(t, ok)
}
