package storage

import (
	"testing"

	"github.com/stvp/assert"
)

func TestCompactEntriesLaterReplacesEarlier(t *testing.T) {
	raw := []Entry{
		NameEntry(1, NameKindFile, "a"),
		InlineStructEntry(1, []byte("hello")),
		InlineStructEntry(1, []byte("world")),
	}
	got := compactEntries(raw)
	assert.Equal(t, len(got), 2)
	assert.True(t, got[0].Tag.IsName())
	assert.Equal(t, string(got[0].Payload), "a")
	assert.True(t, got[1].Tag.IsStruct())
	assert.Equal(t, string(got[1].Payload), "world")
}

func TestCompactEntriesDeleteShiftsHigherIDsDown(t *testing.T) {
	raw := []Entry{
		NameEntry(1, NameKindFile, "a"),
		InlineStructEntry(1, []byte("a-data")),
		NameEntry(2, NameKindFile, "b"),
		InlineStructEntry(2, []byte("b-data")),
		NameEntry(3, NameKindFile, "c"),
		InlineStructEntry(3, []byte("c-data")),
		DeleteEntry(1),
	}
	got := compactEntries(raw)
	// id 1 (a) is gone; b and c shift down to ids 1 and 2 respectively.
	byName := map[string]uint16{}
	for _, e := range got {
		if e.Tag.IsName() {
			byName[string(e.Payload)] = e.Tag.ID
		}
	}
	_, hasA := byName["a"]
	assert.False(t, hasA)
	assert.Equal(t, byName["b"], uint16(1))
	assert.Equal(t, byName["c"], uint16(2))

	id, _, found := func() (uint16, uint8, bool) {
		for _, e := range got {
			if e.Tag.IsStruct() && e.Tag.ID == byName["b"] {
				return e.Tag.ID, e.Tag.Chunk, string(e.Payload) == "b-data"
			}
		}
		return 0, 0, false
	}()
	assert.Equal(t, id, uint16(1))
	assert.True(t, found)
}

func TestCompactEntriesDeleteOfNonexistentIDIsNoop(t *testing.T) {
	raw := []Entry{
		NameEntry(1, NameKindFile, "a"),
		InlineStructEntry(1, []byte("data")),
		DeleteEntry(99),
	}
	got := compactEntries(raw)
	assert.Equal(t, len(got), 2)
}

func TestCompactEntriesDropsCRCTags(t *testing.T) {
	raw := []Entry{
		NameEntry(1, NameKindFile, "a"),
		{Tag: crcTag(), Payload: []byte{0, 0, 0, 0}},
	}
	got := compactEntries(raw)
	assert.Equal(t, len(got), 1)
	assert.True(t, got[0].Tag.IsName())
}

func TestCompactEntriesIdempotent(t *testing.T) {
	raw := []Entry{
		NameEntry(1, NameKindFile, "a"),
		InlineStructEntry(1, []byte("a-data")),
		NameEntry(2, NameKindDir, "b"),
		DirStructEntry(2, Pair{4, 5}),
		NameEntry(3, NameKindFile, "c"),
		InlineStructEntry(3, []byte("c-data")),
		DeleteEntry(2),
	}
	once := compactEntries(raw)
	twice := compactEntries(once)
	assert.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].Tag, twice[i].Tag)
		assert.Equal(t, string(once[i].Payload), string(twice[i].Payload))
	}
}

func TestCompactEntriesPreservesFirstOccurrenceOrder(t *testing.T) {
	raw := []Entry{
		NameEntry(2, NameKindFile, "second"),
		NameEntry(1, NameKindFile, "first"),
		InlineStructEntry(2, []byte("x")),
		InlineStructEntry(1, []byte("y")),
	}
	got := compactEntries(raw)
	var names []string
	for _, e := range got {
		if e.Tag.IsName() {
			names = append(names, string(e.Payload))
		}
	}
	assert.Equal(t, len(names), 2)
	assert.Equal(t, names[0], "second")
	assert.Equal(t, names[1], "first")
}

func TestEntryByteLength(t *testing.T) {
	e := InlineStructEntry(1, []byte("hello"))
	assert.Equal(t, entryByteLength(e), 4+5)
}
