package storage

import "sort"

// Entry pairs a decoded Tag with its payload bytes. Tag.Length must
// equal len(Payload); newEntry enforces that.
type Entry struct {
	Tag     Tag
	Payload []byte
}

func newEntry(t Tag, payload []byte) Entry {
	t.Length = uint16(len(payload))
	return Entry{Tag: t, Payload: payload}
}

// NameEntry builds the NAME tag for id, recording whether it names a
// file or a sub-directory.
func NameEntry(id uint16, kind uint8, name string) Entry {
	return newEntry(Tag{Type: AbstractName, Chunk: kind, ID: id}, []byte(name))
}

// InlineStructEntry builds a STRUCT tag holding a file's content
// directly, for files small enough not to need a CTZ chain.
func InlineStructEntry(id uint16, data []byte) Entry {
	return newEntry(Tag{Type: AbstractStruct, Chunk: StructInline, ID: id}, data)
}

// CTZStructEntry builds a STRUCT tag pointing at a file's CTZ
// skip-list head block.
func CTZStructEntry(id uint16, head BlockAddr, size uint32) Entry {
	return newEntry(Tag{Type: AbstractStruct, Chunk: StructCTZ, ID: id}, encodeCTZPointer(head, size))
}

// DirStructEntry builds a STRUCT tag pointing at a sub-directory's
// metadata pair.
func DirStructEntry(id uint16, p Pair) Entry {
	return newEntry(Tag{Type: AbstractStruct, Chunk: StructDir, ID: id}, encodePair(p))
}

func hardTailEntry(p Pair) Entry {
	return newEntry(Tag{Type: AbstractTail, ID: NoID}, encodePair(p))
}

// UserAttrEntry builds a USERATTR tag, identified by attrType, for
// id.
func UserAttrEntry(id uint16, attrType uint8, data []byte) Entry {
	return newEntry(Tag{Type: AbstractUserAttr, Chunk: attrType, ID: id}, data)
}

// DeleteEntry builds the splice/delete tag that removes id (and
// shifts every higher id down by one) on compaction.
func DeleteEntry(id uint16) Entry {
	return Entry{Tag: deleteTag(id)}
}

type entrySlot struct {
	id    uint16
	attrs map[AbstractType]map[uint8]Entry
	order int
}

// compactEntries applies the replay rule for a raw (uncompacted)
// entry stream: a later entry at the same id and abstract type
// replaces an earlier one (for USERATTR only one with the same chunk
// as well), and a splice (delete) entry for an id
// removes every entry at that id and shifts all higher ids down by
// one. The result is ordered by first occurrence of the surviving
// id, and contains no CRC or splice entries.
func compactEntries(raw []Entry) []Entry {
	var slots []*entrySlot
	bySlotID := map[uint16]*entrySlot{}
	order := 0

	removeAndShift := func(id uint16) {
		s, ok := bySlotID[id]
		if !ok {
			return
		}
		delete(bySlotID, id)
		kept := slots[:0]
		for _, sl := range slots {
			if sl != s {
				kept = append(kept, sl)
			}
		}
		slots = kept
		for _, sl := range slots {
			if sl.id > id {
				delete(bySlotID, sl.id)
				sl.id--
				bySlotID[sl.id] = sl
			}
		}
	}

	for _, e := range raw {
		t := e.Tag
		switch {
		case t.IsCRC():
			continue
		case t.IsDelete():
			removeAndShift(t.ID)
			continue
		}
		s, ok := bySlotID[t.ID]
		if !ok {
			s = &entrySlot{id: t.ID, attrs: map[AbstractType]map[uint8]Entry{}, order: order}
			order++
			bySlotID[t.ID] = s
			slots = append(slots, s)
		}
		m := s.attrs[t.Type]
		if m == nil {
			m = map[uint8]Entry{}
			s.attrs[t.Type] = m
		}
		// A later entry replaces an earlier one of the same abstract
		// type regardless of chunk (spec: STRUCT inline vs CTZ is one
		// slot), except USERATTR, where chunk is the attribute's own
		// identity and multiple attributes coexist per id.
		if t.Type == AbstractUserAttr {
			m[t.Chunk] = e
		} else {
			for c := range m {
				delete(m, c)
			}
			m[t.Chunk] = e
		}
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].order < slots[j].order })

	var out []Entry
	for _, s := range slots {
		out = append(out, emitSlot(s)...)
	}
	return out
}

func emitSlot(s *entrySlot) []Entry {
	var out []Entry
	appendType := func(at AbstractType) {
		m := s.attrs[at]
		if len(m) == 0 {
			return
		}
		chunks := make([]int, 0, len(m))
		for c := range m {
			chunks = append(chunks, int(c))
		}
		sort.Ints(chunks)
		for _, c := range chunks {
			e := m[uint8(c)]
			e.Tag.ID = s.id
			out = append(out, e)
		}
	}
	appendType(AbstractName)
	appendType(AbstractStruct)
	appendType(AbstractUserAttr)
	appendType(AbstractTail)
	return out
}

func entryByteLength(e Entry) int {
	return 4 + int(e.Tag.Length)
}
