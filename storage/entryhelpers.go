package storage

// FindIDByName scans a directory's (already chain-merged) compacted
// entries for a NAME tag matching name, returning its id and kind.
func FindIDByName(entries []Entry, name string) (id uint16, kind uint8, found bool) {
	for _, e := range entries {
		if e.Tag.IsName() && string(e.Payload) == name {
			return e.Tag.ID, e.Tag.Chunk, true
		}
	}
	return 0, 0, false
}

// StructOf returns the STRUCT entry for id, if any.
func StructOf(entries []Entry, id uint16) (Entry, bool) {
	for _, e := range entries {
		if e.Tag.ID == id && e.Tag.IsStruct() {
			return e, true
		}
	}
	return Entry{}, false
}

// NameOf returns the NAME entry for id, if any.
func NameOf(entries []Entry, id uint16) (Entry, bool) {
	for _, e := range entries {
		if e.Tag.ID == id && e.Tag.IsName() {
			return e, true
		}
	}
	return Entry{}, false
}

// MaxID returns the highest id present among entries, or 0 if none
// (so the caller's next-free-id computation naturally starts at 1).
func MaxID(entries []Entry) uint16 {
	var max uint16
	for _, e := range entries {
		if e.Tag.ID != NoID && e.Tag.ID > max {
			max = e.Tag.ID
		}
	}
	return max
}
