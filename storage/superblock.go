package storage

import "encoding/binary"

// Superblock is the decoded payload of the root pair's magic
// STRUCT entry (id 0, alongside the NAME="littlefs" entry at the same
// id), recording the on-disk geometry a mount must agree with.
type Superblock struct {
	Version            uint32
	BlockSize          uint32
	BlockCount         uint32
	NameMax            uint32
	FileMax            uint32
	AttrMax            uint32
}

const CurrentVersion = 0x00020000 // major=2, minor=0, matching the reference format

// encode/decode use big-endian, unlike every other on-disk integer in
// this package: the specification calls out the superblock struct (and
// the tag word) as the two big-endian exceptions to an otherwise
// little-endian format.
func (sb Superblock) encode() []byte {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint32(buf[0:4], sb.Version)
	binary.BigEndian.PutUint32(buf[4:8], sb.BlockSize)
	binary.BigEndian.PutUint32(buf[8:12], sb.BlockCount)
	binary.BigEndian.PutUint32(buf[12:16], sb.NameMax)
	binary.BigEndian.PutUint32(buf[16:20], sb.FileMax)
	binary.BigEndian.PutUint32(buf[20:24], sb.AttrMax)
	return buf
}

func decodeSuperblock(b []byte) (Superblock, bool) {
	if len(b) != 24 {
		return Superblock{}, false
	}
	return Superblock{
		Version:    binary.BigEndian.Uint32(b[0:4]),
		BlockSize:  binary.BigEndian.Uint32(b[4:8]),
		BlockCount: binary.BigEndian.Uint32(b[8:12]),
		NameMax:    binary.BigEndian.Uint32(b[12:16]),
		FileMax:    binary.BigEndian.Uint32(b[16:20]),
		AttrMax:    binary.BigEndian.Uint32(b[20:24]),
	}, true
}

// SuperblockEntries builds the two entries (NAME + STRUCT) that
// together occupy id 0 of the root pair.
func SuperblockEntries(sb Superblock) []Entry {
	return []Entry{
		NameEntry(0, NameKindDir, MagicName),
		InlineStructEntry(0, sb.encode()),
	}
}

// DecodeSuperblockFrom extracts the Superblock from a root pair's
// compacted entries.
func DecodeSuperblockFrom(entries []Entry) (Superblock, bool) {
	for _, e := range entries {
		if e.Tag.ID == 0 && e.Tag.IsStruct() {
			return decodeSuperblock(e.Payload)
		}
	}
	return Superblock{}, false
}
