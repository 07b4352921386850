package storage

import "encoding/binary"

// encodePair/DecodePair serialize a metadata pair address as two
// little-endian u32 block indices, used by DIR-STRUCT and hard-tail
// entry payloads.
func encodePair(p Pair) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p[0]))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p[1]))
	return buf
}

// DecodePair is the inverse of encodePair.
func DecodePair(b []byte) (Pair, bool) {
	return decodePair(b)
}

func decodePair(b []byte) (Pair, bool) {
	if len(b) != 8 {
		return Pair{}, false
	}
	return Pair{
		BlockAddr(binary.LittleEndian.Uint32(b[0:4])),
		BlockAddr(binary.LittleEndian.Uint32(b[4:8])),
	}, true
}

// encodeCTZPointer/DecodeCTZPointer serialize a CTZ skip-list head
// pointer plus the logical file size.
func encodeCTZPointer(head BlockAddr, size uint32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(head))
	binary.LittleEndian.PutUint32(buf[4:8], size)
	return buf
}

// DecodeCTZPointer is the inverse of encodeCTZPointer.
func DecodeCTZPointer(b []byte) (head BlockAddr, size uint32, ok bool) {
	return decodeCTZPointer(b)
}

func decodeCTZPointer(b []byte) (head BlockAddr, size uint32, ok bool) {
	if len(b) != 8 {
		return 0, 0, false
	}
	return BlockAddr(binary.LittleEndian.Uint32(b[0:4])), binary.LittleEndian.Uint32(b[4:8]), true
}
