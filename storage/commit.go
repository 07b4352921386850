package storage

import (
	"encoding/binary"
	"hash/crc32"
)

// Commit is a sequence of entries written together and terminated by
// a single CRC tag at serialization time.
type Commit struct {
	Entries []Entry
}

// commitState threads the tag-XOR chain and the running CRC-32 across
// an entire metadata block: the CRC of commit k covers the serialized
// bytes of the revision count and every earlier commit (including
// their padding), so the state must span commit boundaries rather
// than reset at each one. off is the offset of the next commit from
// the start of the block image, which padding is aligned against.
type commitState struct {
	raw uint32
	crc uint32
	off int
}

func newCommitState(revisionCountBytes []byte) commitState {
	return commitState{raw: tagXORSeed, crc: crc32.Update(0, crc32.IEEETable, revisionCountBytes)}
}

// writeCommit appends the serialized form of commit (entries, CRC
// tag, CRC word, zero padding to the next program_block_size
// boundary measured from the start of *buf, which holds the block
// image from its revision count onwards) to *buf and returns the
// updated chain state for the next commit.
func writeCommit(buf *[]byte, programBlockSize int, st commitState, commit Commit) commitState {
	writeTag := func(t Tag) {
		wire, nr := encodeTagWire(st.raw, t)
		st.raw = nr
		var tb [4]byte
		binary.BigEndian.PutUint32(tb[:], wire)
		*buf = append(*buf, tb[:]...)
		st.crc = crc32.Update(st.crc, crc32.IEEETable, tb[:])
	}
	for _, e := range commit.Entries {
		writeTag(e.Tag)
		*buf = append(*buf, e.Payload...)
		st.crc = crc32.Update(st.crc, crc32.IEEETable, e.Payload)
	}
	writeTag(crcTag())
	var cb [4]byte
	binary.BigEndian.PutUint32(cb[:], st.crc)
	*buf = append(*buf, cb[:]...)
	st.crc = crc32.Update(st.crc, crc32.IEEETable, cb[:])

	if rem := len(*buf) % programBlockSize; rem != 0 {
		pad := make([]byte, programBlockSize-rem)
		*buf = append(*buf, pad...)
		st.crc = crc32.Update(st.crc, crc32.IEEETable, pad)
	}
	st.off = len(*buf)
	return st
}

// parseCommit reads one commit from the start of buf. It returns the
// parsed content entries, the number of bytes consumed (including
// padding), the updated chain state, and ok=false when the CRC does
// not validate or the buffer runs out — either of which marks the end
// of live commits in the block, not a hard error.
func parseCommit(buf []byte, programBlockSize int, st commitState) (entries []Entry, consumed int, next commitState, ok bool) {
	pos := 0
	raw, crc := st.raw, st.crc
	for {
		if pos+4 > len(buf) {
			return nil, 0, st, false
		}
		wire := binary.BigEndian.Uint32(buf[pos : pos+4])
		tag, nr := decodeTagWire(raw, wire)
		crc = crc32.Update(crc, crc32.IEEETable, buf[pos:pos+4])
		raw = nr
		pos += 4

		if tag.IsCRC() {
			if int(tag.Length) != 4 || pos+4 > len(buf) {
				return nil, 0, st, false
			}
			stored := binary.BigEndian.Uint32(buf[pos : pos+4])
			if stored != crc {
				return nil, 0, st, false
			}
			crc = crc32.Update(crc, crc32.IEEETable, buf[pos:pos+4])
			pos += 4
			if rem := (st.off + pos) % programBlockSize; rem != 0 {
				pad := programBlockSize - rem
				if pos+pad > len(buf) {
					return nil, 0, st, false
				}
				crc = crc32.Update(crc, crc32.IEEETable, buf[pos:pos+pad])
				pos += pad
			}
			return entries, pos, commitState{raw: raw, crc: crc, off: st.off + pos}, true
		}

		length := int(tag.Length)
		if pos+length > len(buf) {
			return nil, 0, st, false
		}
		payload := append([]byte(nil), buf[pos:pos+length]...)
		crc = crc32.Update(crc, crc32.IEEETable, payload)
		pos += length
		entries = append(entries, Entry{Tag: tag, Payload: payload})
	}
}
