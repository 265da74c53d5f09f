// Package wire frames cache entries. Every persisted entry carries a fixed
// header so that truncated or foreign bytes are detected before the payload
// codec ever runs, and so the entry format can be versioned independently of
// the payload encoding.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version    byte = 1
	kindReport byte = 1
)

var (
	ErrCorrupt = errors.New("wire: corrupt entry")
	magic4     = [...]byte{'M', 'M', 'N', 'C'}
)

// Entry is a decoded envelope.
type Entry struct {
	CreatedAt time.Time
	Payload   []byte
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Envelope: magic(4) | ver(1) | kind(1) | createdAt(i64 be, unix nanos) | plen(u32 be) | payload(plen)
func Encode(createdAt time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindReport)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(createdAt.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func Decode(b []byte) (Entry, error) {
	const hdr = 4 + 1 + 1 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindReport {
		return Entry{}, ErrCorrupt
	}

	off := 6

	nanos := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if plen != len(b)-off { // trailing garbage is corruption too
		return Entry{}, ErrCorrupt
	}

	return Entry{
		CreatedAt: time.Unix(0, nanos),
		Payload:   b[off : off+plen],
	}, nil
}
