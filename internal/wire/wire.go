package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version   byte = 1
	kindEntry byte = 1

	headerLen = 4 + 1 + 1 + 8 + 8 + 4
)

var (
	ErrCorrupt = errors.New("cachecall: corrupt entry")
	magic4     = [...]byte{'C', 'C', 'A', 'L'}
)

// Entry is a framed cache value with its own expiry metadata, so per-item
// lifetimes hold even on providers that only support a global TTL.
type Entry struct {
	ExpiresAt    int64 // unix nanos; 0 => never
	PrecomputeAt int64 // unix nanos; 0 => no early refresh
	Payload      []byte
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != 0 && now.UnixNano() >= e.ExpiresAt
}

// Precomputing reports whether now falls inside the early-refresh window.
func (e Entry) Precomputing(now time.Time) bool {
	return e.PrecomputeAt != 0 && now.UnixNano() >= e.PrecomputeAt
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames e as:
//
//	magic(4) | ver(1) | kind(1) | expiresAt(i64 be) | precomputeAt(i64 be) | vlen(u32 be) | payload(vlen)
func Encode(e Entry) []byte {
	var buf bytes.Buffer
	buf.Grow(headerLen + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEntry)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(e.ExpiresAt))
	buf.Write(u8[:])
	binary.BigEndian.PutUint64(u8[:], uint64(e.PrecomputeAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])

	buf.Write(e.Payload)
	return buf.Bytes()
}

// Decode parses a framed entry. Framing is strict: trailing bytes are corrupt.
// The returned payload aliases b.
func Decode(b []byte) (Entry, error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return Entry{}, ErrCorrupt
	}

	off := 6
	exp := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	pre := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	if exp < 0 || pre < 0 {
		return Entry{}, ErrCorrupt
	}

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off {
		return Entry{}, ErrCorrupt
	}

	return Entry{ExpiresAt: exp, PrecomputeAt: pre, Payload: b[off:]}, nil
}
