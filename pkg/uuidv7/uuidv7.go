// Package uuidv7 generates time-ordered (version 7) identifiers and extracts
// the millisecond timestamp they carry.
//
// Layout of a version 7 identifier (RFC 9562):
//
//	bytes 0-5   48-bit big-endian Unix epoch milliseconds
//	byte  6     high nibble = version (7), low nibble = random
//	byte  7     random
//	byte  8     high bits = variant (10), rest random
//	bytes 9-15  random
//
// Decoding is best-effort metadata extraction, not validation: identifiers of
// other versions, and version 7 identifiers whose timestamp cannot be
// represented as a calendar date in years 0000-9999, simply carry no
// timestamp.
package uuidv7

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

const (
	Version = 7

	// Unix seconds of 0000-01-01T00:00:00Z and 9999-12-31T23:59:59Z.
	MinUnixSeconds int64 = -62_135_596_800
	MaxUnixSeconds int64 = 253_402_300_799

	maxMillis uint64 = 1<<48 - 1
)

// Generate returns a fresh version 7 identifier for the current instant.
// It never fails: if the crypto-backed generator cannot read entropy the
// identifier is filled from the process-wide math/rand source instead.
func Generate() uuid.UUID {
	id, err := uuid.NewV7()
	if err == nil {
		return id
	}
	return Encode(time.Now())
}

// Encode builds a version 7 identifier whose timestamp field holds t's Unix
// milliseconds. Instants outside the 48-bit field are clamped to its bounds.
func Encode(t time.Time) uuid.UUID {
	ms := t.UnixMilli()

	var field uint64
	switch {
	case ms < 0:
		field = 0
	case uint64(ms) > maxMillis:
		field = maxMillis
	default:
		field = uint64(ms)
	}

	return fromMillis(field, rand.Uint64(), rand.Uint64())
}

func fromMillis(ms, randA, randB uint64) uuid.UUID {
	var id uuid.UUID

	id[0] = byte(ms >> 40)
	id[1] = byte(ms >> 32)
	id[2] = byte(ms >> 24)
	id[3] = byte(ms >> 16)
	id[4] = byte(ms >> 8)
	id[5] = byte(ms)

	id[6] = Version<<4 | byte(randA>>8)&0x0f
	id[7] = byte(randA)

	id[8] = 0x80 | byte(randB>>56)&0x3f
	id[9] = byte(randB >> 48)
	id[10] = byte(randB >> 40)
	id[11] = byte(randB >> 32)
	id[12] = byte(randB >> 24)
	id[13] = byte(randB >> 16)
	id[14] = byte(randB >> 8)
	id[15] = byte(randB)

	return id
}

// VersionOf returns the version nibble (high 4 bits of byte 6).
func VersionOf(id uuid.UUID) int {
	return int(id[6]>>4) & 0x0f
}

// Millis returns the 48-bit big-endian millisecond field (bytes 0-5)
// regardless of the identifier's version.
func Millis(id uuid.UUID) uint64 {
	return uint64(id[0])<<40 |
		uint64(id[1])<<32 |
		uint64(id[2])<<24 |
		uint64(id[3])<<16 |
		uint64(id[4])<<8 |
		uint64(id[5])
}

// DecodeTimestamp extracts the calendar timestamp embedded in a version 7
// identifier. The boolean is false when id is not version 7, when the
// decoded instant lies outside years 0000-9999, or when the calendar value
// cannot be constructed.
func DecodeTimestamp(id uuid.UUID) (Timestamp, bool) {
	if VersionOf(id) != Version {
		return Timestamp{}, false
	}

	ms := Millis(id)
	secs := int64(ms / 1000)
	nanos := int64(ms%1000) * int64(time.Millisecond)

	if secs < MinUnixSeconds || secs > MaxUnixSeconds {
		return Timestamp{}, false
	}

	t := time.Unix(secs, nanos).UTC()
	seconds := float64(t.Second()) + float64(t.Nanosecond())/1e9

	ts, err := NewTimestamp(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), seconds)
	if err != nil {
		return Timestamp{}, false
	}
	return ts, true
}
