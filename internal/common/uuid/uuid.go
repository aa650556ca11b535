// Package uuid wraps github.com/google/uuid with UUIDv7 (time-ordered) as the
// default. Request IDs and locally generated identifiers use it.
package uuid

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// UUID is an alias of github.com/google/uuid.UUID.
type UUID = uuid.UUID

// New returns a new UUIDv7. Panics if the random source fails.
func New() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}

// NewString returns New().String(), falling back to a v4 UUID if the v7
// generator fails.
func NewString() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Parse parses a UUID string.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}

// Timestamp extracts the creation time encoded in the top 48 bits of a UUIDv7.
// The zero time is returned for other versions.
func Timestamp(u UUID) time.Time {
	if u.Version() != uuid.Version(7) {
		return time.Time{}
	}
	ms := binary.BigEndian.Uint64(u[0:8]) >> 16
	return time.UnixMilli(int64(ms))
}

// Nil is the zero UUID value.
var Nil = uuid.Nil
