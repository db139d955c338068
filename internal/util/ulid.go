package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string using ulid's default monotonic entropy,
// which is safe for concurrent use.
func NewULID() string {
	return ulid.Make().String()
}
