package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string used as an immutable account identifier.
// ULIDs sort by creation time, which keeps account listings in signup order.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
