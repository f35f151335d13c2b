// Package matchid generates the identifiers a server hands out: sortable
// match IDs and opaque connection handles.
package matchid

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Crockford's base32, as used by TypeID
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the length of an encoded match ID
const Length = 26

// New returns a match ID: a UUIDv7 encoded as 26 lowercase base32 characters.
// IDs generated later sort after earlier ones.
func New() string {
	return Encode(uuid.Must(uuid.NewV7()))
}

// NewHandle returns a random connection handle
func NewHandle() string {
	return uuid.NewString()
}

// Encode renders u as 26 base32 characters. The 128 bits are left padded with
// two zero bits, so the first character is always 0-7.
func Encode(u uuid.UUID) string {
	n := new(big.Int).SetBytes(u[:])
	mask := big.NewInt(31)
	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[new(big.Int).And(n, mask).Int64()]
		n.Rsh(n, 5)
	}
	return string(out)
}

// Decode parses a match ID back into its UUID
func Decode(id string) (uuid.UUID, error) {
	if err := Validate(id); err != nil {
		return uuid.Nil, err
	}
	n := new(big.Int)
	for i := 0; i < len(id); i++ {
		n.Lsh(n, 5)
		n.Or(n, big.NewInt(int64(strings.IndexByte(alphabet, id[i]))))
	}
	var u uuid.UUID
	n.FillBytes(u[:])
	return u, nil
}

// Time returns the creation time embedded in a match ID
func Time(id string) (time.Time, error) {
	u, err := Decode(id)
	if err != nil {
		return time.Time{}, err
	}
	if u.Version() != 7 {
		return time.Time{}, fmt.Errorf("match ID is not time based (version %d)", u.Version())
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}

// Validate checks that id is 26 characters of base32 starting with 0-7
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("match ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("match ID first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
