package models

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// UserLength is the size in bytes of a participant identity
const UserLength = 32

// ErrInvalidUser is returned when a user identity cannot be parsed
var ErrInvalidUser = errors.New("invalid user identity")

// User is the opaque identity of a raffle participant, e.g. an account address
type User [UserLength]byte

// Stake is an entry amount in the smallest unit of the host currency
type Stake uint64

// ParseUser decodes a hex encoded identity, with or without a 0x prefix
func ParseUser(s string) (User, error) {
	var u User

	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != hex.EncodedLen(UserLength) {
		return u, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidUser, hex.EncodedLen(UserLength), len(s))
	}

	if _, err := hex.Decode(u[:], []byte(s)); err != nil {
		return u, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	return u, nil
}

// String returns the lowercase hex form of the identity
func (u User) String() string {
	return hex.EncodeToString(u[:])
}

// IsZero reports whether the identity is all zero bytes
func (u User) IsZero() bool {
	return u == User{}
}

// MarshalText implements encoding.TextMarshaler so users can be map keys in JSON
func (u User) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (u *User) UnmarshalText(text []byte) error {
	parsed, err := ParseUser(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
