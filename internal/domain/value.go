package domain

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ValueObject is compared by state, never by identity.
// Equals and Hash must agree: equal values return equal hashes.
type ValueObject interface {
	Equals(other ValueObject) bool
	Hash() uint64
}

// BaseValueObject can be embedded by value objects under construction.
// Both methods panic until the embedding type overrides them.
type BaseValueObject struct{}

// Equals panics with ErrNotImplemented.
func (BaseValueObject) Equals(ValueObject) bool {
	panic(fmt.Errorf("value object equality: %w", ErrNotImplemented))
}

// Hash panics with ErrNotImplemented.
func (BaseValueObject) Hash() uint64 {
	panic(fmt.Errorf("value object hash: %w", ErrNotImplemented))
}

// EntityIdentity is a value object that names exactly one entity.
type EntityIdentity interface {
	ValueObject
	fmt.Stringer
}

// NilIdentityHash is the hash of an unset identity. Entities are routinely
// hashed before persistence assigns them an id.
const NilIdentityHash uint64 = 0x9e3779b97f4a7c15

// IntID is an integer primary key.
type IntID int64

var _ EntityIdentity = IntID(0)

// Equals reports whether other is an IntID with the same value.
func (id IntID) Equals(other ValueObject) bool {
	o, ok := other.(IntID)
	return ok && o == id
}

// Hash returns the xxhash of the big-endian encoding of id.
func (id IntID) Hash() uint64 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return xxhash.Sum64(b[:])
}

func (id IntID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Int64 returns the raw key.
func (id IntID) Int64() int64 {
	return int64(id)
}

// SameIdentity compares two identities. Two nil identities are the same.
func SameIdentity(a, b EntityIdentity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

// IdentityHash hashes id, using NilIdentityHash when id is nil.
func IdentityHash(id EntityIdentity) uint64 {
	if id == nil {
		return NilIdentityHash
	}
	return id.Hash()
}

// AsIntID extracts the IntID behind id.
func AsIntID(id EntityIdentity) (IntID, error) {
	v, ok := id.(IntID)
	if !ok {
		return 0, fmt.Errorf("%w: want IntID, got %T", ErrInvalidIdentity, id)
	}
	return v, nil
}
