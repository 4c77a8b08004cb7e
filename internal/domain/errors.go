package domain

import "errors"

var (
	// ErrNotImplemented is returned (or panicked with) when a capability is used
	// without a concrete override.
	ErrNotImplemented = errors.New("domain: not implemented")
	// ErrNotFound is returned by repositories when no entity matches an identity.
	ErrNotFound = errors.New("domain: entity not found")
	// ErrConflict is returned by Save/Delete when the stored version no longer
	// matches the version the caller read.
	ErrConflict = errors.New("domain: version conflict")
	// ErrUnsupportedFilter is returned by Search for filter keys or values an
	// adapter does not understand.
	ErrUnsupportedFilter = errors.New("domain: unsupported search filter")
	// ErrInvalidIdentity is returned when an adapter receives an identity of a
	// type it cannot store.
	ErrInvalidIdentity = errors.New("domain: invalid entity identity")
)
