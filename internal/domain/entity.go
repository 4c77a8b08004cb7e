package domain

import "reflect"

// Identifiable is anything carrying an entity identity.
type Identifiable interface {
	EntityID() EntityIdentity
}

// Entity is embedded by domain types that are compared by identity rather than
// by their attributes. The identity may be nil until the entity is persisted.
//
// Do not change the identity of an entity that is already used as a key in a
// hash-based structure; its Hash changes with it.
type Entity struct {
	id EntityIdentity
}

// NewEntity returns an Entity named by id (nil is allowed).
func NewEntity(id EntityIdentity) Entity {
	return Entity{id: id}
}

// EntityID returns the identity, nil when unset.
func (e *Entity) EntityID() EntityIdentity {
	return e.id
}

// SetEntityID replaces the identity.
func (e *Entity) SetEntityID(id EntityIdentity) {
	e.id = id
}

// Equal reports whether a and b are entities of the exact same dynamic type with
// the same identity. Anything that is not Identifiable is never equal.
func Equal(a, b any) bool {
	ea, ok := a.(Identifiable)
	if !ok {
		return false
	}
	eb, ok := b.(Identifiable)
	if !ok {
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}

	na, nb := isNilPointer(a), isNilPointer(b)
	if na || nb {
		return na && nb
	}
	return SameIdentity(ea.EntityID(), eb.EntityID())
}

// Hash derives the hash of e from its identity alone.
func Hash(e Identifiable) uint64 {
	if e == nil || isNilPointer(e) {
		return NilIdentityHash
	}
	return IdentityHash(e.EntityID())
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// RootEntity is an aggregate root: an Entity with a version marker used for
// optimistic concurrency. The version is bookkeeping and takes no part in
// Equal or Hash.
type RootEntity struct {
	Entity
	version int64
}

// NewRootEntity returns a RootEntity with the given identity and version.
func NewRootEntity(id EntityIdentity, version int64) RootEntity {
	return RootEntity{Entity: NewEntity(id), version: version}
}

// VersionID returns the version last read from (or written to) storage.
func (r *RootEntity) VersionID() int64 {
	return r.version
}

// SetVersionID is called by repositories after a successful save.
func (r *RootEntity) SetVersionID(v int64) {
	r.version = v
}

// Aggregate is the constraint repositories are written against.
type Aggregate interface {
	Identifiable
	SetEntityID(id EntityIdentity)
	VersionID() int64
	SetVersionID(v int64)
}

var _ Aggregate = (*RootEntity)(nil)
