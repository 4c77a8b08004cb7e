package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Entity
	Name string
}

type gadget struct {
	Entity
}

// specialWidget embeds widget, so it shares its identity accessors but is a
// distinct concrete type.
type specialWidget struct {
	widget
}

type account struct {
	RootEntity
	Balance int
}

type bareValue struct {
	BaseValueObject
}

func TestIntID(t *testing.T) {
	assert.True(t, IntID(1).Equals(IntID(1)))
	assert.False(t, IntID(1).Equals(IntID(2)))
	assert.Equal(t, IntID(7).Hash(), IntID(7).Hash())
	assert.NotEqual(t, IntID(7).Hash(), IntID(8).Hash())
	assert.Equal(t, "42", IntID(42).String())
	assert.Equal(t, int64(42), IntID(42).Int64())
}

func TestSameIdentity(t *testing.T) {
	assert.True(t, SameIdentity(nil, nil))
	assert.False(t, SameIdentity(IntID(1), nil))
	assert.False(t, SameIdentity(nil, IntID(1)))
	assert.True(t, SameIdentity(IntID(3), IntID(3)))
}

func TestIdentityHash_Nil(t *testing.T) {
	assert.Equal(t, NilIdentityHash, IdentityHash(nil))
	assert.Equal(t, IdentityHash(nil), IdentityHash(nil))
}

func TestAsIntID(t *testing.T) {
	id, err := AsIntID(IntID(9))
	require.NoError(t, err)
	assert.Equal(t, IntID(9), id)

	_, err = AsIntID(nil)
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestEntityEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same type same id", &widget{Entity: NewEntity(IntID(1))}, &widget{Entity: NewEntity(IntID(1))}, true},
		{"attributes ignored", &widget{Entity: NewEntity(IntID(1)), Name: "a"}, &widget{Entity: NewEntity(IntID(1)), Name: "b"}, true},
		{"same type different id", &widget{Entity: NewEntity(IntID(1))}, &widget{Entity: NewEntity(IntID(2))}, false},
		{"different type same id", &widget{Entity: NewEntity(IntID(1))}, &gadget{Entity: NewEntity(IntID(1))}, false},
		{"subtype vs base", &widget{Entity: NewEntity(IntID(1))}, &specialWidget{widget{Entity: NewEntity(IntID(1))}}, false},
		{"both unset", &widget{}, &widget{}, true},
		{"one unset", &widget{}, &widget{Entity: NewEntity(IntID(1))}, false},
		{"not an entity", &widget{Entity: NewEntity(IntID(1))}, IntID(1), false},
		{"nil other", &widget{Entity: NewEntity(IntID(1))}, nil, false},
		{"nil pointer vs value", &widget{}, (*widget)(nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestEntityHash_ConsistentWithEqual(t *testing.T) {
	a := &widget{Entity: NewEntity(IntID(1)), Name: "a"}
	b := &widget{Entity: NewEntity(IntID(1)), Name: "b"}
	require.True(t, Equal(a, b))
	assert.Equal(t, Hash(a), Hash(b))

	assert.Equal(t, NilIdentityHash, Hash(&widget{}))
	assert.Equal(t, NilIdentityHash, Hash((*widget)(nil)))
}

func TestEntity_SetEntityID(t *testing.T) {
	w := &widget{}
	assert.Nil(t, w.EntityID())

	w.SetEntityID(IntID(5))
	assert.Equal(t, IntID(5), w.EntityID())
}

func TestRootEntity_VersionExcluded(t *testing.T) {
	a := &account{RootEntity: NewRootEntity(IntID(1), 0)}
	b := &account{RootEntity: NewRootEntity(IntID(1), 5)}

	assert.True(t, Equal(a, b))
	assert.Equal(t, Hash(a), Hash(b))
	assert.Equal(t, int64(0), a.VersionID())
	assert.Equal(t, int64(5), b.VersionID())

	a.SetVersionID(6)
	assert.Equal(t, int64(6), a.VersionID())
	assert.True(t, Equal(a, b))
}

func TestBaseValueObject_Panics(t *testing.T) {
	v := bareValue{}

	assert.PanicsWithError(t, "value object equality: domain: not implemented", func() {
		v.Equals(IntID(1))
	})
	assert.PanicsWithError(t, "value object hash: domain: not implemented", func() {
		v.Hash()
	})
}

func TestUnimplementedRepository(t *testing.T) {
	var repo Repository[*account] = UnimplementedRepository[*account]{}
	ctx := context.Background()

	got, err := repo.Get(ctx, IntID(1))
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Nil(t, got)

	list, err := repo.Search(ctx, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Nil(t, list)

	assert.ErrorIs(t, repo.Delete(ctx, IntID(1)), ErrNotImplemented)
	assert.ErrorIs(t, repo.Save(ctx, &account{}), ErrNotImplemented)
}

func TestSearchQueryOptions(t *testing.T) {
	q := NewSearchQuery(
		WithFilter("text_contains", "who"),
		WithFilter("published_before", 10),
		OrderBy("-pub_date"),
		OrderBy("id"),
		WithLimit(5),
		WithOffset(2),
	)

	assert.Equal(t, map[string]any{"text_contains": "who", "published_before": 10}, q.Filters)
	assert.Equal(t, []string{"-pub_date", "id"}, q.OrderBy)
	assert.Equal(t, 5, q.Limit)
	assert.Equal(t, 2, q.Offset)

	assert.Equal(t, SearchQuery{}, NewSearchQuery())
}

func TestDeleteQueryOptions(t *testing.T) {
	assert.Nil(t, NewDeleteQuery().ExpectedVersion)

	q := NewDeleteQuery(IfVersion(3))
	require.NotNil(t, q.ExpectedVersion)
	assert.Equal(t, int64(3), *q.ExpectedVersion)
}
