package domain

import (
	"context"
	"fmt"
)

// Repository is the persistence contract for one aggregate type. It decouples
// aggregates from the storage technology; adapters are stateless with respect
// to the entities they hand out and never own them.
type Repository[T Aggregate] interface {
	// Get returns the aggregate named by id, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id EntityIdentity) (T, error)

	// Search returns the aggregates matching ids (when non-empty) and every
	// option. Nothing matching is an empty slice, not an error.
	Search(ctx context.Context, ids []EntityIdentity, opts ...SearchOption) ([]T, error)

	// Delete removes the aggregate named by id.
	Delete(ctx context.Context, id EntityIdentity, opts ...DeleteOption) error

	// Save persists the full state of entity. The stored version must equal
	// entity.VersionID(), otherwise the call fails with ErrConflict. On success
	// the version is incremented and written back to entity; new aggregates
	// also receive their identity.
	Save(ctx context.Context, entity T) error
}

// SearchQuery is the open-ended option set accepted by Search. Adapters decide
// which filter keys and order fields they support.
type SearchQuery struct {
	Filters map[string]any
	OrderBy []string
	Limit   int
	Offset  int
}

// SearchOption mutates a SearchQuery.
type SearchOption func(*SearchQuery)

// WithFilter adds an adapter-defined filter.
func WithFilter(key string, value any) SearchOption {
	return func(q *SearchQuery) {
		if q.Filters == nil {
			q.Filters = make(map[string]any)
		}
		q.Filters[key] = value
	}
}

// OrderBy appends sort fields; a leading "-" sorts descending.
func OrderBy(fields ...string) SearchOption {
	return func(q *SearchQuery) {
		q.OrderBy = append(q.OrderBy, fields...)
	}
}

// WithLimit caps the number of results. Zero or less means no cap.
func WithLimit(n int) SearchOption {
	return func(q *SearchQuery) { q.Limit = n }
}

// WithOffset skips the first n results.
func WithOffset(n int) SearchOption {
	return func(q *SearchQuery) { q.Offset = n }
}

// NewSearchQuery applies opts in order.
func NewSearchQuery(opts ...SearchOption) SearchQuery {
	var q SearchQuery
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// DeleteQuery carries Delete options.
type DeleteQuery struct {
	// ExpectedVersion, when set, makes Delete fail with ErrConflict if the
	// stored version differs.
	ExpectedVersion *int64
}

// DeleteOption mutates a DeleteQuery.
type DeleteOption func(*DeleteQuery)

// IfVersion guards a delete with an optimistic version check.
func IfVersion(v int64) DeleteOption {
	return func(q *DeleteQuery) { q.ExpectedVersion = &v }
}

// NewDeleteQuery applies opts in order.
func NewDeleteQuery(opts ...DeleteOption) DeleteQuery {
	var q DeleteQuery
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// UnimplementedRepository fails every operation with ErrNotImplemented.
// Adapters can embed it while they are being built.
type UnimplementedRepository[T Aggregate] struct{}

var _ Repository[*RootEntity] = UnimplementedRepository[*RootEntity]{}

func (UnimplementedRepository[T]) Get(context.Context, EntityIdentity) (T, error) {
	var zero T
	return zero, notImplemented("get")
}

func (UnimplementedRepository[T]) Search(context.Context, []EntityIdentity, ...SearchOption) ([]T, error) {
	return nil, notImplemented("search")
}

func (UnimplementedRepository[T]) Delete(context.Context, EntityIdentity, ...DeleteOption) error {
	return notImplemented("delete")
}

func (UnimplementedRepository[T]) Save(context.Context, T) error {
	return notImplemented("save")
}

func notImplemented(op string) error {
	return fmt.Errorf("repository %s: %w", op, ErrNotImplemented)
}
