package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pollsapi/internal/domain"
	"pollsapi/internal/model"
	"pollsapi/internal/repository"
)

// QuestionMemory is an in-process implementation of repository.QuestionRepository
// with the same optimistic-concurrency semantics as the PostgreSQL adapter.
// It stores deep copies, so callers never share state with the store.
// It is safe for concurrent use by multiple goroutines.
type QuestionMemory struct {
	mu         sync.RWMutex
	questions  map[domain.IntID]*model.Question
	nextQID    int64
	nextChoice int64
}

// NewQuestionMemory creates an empty store.
func NewQuestionMemory() *QuestionMemory {
	return &QuestionMemory{questions: make(map[domain.IntID]*model.Question)}
}

var _ repository.QuestionRepository = (*QuestionMemory)(nil)

// Get returns a copy of the stored question.
func (r *QuestionMemory) Get(ctx context.Context, id domain.EntityIdentity) (*model.Question, error) {
	qid, err := domain.AsIntID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questions[qid]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", qid, domain.ErrNotFound)
	}
	return q.Clone(), nil
}

// Search understands the same filters and order fields as the PostgreSQL adapter.
func (r *QuestionMemory) Search(ctx context.Context, ids []domain.EntityIdentity, opts ...domain.SearchOption) ([]*model.Question, error) {
	query := domain.NewSearchQuery(opts...)

	var wanted map[domain.IntID]struct{}
	if len(ids) > 0 {
		wanted = make(map[domain.IntID]struct{}, len(ids))
		for _, id := range ids {
			v, err := domain.AsIntID(id)
			if err != nil {
				return nil, err
			}
			wanted[v] = struct{}{}
		}
	}

	preds, err := predicates(query.Filters)
	if err != nil {
		return nil, err
	}
	less, err := comparator(query.OrderBy)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := make([]*model.Question, 0)
	for id, q := range r.questions {
		if wanted != nil {
			if _, ok := wanted[id]; !ok {
				continue
			}
		}
		if matchAll(q, preds) {
			matched = append(matched, q.Clone())
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return []*model.Question{}, nil
		}
		matched = matched[query.Offset:]
	}
	if query.Limit > 0 && query.Limit < len(matched) {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// Delete removes the question, optionally guarded by a version check.
func (r *QuestionMemory) Delete(ctx context.Context, id domain.EntityIdentity, opts ...domain.DeleteOption) error {
	qid, err := domain.AsIntID(id)
	if err != nil {
		return err
	}
	dq := domain.NewDeleteQuery(opts...)

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.questions[qid]
	if !ok {
		return fmt.Errorf("question %s: %w", qid, domain.ErrNotFound)
	}
	if dq.ExpectedVersion != nil && stored.VersionID() != *dq.ExpectedVersion {
		return fmt.Errorf("question %s: %w", qid, domain.ErrConflict)
	}
	delete(r.questions, qid)
	return nil
}

// Save stores a copy of q after a version check, then writes the new version
// and any freshly assigned identities back to q.
func (r *QuestionMemory) Save(ctx context.Context, q *model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		qid    domain.IntID
		stored *model.Question
	)
	if q.EntityID() != nil {
		id, err := domain.AsIntID(q.EntityID())
		if err != nil {
			return err
		}
		var ok bool
		stored, ok = r.questions[id]
		if !ok {
			return fmt.Errorf("question %s: %w", id, domain.ErrNotFound)
		}
		if stored.VersionID() != q.VersionID() {
			return fmt.Errorf("question %s: %w", id, domain.ErrConflict)
		}
		qid = id
	}

	for _, c := range q.Choices {
		if c.EntityID() == nil {
			continue
		}
		cid, err := domain.AsIntID(c.EntityID())
		if err != nil {
			return err
		}
		// A choice id must already belong to this question.
		if stored == nil {
			return fmt.Errorf("choice %s not in new question: %w", cid, domain.ErrConflict)
		}
		if _, ok := stored.Choice(cid); !ok {
			return fmt.Errorf("choice %s not in question %s: %w", cid, qid, domain.ErrConflict)
		}
	}

	// Validation is done; nothing below can fail.
	if q.EntityID() == nil {
		r.nextQID++
		qid = domain.IntID(r.nextQID)
		q.SetEntityID(qid)
	}
	for _, c := range q.Choices {
		if c.EntityID() == nil {
			r.nextChoice++
			c.SetEntityID(domain.IntID(r.nextChoice))
		}
	}
	q.SetVersionID(q.VersionID() + 1)
	r.questions[qid] = q.Clone()
	return nil
}

type predicate func(*model.Question) bool

func predicates(filters map[string]any) ([]predicate, error) {
	preds := make([]predicate, 0, len(filters))
	for k, v := range filters {
		switch k {
		case repository.FilterPublishedBefore:
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("%w: %s wants time.Time, got %T", domain.ErrUnsupportedFilter, k, v)
			}
			preds = append(preds, func(q *model.Question) bool { return !q.PubDate.After(t) })
		case repository.FilterPublishedAfter:
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("%w: %s wants time.Time, got %T", domain.ErrUnsupportedFilter, k, v)
			}
			preds = append(preds, func(q *model.Question) bool { return !q.PubDate.Before(t) })
		case repository.FilterTextContains:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s wants string, got %T", domain.ErrUnsupportedFilter, k, v)
			}
			needle := strings.ToLower(s)
			preds = append(preds, func(q *model.Question) bool {
				return strings.Contains(strings.ToLower(q.Text), needle)
			})
		default:
			return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFilter, k)
		}
	}
	return preds, nil
}

func matchAll(q *model.Question, preds []predicate) bool {
	for _, p := range preds {
		if !p(q) {
			return false
		}
	}
	return true
}

// comparator mirrors the SQL ORDER BY, including the trailing id tie-break.
func comparator(fields []string) (func(a, b *model.Question) bool, error) {
	type key struct {
		cmp  func(a, b *model.Question) int
		desc bool
	}
	keys := make([]key, 0, len(fields)+1)
	hasID := false
	for _, f := range fields {
		desc := strings.HasPrefix(f, "-")
		name := strings.TrimPrefix(f, "-")
		var cmp func(a, b *model.Question) int
		switch name {
		case repository.OrderID:
			cmp = compareID
			hasID = true
		case repository.OrderPubDate:
			cmp = func(a, b *model.Question) int { return a.PubDate.Compare(b.PubDate) }
		case repository.OrderText:
			cmp = func(a, b *model.Question) int { return strings.Compare(a.Text, b.Text) }
		default:
			return nil, fmt.Errorf("%w: order field %q", domain.ErrUnsupportedFilter, f)
		}
		keys = append(keys, key{cmp: cmp, desc: desc})
	}
	if !hasID {
		keys = append(keys, key{cmp: compareID})
	}

	return func(a, b *model.Question) bool {
		for _, k := range keys {
			c := k.cmp(a, b)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	}, nil
}

func compareID(a, b *model.Question) int {
	ia, ib := a.EntityID().(domain.IntID), b.EntityID().(domain.IntID)
	switch {
	case ia < ib:
		return -1
	case ia > ib:
		return 1
	default:
		return 0
	}
}
