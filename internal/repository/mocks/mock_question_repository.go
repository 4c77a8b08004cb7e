package mocks

import (
	"context"

	"pollsapi/internal/domain"
	"pollsapi/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Get(ctx context.Context, id domain.EntityIdentity) (*model.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

// Search records the options as a resolved domain.SearchQuery so expectations
// can match on it.
func (m *MockQuestionRepository) Search(ctx context.Context, ids []domain.EntityIdentity, opts ...domain.SearchOption) ([]*model.Question, error) {
	args := m.Called(ctx, ids, domain.NewSearchQuery(opts...))
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Question), args.Error(1)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id domain.EntityIdentity, opts ...domain.DeleteOption) error {
	args := m.Called(ctx, id, domain.NewDeleteQuery(opts...))
	return args.Error(0)
}

func (m *MockQuestionRepository) Save(ctx context.Context, q *model.Question) error {
	args := m.Called(ctx, q)
	if f, ok := args.Get(0).(func(context.Context, *model.Question) error); ok {
		return f(ctx, q)
	}
	return args.Error(0)
}
