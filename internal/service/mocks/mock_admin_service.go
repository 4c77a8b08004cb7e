package mocks

import (
	"context"

	"pollsapi/internal/model"
	"pollsapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Search(ctx context.Context, q service.AdminQuery) (*service.QuestionListResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QuestionListResult), args.Error(1)
}

func (m *MockAdminService) Get(ctx context.Context, id int64) (*model.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *MockAdminService) Create(ctx context.Context, in service.QuestionInput) (*model.Question, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *MockAdminService) Update(ctx context.Context, id int64, in service.QuestionInput) (*model.Question, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *MockAdminService) Delete(ctx context.Context, id int64, version int64) error {
	args := m.Called(ctx, id, version)
	return args.Error(0)
}

func (m *MockAdminService) ExportResults(ctx context.Context, id int64) (*service.ExportResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}
