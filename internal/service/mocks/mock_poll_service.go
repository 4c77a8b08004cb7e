package mocks

import (
	"context"

	"pollsapi/internal/model"
	"pollsapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockPollService struct {
	mock.Mock
}

func (m *MockPollService) Index(ctx context.Context) ([]*model.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Question), args.Error(1)
}

func (m *MockPollService) Detail(ctx context.Context, id int64) (*model.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *MockPollService) Results(ctx context.Context, id int64) (*service.ResultsView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResultsView), args.Error(1)
}

func (m *MockPollService) Vote(ctx context.Context, questionID, choiceID int64) (*model.Question, error) {
	args := m.Called(ctx, questionID, choiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}
