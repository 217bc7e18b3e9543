package mocks

import (
	"context"

	"tabqa/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Answer(ctx context.Context, question, passage string) (*model.Answer, error) {
	args := m.Called(ctx, question, passage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Answer), args.Error(1)
}

func (m *MockEngine) Close() error {
	args := m.Called()
	return args.Error(0)
}
