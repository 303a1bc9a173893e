package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gstrone/internal/port"
)

// MockClassificationOracle is a mock implementation of port.ClassificationOracle.
type MockClassificationOracle struct {
	mock.Mock
}

func (m *MockClassificationOracle) Classify(ctx context.Context, input port.ClassifyInput) (*port.Suggestion, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.Suggestion), args.Error(1)
}

func (m *MockClassificationOracle) Insights(ctx context.Context, summary map[string]any) ([]string, error) {
	args := m.Called(ctx, summary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
