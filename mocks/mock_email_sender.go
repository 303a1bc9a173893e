package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendFilingReady(ctx context.Context, toEmail, toName, filingPeriod string, warningCount int) error {
	args := m.Called(ctx, toEmail, toName, filingPeriod, warningCount)
	return args.Error(0)
}
