package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"gstrone/internal/domain"
)

// MockUploadRepo is a mock implementation of port.UploadRepository.
type MockUploadRepo struct {
	mock.Mock
}

func (m *MockUploadRepo) Create(ctx context.Context, upload *domain.Upload) error {
	args := m.Called(ctx, upload)
	return args.Error(0)
}

func (m *MockUploadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Upload), args.Error(1)
}

func (m *MockUploadRepo) List(ctx context.Context, offset, limit int) ([]domain.Upload, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Upload), args.Int(1), args.Error(2)
}

func (m *MockUploadRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadStatus, parseError string) error {
	args := m.Called(ctx, id, status, parseError)
	return args.Error(0)
}

func (m *MockUploadRepo) SaveRecords(ctx context.Context, id uuid.UUID, records []domain.RawRecord, headers []string, rowCount int) error {
	args := m.Called(ctx, id, records, headers, rowCount)
	return args.Error(0)
}

func (m *MockUploadRepo) GetRecords(ctx context.Context, id uuid.UUID) ([]string, []domain.RawRecord, error) {
	args := m.Called(ctx, id)
	var headers []string
	if args.Get(0) != nil {
		headers = args.Get(0).([]string)
	}
	var records []domain.RawRecord
	if args.Get(1) != nil {
		records = args.Get(1).([]domain.RawRecord)
	}
	return headers, records, args.Error(2)
}
