package port

import (
	"context"

	"github.com/google/uuid"

	"gstrone/internal/domain"
)

// UploadRepository defines the contract for upload persistence. The core
// treats it as a key-value read/write: raw records in, parsed records out.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error)
	List(ctx context.Context, offset, limit int) ([]domain.Upload, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadStatus, parseError string) error
	SaveRecords(ctx context.Context, id uuid.UUID, records []domain.RawRecord, headers []string, rowCount int) error
	GetRecords(ctx context.Context, id uuid.UUID) (headers []string, records []domain.RawRecord, err error)
}

// FilingRepository stores generated statutory documents keyed by upload set.
type FilingRepository interface {
	Save(ctx context.Context, filing *domain.Filing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Filing, error)
	ListByPeriod(ctx context.Context, gstin, filingPeriod string) ([]domain.Filing, error)
}
