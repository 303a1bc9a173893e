package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstrone/internal/domain"
	"gstrone/internal/port"
)

type filingRepo struct {
	db *sqlx.DB
}

// NewFilingRepo creates a new PostgreSQL-backed FilingRepository.
func NewFilingRepo(db *sqlx.DB) port.FilingRepository {
	return &filingRepo{db: db}
}

func (r *filingRepo) Save(ctx context.Context, filing *domain.Filing) error {
	filing.CreatedAt = time.Now().UTC()

	query := `INSERT INTO filings (
		id, gstin, filing_period, upload_ids, document, warnings, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		filing.ID, filing.GSTIN, filing.FilingPeriod,
		filing.UploadIDs, filing.Document, filing.Warnings, filing.CreatedAt)
	if err != nil {
		return fmt.Errorf("filingRepo.Save: %w", err)
	}
	return nil
}

func (r *filingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Filing, error) {
	var filing domain.Filing
	err := r.db.GetContext(ctx, &filing, "SELECT * FROM filings WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("filingRepo.GetByID: %w", err)
	}
	return &filing, nil
}

func (r *filingRepo) ListByPeriod(ctx context.Context, gstin, filingPeriod string) ([]domain.Filing, error) {
	var filings []domain.Filing
	err := r.db.SelectContext(ctx, &filings,
		`SELECT id, gstin, filing_period, upload_ids, '{}'::jsonb AS document,
		        warnings, created_at
		 FROM filings WHERE gstin = $1 AND filing_period = $2
		 ORDER BY created_at DESC`,
		gstin, filingPeriod)
	if err != nil {
		return nil, fmt.Errorf("filingRepo.ListByPeriod: %w", err)
	}
	return filings, nil
}
