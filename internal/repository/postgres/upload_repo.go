package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstrone/internal/domain"
	"gstrone/internal/port"
)

type uploadRepo struct {
	db *sqlx.DB
}

// NewUploadRepo creates a new PostgreSQL-backed UploadRepository.
func NewUploadRepo(db *sqlx.DB) port.UploadRepository {
	return &uploadRepo{db: db}
}

// recordsPayload is the JSONB shape of the parsed rows column. Headers are
// kept alongside the rows so source column order survives the round trip.
type recordsPayload struct {
	Headers []string           `json:"headers"`
	Records []domain.RawRecord `json:"records"`
}

func (r *uploadRepo) Create(ctx context.Context, upload *domain.Upload) error {
	now := time.Now().UTC()
	upload.CreatedAt = now
	upload.UpdatedAt = now
	if len(upload.Records) == 0 {
		upload.Records = json.RawMessage(`{"headers":[],"records":[]}`)
	}

	query := `INSERT INTO uploads (
		id, file_name, original_name, file_kind, s3_bucket, s3_key,
		row_count, records, status, parse_error, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		upload.ID, upload.FileName, upload.OriginalName, upload.FileKind,
		upload.S3Bucket, upload.S3Key, upload.RowCount, upload.Records,
		upload.Status, upload.ParseError, upload.CreatedAt, upload.UpdatedAt)
	if err != nil {
		return fmt.Errorf("uploadRepo.Create: %w", err)
	}
	return nil
}

func (r *uploadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	var upload domain.Upload
	err := r.db.GetContext(ctx, &upload, "SELECT * FROM uploads WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("uploadRepo.GetByID: %w", err)
	}
	return &upload, nil
}

func (r *uploadRepo) List(ctx context.Context, offset, limit int) ([]domain.Upload, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM uploads"); err != nil {
		return nil, 0, fmt.Errorf("uploadRepo.List count: %w", err)
	}

	var uploads []domain.Upload
	err := r.db.SelectContext(ctx, &uploads,
		`SELECT id, file_name, original_name, file_kind, s3_bucket, s3_key,
		        row_count, '{}'::jsonb AS records, status, parse_error,
		        created_at, updated_at
		 FROM uploads ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("uploadRepo.List: %w", err)
	}
	return uploads, total, nil
}

func (r *uploadRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadStatus, parseError string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE uploads SET status = $1, parse_error = $2, updated_at = $3 WHERE id = $4",
		status, parseError, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("uploadRepo.UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *uploadRepo) SaveRecords(ctx context.Context, id uuid.UUID, records []domain.RawRecord, headers []string, rowCount int) error {
	payload, err := json.Marshal(recordsPayload{Headers: headers, Records: records})
	if err != nil {
		return fmt.Errorf("uploadRepo.SaveRecords marshal: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE uploads SET records = $1, row_count = $2, status = $3, updated_at = $4 WHERE id = $5`,
		payload, rowCount, domain.UploadStatusParsed, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("uploadRepo.SaveRecords: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *uploadRepo) GetRecords(ctx context.Context, id uuid.UUID) ([]string, []domain.RawRecord, error) {
	var raw json.RawMessage
	err := r.db.GetContext(ctx, &raw, "SELECT records FROM uploads WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("uploadRepo.GetRecords: %w", err)
	}

	var payload recordsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, fmt.Errorf("uploadRepo.GetRecords unmarshal: %w", err)
	}
	return payload.Headers, payload.Records, nil
}
