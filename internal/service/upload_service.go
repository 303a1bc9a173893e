package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"gstrone/internal/config"
	"gstrone/internal/domain"
	"gstrone/internal/ingest"
	"gstrone/internal/port"
)

var allowedExtensions = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".zip":  "application/zip",
}

// UploadInput is the DTO for export file upload requests.
type UploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// UploadService defines the export upload contract.
type UploadService interface {
	// Upload stores the raw file, parses it, and persists one upload record
	// per contained export file (a zip bundle yields several).
	Upload(ctx context.Context, input UploadInput) ([]domain.Upload, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error)
	List(ctx context.Context, offset, limit int) ([]domain.Upload, int, error)
}

type uploadService struct {
	uploads port.UploadRepository
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewUploadService creates a new UploadService implementation.
func NewUploadService(uploads port.UploadRepository, storage port.ObjectStorage, cfg *config.S3Config) UploadService {
	return &uploadService{uploads: uploads, storage: storage, cfg: cfg}
}

func (s *uploadService) Upload(ctx context.Context, input UploadInput) ([]domain.Upload, error) {
	ext := strings.ToLower(filepath.Ext(input.Header.Filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("extension %s: %w", ext, domain.ErrUnsupportedFileType)
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, fmt.Errorf("file exceeds %dMB: %w", s.cfg.MaxFileSizeMB, domain.ErrUploadFailed)
	}

	data, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	bundleID := uuid.New()
	key := fmt.Sprintf("uploads/%s/%s", bundleID, filepath.Base(input.Header.Filename))
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	files, parseErr := ingest.Read(input.Header.Filename, data)
	if parseErr != nil {
		// Keep the failed upload on record so the user sees why parsing broke.
		failed := domain.Upload{
			ID:           bundleID,
			FileName:     key,
			OriginalName: input.Header.Filename,
			FileKind:     domain.FileKindUnknown,
			S3Bucket:     s.cfg.Bucket,
			S3Key:        key,
			Status:       domain.UploadStatusFailed,
			ParseError:   parseErr.Error(),
		}
		if err := s.uploads.Create(ctx, &failed); err != nil {
			return nil, fmt.Errorf("recording failed upload: %w", err)
		}
		return nil, parseErr
	}

	var created []domain.Upload
	for _, f := range files {
		upload := domain.Upload{
			ID:           uuid.New(),
			FileName:     f.Name,
			OriginalName: input.Header.Filename,
			FileKind:     f.Kind,
			S3Bucket:     s.cfg.Bucket,
			S3Key:        key,
			RowCount:     len(f.Records),
			Status:       domain.UploadStatusPending,
		}
		if err := s.uploads.Create(ctx, &upload); err != nil {
			return nil, fmt.Errorf("creating upload record: %w", err)
		}
		if err := s.uploads.SaveRecords(ctx, upload.ID, f.Records, f.Headers, len(f.Records)); err != nil {
			return nil, fmt.Errorf("saving parsed records: %w", err)
		}
		upload.Status = domain.UploadStatusParsed
		created = append(created, upload)

		if f.Kind == domain.FileKindUnknown {
			log.Printf("service.uploadService: could not detect file kind for %s", f.Name)
		}
	}

	return created, nil
}

func (s *uploadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	return s.uploads.GetByID(ctx, id)
}

func (s *uploadService) List(ctx context.Context, offset, limit int) ([]domain.Upload, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.uploads.List(ctx, offset, limit)
}
