package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Upload represents one uploaded marketplace export file and its parsed rows.
type Upload struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	FileName     string          `db:"file_name" json:"file_name"`
	OriginalName string          `db:"original_name" json:"original_name"`
	FileKind     FileKind        `db:"file_kind" json:"file_kind"`
	S3Bucket     string          `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string          `db:"s3_key" json:"s3_key"`
	RowCount     int             `db:"row_count" json:"row_count"`
	Records      json.RawMessage `db:"records" json:"-"`
	Status       UploadStatus    `db:"status" json:"status"`
	ParseError   string          `db:"parse_error" json:"parse_error,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Filing stores one generated statutory document set keyed by the uploads
// that produced it. Immutable once written.
type Filing struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	GSTIN        string          `db:"gstin" json:"gstin"`
	FilingPeriod string          `db:"filing_period" json:"filing_period"`
	UploadIDs    json.RawMessage `db:"upload_ids" json:"upload_ids"`
	Document     json.RawMessage `db:"document" json:"document"`
	Warnings     json.RawMessage `db:"warnings" json:"warnings"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
