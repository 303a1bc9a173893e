package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrEmptyInput          = errors.New("no usable transaction rows in input")
	ErrInvalidGSTIN        = errors.New("seller GSTIN must be 15 characters")
	ErrInvalidFilingPeriod = errors.New("filing period must be MMYYYY")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUnknownFileKind     = errors.New("could not detect export file kind")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrNegativeTaxable     = errors.New("negative taxable value")
)
