package service_test

import (
	"context"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstrone/internal/config"
	"gstrone/internal/domain"
	"gstrone/internal/port"
	"gstrone/internal/service"
	"gstrone/mocks"
)

// memFile adapts a string to multipart.File for tests.
type memFile struct {
	*strings.Reader
}

func (memFile) Close() error { return nil }

func newUploadInput(filename, content string) service.UploadInput {
	return service.UploadInput{
		File: memFile{strings.NewReader(content)},
		Header: &multipart.FileHeader{
			Filename: filename,
			Size:     int64(len(content)),
		},
	}
}

func s3TestConfig() *config.S3Config {
	return &config.S3Config{Bucket: "gstrone-test", MaxFileSizeMB: 1}
}

func TestUploadService_Upload_CSV(t *testing.T) {
	uploadsRepo := new(mocks.MockUploadRepo)
	storage := new(mocks.MockObjectStorage)

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "gstrone-test" && strings.HasPrefix(in.Key, "uploads/")
	})).Return(&port.UploadOutput{Location: "s3://gstrone-test/x"}, nil)

	uploadsRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Upload")).Return(nil)
	uploadsRepo.On("SaveRecords", mock.Anything, mock.Anything, mock.Anything, mock.Anything, 2).Return(nil)

	svc := service.NewUploadService(uploadsRepo, storage, s3TestConfig())

	created, err := svc.Upload(context.Background(),
		newUploadInput("tcs_sales_sep.csv", "gst_rate,total_taxable_sale_value\n18,1000\n18,2000\n"))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, domain.FileKindTCSSales, created[0].FileKind)
	assert.Equal(t, 2, created[0].RowCount)
	assert.Equal(t, domain.UploadStatusParsed, created[0].Status)

	storage.AssertExpectations(t)
	uploadsRepo.AssertExpectations(t)
}

func TestUploadService_Upload_UnsupportedExtension(t *testing.T) {
	svc := service.NewUploadService(new(mocks.MockUploadRepo), new(mocks.MockObjectStorage), s3TestConfig())

	_, err := svc.Upload(context.Background(), newUploadInput("report.pdf", "%PDF"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestUploadService_Upload_TooLarge(t *testing.T) {
	svc := service.NewUploadService(new(mocks.MockUploadRepo), new(mocks.MockObjectStorage), s3TestConfig())

	input := newUploadInput("big.csv", "a,b\n")
	input.Header.Size = 2 * 1024 * 1024

	_, err := svc.Upload(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
}

func TestUploadService_Upload_StorageFailure(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	svc := service.NewUploadService(new(mocks.MockUploadRepo), storage, s3TestConfig())

	_, err := svc.Upload(context.Background(), newUploadInput("tcs_sales.csv", "gst_rate\n18\n"))
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
}

func TestUploadService_Upload_ParseFailureRecorded(t *testing.T) {
	uploadsRepo := new(mocks.MockUploadRepo)
	storage := new(mocks.MockObjectStorage)

	storage.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{}, nil)

	var recorded *domain.Upload
	uploadsRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Upload")).
		Run(func(args mock.Arguments) { recorded = args.Get(1).(*domain.Upload) }).
		Return(nil)

	svc := service.NewUploadService(uploadsRepo, storage, s3TestConfig())

	// Valid extension, unreadable content.
	_, err := svc.Upload(context.Background(), newUploadInput("sales.xlsx", "not a workbook"))
	require.Error(t, err)

	require.NotNil(t, recorded)
	assert.Equal(t, domain.UploadStatusFailed, recorded.Status)
	assert.NotEmpty(t, recorded.ParseError)
}

func TestUploadService_List_ClampsLimit(t *testing.T) {
	uploadsRepo := new(mocks.MockUploadRepo)
	uploadsRepo.On("List", mock.Anything, 0, 20).Return([]domain.Upload{}, 0, nil)

	svc := service.NewUploadService(uploadsRepo, new(mocks.MockObjectStorage), s3TestConfig())

	_, _, err := svc.List(context.Background(), -5, 500)
	require.NoError(t, err)
	uploadsRepo.AssertExpectations(t)
}
