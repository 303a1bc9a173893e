// Package ingest reads marketplace export files (xlsx, csv, and zip bundles
// of either) into raw records for the normalizer.
package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"gstrone/internal/domain"
)

// File is one parsed export file: its headers in source order and one raw
// record per data row.
type File struct {
	Name    string
	Kind    domain.FileKind
	Headers []string
	Records []domain.RawRecord
}

// Read parses a single export file. ZIP bundles expand into one File per
// supported member; members of unsupported types are skipped.
func Read(filename string, data []byte) ([]File, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		f, err := readXLSX(filename, data)
		if err != nil {
			return nil, err
		}
		return []File{*f}, nil
	case ".csv":
		f, err := readCSV(filename, data)
		if err != nil {
			return nil, err
		}
		return []File{*f}, nil
	case ".zip":
		return readZIP(data)
	default:
		return nil, fmt.Errorf("file %s: %w", filename, domain.ErrUnsupportedFileType)
	}
}

func readXLSX(filename string, data []byte) (*File, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx %s: %w", filename, err)
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s has no sheets", filename)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	return buildFile(filename, rows)
}

func readCSV(filename string, data []byte) (*File, error) {
	// Strip a UTF-8 BOM if the exporter wrote one.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv %s: %w", filename, err)
		}
		rows = append(rows, record)
	}
	return buildFile(filename, rows)
}

func readZIP(data []byte) ([]File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}

	var files []File
	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(member.Name)
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "__MACOSX") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".xlsx" && ext != ".csv" {
			continue
		}

		rc, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("opening zip member %s: %w", member.Name, err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading zip member %s: %w", member.Name, err)
		}

		parsed, err := Read(name, content)
		if err != nil {
			return nil, fmt.Errorf("zip member %s: %w", member.Name, err)
		}
		files = append(files, parsed...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("zip bundle: %w", domain.ErrEmptyInput)
	}
	return files, nil
}

// buildFile turns a raw row grid into headers plus records. The first row
// with any non-empty cell is the header row; fully empty data rows are
// dropped.
func buildFile(filename string, rows [][]string) (*File, error) {
	headerIdx := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("file %s: %w", filename, domain.ErrEmptyInput)
	}

	headers := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		headers[i] = strings.TrimSpace(h)
	}

	var records []domain.RawRecord
	for _, row := range rows[headerIdx+1:] {
		if rowEmpty(row) {
			continue
		}
		rec := domain.RawRecord{}
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}

	return &File{
		Name:    filename,
		Kind:    DetectKind(filename, headers),
		Headers: headers,
		Records: records,
	}, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
