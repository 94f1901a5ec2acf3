package core

// input.go turns an uploaded file into the text the import parsers consume.
//
// CSV input is cleaned of the usual Windows artifacts (UTF-8 BOM, invalid
// bytes from Windows-1252 exports). Excel workbooks are read with excelize;
// the first sheet's rows are re-joined into comma-separated lines so both
// formats share one pipeline.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

// ErrUnsupportedFile is returned for extensions other than .csv, .txt and .xlsx.
var ErrUnsupportedFile = errors.New("unsupported file type")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileFormat is the detected format of an upload.
type FileFormat string

const (
	FormatCSV  FileFormat = "csv"
	FormatXLSX FileFormat = "xlsx"
)

// DetectFormat picks the format from the file name. Files without an
// extension are treated as CSV.
func DetectFormat(fileName string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(fileName))
	}
}

// ReadUpload reads at most limit bytes from r and returns the file as import
// text. A limit of zero or less disables the check.
func ReadUpload(r io.Reader, fileName string, limit int64) (string, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return "", err
	}

	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}

	return DecodeUpload(data, format)
}

// DecodeUpload converts raw file bytes in the given format to import text.
func DecodeUpload(data []byte, format FileFormat) (string, error) {
	switch format {
	case FormatXLSX:
		return xlsxToText(data)
	default:
		return DecodeText(data), nil
	}
}

// DecodeText strips a UTF-8 BOM and replaces invalid UTF-8 sequences with
// U+FFFD.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

// xlsxToText reads the first sheet of a workbook.
func xlsxToText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("invalid spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("invalid spreadsheet: read %s: %w", sheets[0], err)
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(JoinRow(row))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// TemplateXLSX renders a CSV template as a single-sheet workbook.
func TemplateXLSX(template string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range SplitRows(template) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write template row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
