// Package importer turns uploaded CSV and XLSX files into ledger entries.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// Format is the container of an uploaded file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is wrapped by the FileError returned for formats other than csv and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromFilename infers the format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	return ParseFormat(filepath.Ext(name))
}

// ContentType returns the MIME type of files in format f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	return "text/csv; charset=utf-8"
}

// Columns is the import schema, in template order.
var Columns = []string{
	transaction.FieldDate,
	transaction.FieldType,
	transaction.FieldAmount,
	transaction.FieldCurrency,
	transaction.FieldCategory,
	transaction.FieldNote,
}

// aliases maps alternative header names to schema columns.
var aliases = map[string]string{
	"notes": transaction.FieldNote,
}

// FileError aborts an import as a whole. Nothing is appended when it is returned.
type FileError struct {
	Kind transaction.Kind
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *FileError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func unreadable(err error) *FileError {
	return &FileError{Kind: transaction.KindFileUnreadable, Err: err}
}

func schemaMismatch(format string, args ...any) *FileError {
	return &FileError{Kind: transaction.KindSchemaMismatch, Err: fmt.Errorf(format, args...)}
}

// Rejection is a data row that was not imported.
type Rejection struct {
	Row int // 1-based row number in the file; the header is row 1
	Err *transaction.ValidationError
}

// Report is the outcome of an import. Accepted and Rejected are in file order and
// together hold Total rows.
type Report struct {
	Total    int
	Accepted []*transaction.Transaction
	Rejected []Rejection
}
