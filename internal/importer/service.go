package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// Ledger receives the accepted rows of an import.
type Ledger interface {
	AppendBatch(ctx context.Context, txs []*transaction.Transaction) error
}

type Service struct {
	log *zap.Logger
}

func NewService(log *zap.Logger) *Service {
	return &Service{log: log}
}

// Import validates every data row of r independently and appends the accepted ones to ledger,
// in file order and after any existing entries. Rows failing validation are reported, not fatal.
//
// A *FileError is returned when the file cannot be decoded or its header does not match the
// schema; the ledger is left untouched in that case.
func (s *Service) Import(ctx context.Context, ledger Ledger, format Format, r io.Reader) (*Report, error) {
	records, err := decode(format, r)
	if err != nil {
		return nil, err
	}

	report, err := s.validate(records)
	if err != nil {
		return nil, err
	}

	if len(report.Accepted) > 0 {
		if err := ledger.AppendBatch(ctx, report.Accepted); err != nil {
			return nil, fmt.Errorf("appending imported rows: %w", err)
		}
	}

	s.log.Info("import finished",
		zap.String("format", string(format)),
		zap.Int("rows", report.Total),
		zap.Int("accepted", len(report.Accepted)),
		zap.Int("rejected", len(report.Rejected)),
	)

	return report, nil
}

func (s *Service) validate(records []record) (*Report, error) {
	start := 0
	for start < len(records) && records[start].blank() {
		start++
	}

	if start == len(records) {
		return nil, schemaMismatch("file has no header row")
	}

	if fault := records[start].fault; fault != "" {
		return nil, unreadable(fmt.Errorf("header row: %s", fault))
	}

	h, err := parseHeader(records[start].cells)
	if err != nil {
		return nil, err
	}

	report := &Report{}

	for _, rec := range records[start+1:] {
		if rec.blank() {
			continue
		}

		report.Total++

		tx, vErr := h.row(rec)
		if vErr != nil {
			report.Rejected = append(report.Rejected, Rejection{Row: rec.row, Err: vErr})
			continue
		}

		report.Accepted = append(report.Accepted, tx)
	}

	return report, nil
}

func (h *header) row(rec record) (*transaction.Transaction, *transaction.ValidationError) {
	if rec.fault != "" {
		return nil, &transaction.ValidationError{Kind: transaction.KindFileUnreadable, Reason: "unreadable row: " + rec.fault}
	}

	c, vErr := h.candidate(rec)
	if vErr != nil {
		return nil, vErr
	}

	tx, err := transaction.Validate(c)
	if err != nil {
		var ve *transaction.ValidationError
		if errors.As(err, &ve) {
			return nil, ve
		}

		return nil, &transaction.ValidationError{Kind: transaction.KindSchemaMismatch, Reason: err.Error()}
	}

	return tx, nil
}
