package report

import (
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const (
	transactionsSheet = "transactions"
	summarySheet      = "summary"
)

var (
	transactionsHeader = []any{"id", "date", "type", "amount", "currency", "category", "note"}
	summaryHeader      = []any{"currency", "total income", "total expense", "balance"}
)

// WriteWorkbook writes seq to w as an XLSX workbook with a transactions sheet and a per-currency
// summary sheet.
func WriteWorkbook(w io.Writer, seq iter.Seq[*transaction.Transaction]) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("creating amount style: %w", err)
	}

	rows := 0

	if err := writeRow(f, transactionsSheet, 1, transactionsHeader); err != nil {
		return err
	}

	for tx := range seq {
		rows++

		values := []any{tx.ID, tx.Date.Format(time.DateOnly), string(tx.Type), units(tx.Amount), string(tx.Currency), tx.Category, tx.Note}
		if err := writeRow(f, transactionsSheet, rows+1, values); err != nil {
			return err
		}
	}

	if err := writeRow(f, summarySheet, 1, summaryHeader); err != nil {
		return err
	}

	for i, e := range Summarize(seq, GroupCurrency).Entries() {
		values := []any{string(e.Currency), units(e.Income), units(e.Expense), units(e.Net)}
		if err := writeRow(f, summarySheet, i+2, values); err != nil {
			return err
		}
	}

	styles := []struct {
		sheet, from, to string
		style           int
	}{
		{transactionsSheet, "A1", "G1", bold},
		{summarySheet, "A1", "D1", bold},
		{transactionsSheet, "D2", fmt.Sprintf("D%d", max(rows+1, 2)), money},
		{summarySheet, "B2", fmt.Sprintf("D%d", len(transaction.Currencies)+1), money},
	}

	for _, s := range styles {
		if err := f.SetCellStyle(s.sheet, s.from, s.to, s.style); err != nil {
			return fmt.Errorf("styling %s: %w", s.sheet, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, axis, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}

	return nil
}

// units converts minor units to a spreadsheet number.
func units(cents int64) float64 {
	return float64(cents) / 100
}
