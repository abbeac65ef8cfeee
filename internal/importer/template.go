package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const templateSheet = "transactions"

// SampleRows returns the example rows offered with the template, dated on date.
func SampleRows(date time.Time) []transaction.Candidate {
	d := date.Format(time.DateOnly)

	return []transaction.Candidate{
		{Date: d, Type: "income", Amount: "50000", Currency: "PKR", Category: "Salary", Note: "Monthly salary"},
		{Date: d, Type: "expense", Amount: "8000", Currency: "PKR", Category: "Groceries", Note: "Weekly groceries"},
		{Date: d, Type: "expense", Amount: "15000", Currency: "PKR", Category: "Rent", Note: "Monthly rent"},
		{Date: d, Type: "income", Amount: "20000", Currency: "PKR", Category: "Freelance", Note: "Project payment"},
	}
}

// WriteTemplate writes the schema header followed by rows in format.
func WriteTemplate(w io.Writer, format Format, rows []transaction.Candidate) error {
	switch format {
	case FormatCSV:
		return writeCSVTemplate(w, rows)
	case FormatXLSX:
		return writeXLSXTemplate(w, rows)
	}

	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func cells(c transaction.Candidate) []string {
	return []string{c.Date, c.Type, c.Amount, c.Currency, c.Category, c.Note}
}

func writeCSVTemplate(w io.Writer, rows []transaction.Candidate) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range rows {
		if err := cw.Write(cells(row)); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func writeXLSXTemplate(w io.Writer, rows []transaction.Candidate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := f.SetSheetRow(templateSheet, "A1", &Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		values := cells(row)
		if err := f.SetSheetRow(templateSheet, axis, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}
