package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	enc "github.com/MrJamesThe3rd/budget/internal/encoding"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// decode reads every row of the file. Errors are always *FileError.
func decode(format Format, r io.Reader) ([]record, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	}

	return nil, unreadable(fmt.Errorf("%w: %q", ErrUnsupportedFormat, format))
}

func readCSV(r io.Reader) ([]record, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, unreadable(fmt.Errorf("detect encoding: %w", err))
	}

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []record

	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var pe *csv.ParseError
		if errors.As(err, &pe) && resyncs(pe) {
			records = append(records, record{row: pe.StartLine, fault: fmt.Sprintf("%v at column %d", pe.Err, pe.Column)})
			continue
		}

		if err != nil {
			return nil, unreadable(fmt.Errorf("read csv: %w", err))
		}

		line, _ := reader.FieldPos(0)

		for _, c := range cells {
			if !utf8.ValidString(c) {
				return nil, unreadable(fmt.Errorf("invalid text encoding on line %d", line))
			}
		}

		records = append(records, record{row: line, cells: cells})
	}

	return records, nil
}

// resyncs reports whether the reader is back at a record boundary after pe, so the broken record
// can be rejected on its own. A quote left open across lines swallows the rest of the file.
func resyncs(pe *csv.ParseError) bool {
	if errors.Is(pe.Err, csv.ErrFieldCount) {
		return true
	}

	return pe.Line == pe.StartLine && (errors.Is(pe.Err, csv.ErrBareQuote) || errors.Is(pe.Err, csv.ErrQuote))
}

// sniffDelimiter picks ';' when the first line has more semicolons than commas.
func sniffDelimiter(br *bufio.Reader) rune {
	buf, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i]
	}

	if bytes.Count(buf, []byte{';'}) > bytes.Count(buf, []byte{','}) {
		return ';'
	}

	return ','
}

// readXLSX reads the first sheet. Cell values are taken raw so amounts keep full precision;
// cells of the date column stored as numbers are Excel serial dates.
func readXLSX(r io.Reader) ([]record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, unreadable(fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, unreadable(errors.New("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, unreadable(fmt.Errorf("read sheet %q: %w", sheets[0], err))
	}

	records := make([]record, 0, len(rows))
	dateCol := -1

	for i, cells := range rows {
		rec := record{row: i + 1, cells: cells}

		if dateCol < 0 {
			if !rec.blank() {
				dateCol = columnIndex(cells, transaction.FieldDate)
			}
		} else if dateCol < len(cells) && numericCell(f, sheets[0], dateCol, i) {
			cells[dateCol] = serialDate(cells[dateCol])
		}

		records = append(records, rec)
	}

	return records, nil
}

func columnIndex(cells []string, name string) int {
	for i, c := range cells {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return i
		}
	}

	// Any value past the header, so no data cell is converted.
	return len(cells)
}

// numericCell reports whether the zero-based cell stores a number. Text that merely looks numeric,
// such as "2024", is not a serial date.
func numericCell(f *excelize.File, sheet string, col, row int) bool {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false
	}

	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return false
	}

	return typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber
}

// serialDate converts an Excel serial day number to YYYY-MM-DD and leaves any other text as is.
func serialDate(s string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || serial <= 0 {
		return s
	}

	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return s
	}

	return t.Format(time.DateOnly)
}
