package importer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// record is one row of a decoded file. fault is set when the row itself could not be parsed.
type record struct {
	row   int
	cells []string
	fault string
}

func (r record) blank() bool {
	if r.fault != "" {
		return false
	}

	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

// header maps schema columns to cell positions.
type header struct {
	index map[string]int
	width int
}

// parseHeader matches cells against the schema case-insensitively. Unknown columns are ignored.
func parseHeader(cells []string) (*header, error) {
	h := &header{index: make(map[string]int, len(Columns)), width: len(cells)}

	for i, cell := range cells {
		name := strings.ToLower(strings.TrimSpace(cell))
		if alias, ok := aliases[name]; ok {
			name = alias
		}

		if !slices.Contains(Columns, name) {
			continue
		}

		if _, dup := h.index[name]; dup {
			return nil, schemaMismatch("column %q appears more than once", name)
		}

		h.index[name] = i
	}

	var missing []string

	for _, col := range Columns {
		if _, ok := h.index[col]; !ok && col != transaction.FieldNote {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return nil, schemaMismatch("missing columns: %s", strings.Join(missing, ", "))
	}

	return h, nil
}

// candidate extracts the schema fields of rec. A row with non-empty cells past the last header
// column does not fit the schema.
func (h *header) candidate(rec record) (transaction.Candidate, *transaction.ValidationError) {
	for i := h.width; i < len(rec.cells); i++ {
		if strings.TrimSpace(rec.cells[i]) != "" {
			return transaction.Candidate{}, &transaction.ValidationError{
				Kind:   transaction.KindSchemaMismatch,
				Reason: fmt.Sprintf("row has %d cells, header has %d columns", len(rec.cells), h.width),
			}
		}
	}

	cell := func(col string) string {
		i, ok := h.index[col]
		if !ok || i >= len(rec.cells) {
			return ""
		}

		return rec.cells[i]
	}

	return transaction.Candidate{
		Date:     cell(transaction.FieldDate),
		Type:     cell(transaction.FieldType),
		Amount:   cell(transaction.FieldAmount),
		Currency: cell(transaction.FieldCurrency),
		Category: cell(transaction.FieldCategory),
		Note:     cell(transaction.FieldNote),
	}, nil
}
