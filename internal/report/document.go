package report

import (
	"iter"
	"slices"
	"time"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// Document is the report handed to external renderers. Its JSON shape is stable: amounts are
// decimal strings with two places, dates are YYYY-MM-DD, and entries are sorted as in
// Summary.Entries.
type Document struct {
	Period       Period          `json:"period"`
	GeneratedAt  time.Time       `json:"generated_at"`
	GroupBy      GroupBy         `json:"group_by"`
	Entries      []DocumentEntry `json:"entries"`
	Breakdowns   []Breakdown     `json:"breakdowns"`
	Transactions []DocumentLine  `json:"transactions"`
}

// Period describes the filter the document was built from. Empty fields were not filtered on.
type Period struct {
	Label     string `json:"label"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Year      int    `json:"year,omitempty"`
	Month     int    `json:"month,omitempty"`
}

type DocumentEntry struct {
	Group    string               `json:"group"`
	Currency transaction.Currency `json:"currency"`
	Income   string               `json:"income"`
	Expense  string               `json:"expense"`
	Net      string               `json:"net"`
}

// Breakdown lists the category totals of one type in one currency, largest first.
type Breakdown struct {
	Type       transaction.Type     `json:"type"`
	Currency   transaction.Currency `json:"currency"`
	Categories []BreakdownLine      `json:"categories"`
}

type BreakdownLine struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type DocumentLine struct {
	ID       int64                `json:"id"`
	Date     string               `json:"date"`
	Type     transaction.Type     `json:"type"`
	Amount   string               `json:"amount"`
	Currency transaction.Currency `json:"currency"`
	Category string               `json:"category"`
	Note     string               `json:"note,omitempty"`
}

// NewPeriod describes filter.
func NewPeriod(filter transaction.ListFilter) Period {
	var p Period

	if filter.StartDate != nil {
		p.StartDate = filter.StartDate.Format(time.DateOnly)
	}

	if filter.EndDate != nil {
		p.EndDate = filter.EndDate.Format(time.DateOnly)
	}

	if filter.Year != nil {
		p.Year = *filter.Year
	}

	if filter.Month != nil {
		p.Month = int(*filter.Month)
	}

	p.Label = p.label()

	return p
}

func (p Period) label() string {
	switch {
	case p.StartDate != "" && p.EndDate != "":
		return p.StartDate + " to " + p.EndDate
	case p.StartDate != "":
		return "from " + p.StartDate
	case p.EndDate != "":
		return "until " + p.EndDate
	case p.Year != 0 && p.Month != 0:
		return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	case p.Year != 0:
		return time.Date(p.Year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
	case p.Month != 0:
		return time.Month(p.Month).String()
	}

	return "All time"
}

// BuildDocument summarizes seq by groupBy and adds income and expense breakdowns for every
// currency that has transactions. seq is ranged over more than once.
func BuildDocument(period Period, seq iter.Seq[*transaction.Transaction], groupBy GroupBy, now time.Time) Document {
	summary := Summarize(seq, groupBy)

	doc := Document{
		Period:       period,
		GeneratedAt:  now.UTC(),
		GroupBy:      summary.GroupBy,
		Entries:      make([]DocumentEntry, 0, summary.Len()),
		Breakdowns:   []Breakdown{},
		Transactions: []DocumentLine{},
	}

	for _, e := range summary.Entries() {
		doc.Entries = append(doc.Entries, DocumentEntry{
			Group:    e.Group,
			Currency: e.Currency,
			Income:   transaction.FormatAmount(e.Income),
			Expense:  transaction.FormatAmount(e.Expense),
			Net:      transaction.FormatAmount(e.Net),
		})
	}

	var observed []transaction.Currency

	for tx := range seq {
		if !slices.Contains(observed, tx.Currency) {
			observed = append(observed, tx.Currency)
		}

		doc.Transactions = append(doc.Transactions, DocumentLine{
			ID:       tx.ID,
			Date:     tx.Date.Format(time.DateOnly),
			Type:     tx.Type,
			Amount:   transaction.FormatAmount(tx.Amount),
			Currency: tx.Currency,
			Category: tx.Category,
			Note:     tx.Note,
		})
	}

	for _, cur := range transaction.Currencies {
		if !slices.Contains(observed, cur) {
			continue
		}

		for _, typ := range []transaction.Type{transaction.TypeExpense, transaction.TypeIncome} {
			lines := CategoryBreakdown(seq, typ, cur)
			if len(lines) == 0 {
				continue
			}

			b := Breakdown{Type: typ, Currency: cur, Categories: make([]BreakdownLine, 0, len(lines))}
			for _, l := range lines {
				b.Categories = append(b.Categories, BreakdownLine{Category: l.Category, Amount: transaction.FormatAmount(l.Amount)})
			}

			doc.Breakdowns = append(doc.Breakdowns, b)
		}
	}

	return doc
}
