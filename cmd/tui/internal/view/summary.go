package view

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budget/internal/report"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

var groupings = []report.GroupBy{report.GroupCurrency, report.GroupCategory, report.GroupMonth, report.GroupNone}

const topCategories = 5

type summaryState int

const (
	summaryStateTimeframe summaryState = iota
	summaryStateView
)

// SummaryModel shows income, expense and net totals of a period, grouped by a chosen dimension.
type SummaryModel struct {
	ledger Ledger

	state    summaryState
	picker   TimeframePicker
	table    table.Model
	groupIdx int

	filter transaction.ListFilter
	label  string
	txs    []*transaction.Transaction
	err    error
}

func NewSummaryModel(ledger Ledger) SummaryModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Group", Width: 20},
			{Title: "Currency", Width: 8},
			{Title: "Income", Width: 16},
			{Title: "Expense", Width: 16},
			{Title: "Net", Width: 16},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	t.SetStyles(s)

	return SummaryModel{
		ledger: ledger,
		picker: NewTimeframePicker(),
		table:  t,
	}
}

func (m SummaryModel) Init() tea.Cmd {
	return nil
}

func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.filter = msg.Filter
		m.label = msg.Label
		m.state = summaryStateView

		return m, m.loadCmd()

	case loadSummaryMsg:
		m.err = msg.err
		m.txs = msg.txs
		m.refreshTable()

		return m, nil
	}

	if m.state == summaryStateTimeframe {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" && m.picker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = summaryStateTimeframe
			m.picker = NewTimeframePicker()

			return m, nil
		case "g":
			m.groupIdx = (m.groupIdx + 1) % len(groupings)
			m.refreshTable()

			return m, nil
		case "r":
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *SummaryModel) refreshTable() {
	summary := report.Summarize(slices.Values(m.txs), groupings[m.groupIdx])

	rows := make([]table.Row, 0, summary.Len())
	for _, e := range summary.Entries() {
		rows = append(rows, table.Row{
			e.Group,
			string(e.Currency),
			transaction.FormatAmount(e.Income),
			transaction.FormatAmount(e.Expense),
			transaction.FormatAmount(e.Net),
		})
	}

	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m SummaryModel) View() string {
	if m.state == summaryStateTimeframe {
		return pageStyle.Render(m.picker.View())
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to back, r to retry)")
	}

	header := fmt.Sprintf(
		"Summary: %s | [g] Group by: %s | %d transactions",
		cursorStyle.Render(m.label),
		cursorStyle.Render(string(groupings[m.groupIdx])),
		len(m.txs),
	)

	return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		m.table.View(),
		m.breakdownView(),
		faintStyle.Render("g: change grouping | r: refresh | Esc: change period"),
	))
}

// breakdownView lists the largest expense categories of every currency in the period.
func (m SummaryModel) breakdownView() string {
	var b strings.Builder

	for _, cur := range transaction.Currencies {
		top := report.CategoryBreakdown(slices.Values(m.txs), transaction.TypeExpense, cur)
		if len(top) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\nTop expenses (%s):\n", cur)

		for _, c := range top[:min(len(top), topCategories)] {
			fmt.Fprintf(&b, "  %-20s %14s\n", c.Category, transaction.FormatAmount(c.Amount))
		}
	}

	return b.String()
}

type loadSummaryMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m SummaryModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		var txs []*transaction.Transaction

		err := m.ledger.Do(func(ctx context.Context, ledger *transaction.Service) error {
			seq, err := ledger.List(ctx, filter)
			if err != nil {
				return err
			}

			txs = slices.Collect(seq)

			return nil
		})

		return loadSummaryMsg{txs: txs, err: err}
	}
}
