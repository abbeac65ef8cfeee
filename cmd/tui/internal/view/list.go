package view

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateTimeframe
	listStateConfirmClear
)

var typeFilters = []transaction.Type{"", transaction.TypeIncome, transaction.TypeExpense}

// ListModel shows the ledger in insertion order, narrowed by type, currency and period.
type ListModel struct {
	ledger Ledger

	state  listState
	table  table.Model
	picker TimeframePicker
	form   *huh.Form
	clear  *bool

	typeIdx     int
	currencyIdx int
	period      transaction.ListFilter
	periodLabel string

	txs    []*transaction.Transaction
	err    error
	status string
}

func NewListModel(ledger Ledger) ListModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Amount", Width: 14},
		{Title: "Currency", Width: 8},
		{Title: "Category", Width: 18},
		{Title: "Note", Width: 30},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		ledger:      ledger,
		table:       t,
		picker:      NewTimeframePicker(),
		periodLabel: "All time",
	}
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

// filter combines the cycled type and currency with the chosen period.
func (m ListModel) filter() transaction.ListFilter {
	f := m.period

	if typ := typeFilters[m.typeIdx]; typ != "" {
		f.Type = &typ
	}

	if m.currencyIdx > 0 {
		f.Currency = new(transaction.Currencies[m.currencyIdx-1])
	}

	return f
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.err = msg.err
		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case clearedMsg:
		m.state = listStateBrowse
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error clearing: %v", msg.err)
			return m, nil
		}

		m.status = "Ledger cleared."

		return m, m.loadCmd()

	case TimeframeSelectedMsg:
		m.period = msg.Filter
		m.periodLabel = msg.Label
		m.state = listStateBrowse
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateTimeframe:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" && m.picker.IsSelecting() {
			m.state = listStateBrowse
			m.table.Focus()

			return m, nil
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case listStateConfirmClear:
		return m.updateConfirm(msg)
	}

	return m.updateBrowse(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.status = ""
			return m, m.loadCmd()
		case "t":
			m.typeIdx = (m.typeIdx + 1) % len(typeFilters)
			return m, m.loadCmd()
		case "c":
			m.currencyIdx = (m.currencyIdx + 1) % (len(transaction.Currencies) + 1)
			return m, m.loadCmd()
		case "d":
			m.state = listStateTimeframe
			m.picker = NewTimeframePicker()
			m.table.Blur()

			return m, nil
		case "x":
			return m.confirmClear()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) confirmClear() (tea.Model, tea.Cmd) {
	m.clear = new(false)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete every transaction in the ledger?").
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.clear),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = listStateConfirmClear
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.state = listStateBrowse
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.clear {
		m.state = listStateBrowse
		m.table.Focus()

		return m, nil
	}

	return m, m.clearCmd()
}

func (m ListModel) View() string {
	switch m.state {
	case listStateTimeframe:
		return pageStyle.Render(m.picker.View())
	case listStateConfirmClear:
		return pageStyle.Render(m.form.View())
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to back, r to retry)")
	}

	typeLabel := "All"
	if typ := typeFilters[m.typeIdx]; typ != "" {
		typeLabel = string(typ)
	}

	currencyLabel := "All"
	if m.currencyIdx > 0 {
		currencyLabel = string(transaction.Currencies[m.currencyIdx-1])
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [c] Currency: %s | [d] Period: %s    %d shown",
		cursorStyle.Render(typeLabel),
		cursorStyle.Render(currencyLabel),
		cursorStyle.Render(m.periodLabel),
		len(m.txs),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		faintStyle.Render("r: refresh | x: clear ledger | Esc: back"),
	)

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return pageStyle.Render(content)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			strconv.FormatInt(tx.ID, 10),
			formatDate(tx.Date),
			string(tx.Type),
			transaction.FormatAmount(tx.Amount),
			string(tx.Currency),
			tx.Category,
			tx.Note,
		})
	}

	m.table.SetRows(rows)
	m.table.GotoTop()
}

type loadListMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m ListModel) loadCmd() tea.Cmd {
	filter := m.filter()

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

		return loadListMsg{txs: txs, err: err}
	}
}

type clearedMsg struct {
	err error
}

func (m ListModel) clearCmd() tea.Cmd {
	return func() tea.Msg {
		return clearedMsg{err: m.ledger.Do(func(ctx context.Context, ledger *transaction.Service) error {
			return ledger.Clear(ctx)
		})}
	}
}
