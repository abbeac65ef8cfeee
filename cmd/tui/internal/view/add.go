package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// AddModel records one transaction typed into a form.
type AddModel struct {
	ledger Ledger

	form      *huh.Form
	candidate *transaction.Candidate

	saved  *transaction.Transaction
	err    error
	done   bool
	saving bool
}

func NewAddModel(ledger Ledger) AddModel {
	m := AddModel{ledger: ledger}
	m.reset(transaction.Candidate{Date: time.Now().Format(time.DateOnly)})

	return m
}

// reset builds a fresh form prefilled with c. Form values are bound to a heap Candidate, since
// the model itself is copied on every update.
func (m *AddModel) reset(c transaction.Candidate) {
	m.candidate = &c
	m.done = false
	m.saving = false

	currencies := make([]huh.Option[string], len(transaction.Currencies))
	for i, cur := range transaction.Currencies {
		currencies[i] = huh.NewOption(string(cur), string(cur))
	}

	if m.candidate.Type == "" {
		m.candidate.Type = string(transaction.TypeExpense)
	}

	if m.candidate.Currency == "" {
		m.candidate.Currency = string(transaction.CurrencyPKR)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.candidate.Date),

			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Expense", string(transaction.TypeExpense)),
					huh.NewOption("Income", string(transaction.TypeIncome)),
				).
				Value(&m.candidate.Type),

			huh.NewInput().
				Title("Amount").
				Placeholder("12.50").
				Value(&m.candidate.Amount).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("amount is required")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Currency").
				Options(currencies...).
				Value(&m.candidate.Currency),

			huh.NewInput().
				Title("Category").
				Value(&m.candidate.Category),

			huh.NewInput().
				Title("Note (optional)").
				Value(&m.candidate.Note),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case addResultMsg:
		m.saving = false
		m.done = true
		m.saved = msg.tx
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, Back
		}

		if m.done {
			return m.updateDone(msg)
		}
	}

	if m.done || m.saving {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.saving = true

	return m, m.addCmd(*m.candidate)
}

// updateDone handles the result screen: a new entry, or a retry that keeps the rejected values.
func (m AddModel) updateDone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		m.reset(transaction.Candidate{Date: m.candidate.Date, Currency: m.candidate.Currency})
		m.err = nil

		return m, m.form.Init()
	case "e":
		if m.err == nil {
			return m, nil
		}

		m.reset(*m.candidate)
		m.err = nil

		return m, m.form.Init()
	}

	return m, nil
}

func (m AddModel) View() string {
	if !m.done {
		return pageStyle.Render("Add Transaction\n\n" + m.form.View() + "\n" + faintStyle.Render("Esc: back"))
	}

	if m.err != nil {
		msg := fmt.Sprintf("Error: %v", m.err)

		var verr *transaction.ValidationError
		if errors.As(m.err, &verr) {
			msg = fmt.Sprintf("Rejected (%s): %s", verr.Kind, verr.Error())
		}

		return pageStyle.Render(errorStyle.Render(msg) + "\n\n" + faintStyle.Render("e: edit and retry | n: new entry | Esc: back"))
	}

	tx := m.saved
	summary := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"#%d  %s  %s  %s %s\nCategory: %s  Note: %s",
			tx.ID, formatDate(tx.Date), tx.Type, transaction.FormatAmount(tx.Amount), tx.Currency, tx.Category, tx.Note,
		))

	return pageStyle.Render(okStyle.Render("Saved.") + "\n\n" + summary + "\n\n" + faintStyle.Render("n: new entry | Esc: back"))
}

type addResultMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m AddModel) addCmd(c transaction.Candidate) tea.Cmd {
	return func() tea.Msg {
		var tx *transaction.Transaction

		err := m.ledger.Do(func(ctx context.Context, ledger *transaction.Service) error {
			var err error
			tx, err = ledger.Add(ctx, c)

			return err
		})

		return addResultMsg{tx: tx, err: err}
	}
}
