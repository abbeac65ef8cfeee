package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/budget/internal/importer"
	"github.com/MrJamesThe3rd/budget/internal/report"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const (
	actionTemplateXLSX = "template_xlsx"
	actionTemplateCSV  = "template_csv"
	actionWorkbook     = "workbook"
)

// filesForm holds the form bindings.
type filesForm struct {
	action string
	dir    string
}

// FilesModel writes an import template or an export workbook of the ledger to disk.
type FilesModel struct {
	ledger Ledger

	form   *huh.Form
	values *filesForm

	path string
	err  error
	done bool
}

func NewFilesModel(ledger Ledger) FilesModel {
	dir, _ := os.Getwd()
	values := &filesForm{action: actionWorkbook, dir: dir}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What to write").
				Options(
					huh.NewOption("Export ledger workbook (.xlsx)", actionWorkbook),
					huh.NewOption("Import template (.xlsx)", actionTemplateXLSX),
					huh.NewOption("Import template (.csv)", actionTemplateCSV),
				).
				Value(&values.action),

			huh.NewInput().
				Title("Directory").
				Value(&values.dir),
		),
	).WithWidth(60).WithShowHelp(false)

	return FilesModel{ledger: ledger, form: form, values: values}
}

func (m FilesModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m FilesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case writtenMsg:
		m.done = true
		m.path = msg.path
		m.err = msg.err

		return m, nil

	case tea.KeyMsg:
		if msg.String() == "esc" {
			return m, Back
		}
	}

	if m.done {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.writeCmd(m.values.action, m.values.dir)
}

func (m FilesModel) View() string {
	if !m.done {
		return pageStyle.Render("Templates and Export\n\n" + m.form.View() + "\n" + faintStyle.Render("Esc: back"))
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + faintStyle.Render("Esc: back"))
	}

	return pageStyle.Render(okStyle.Render("Wrote "+m.path) + "\n\n" + faintStyle.Render("Esc: back"))
}

type writtenMsg struct {
	path string
	err  error
}

func (m FilesModel) writeCmd(action, dir string) tea.Cmd {
	return func() tea.Msg {
		now := time.Now()

		var (
			name  string
			write func(io.Writer) error
		)

		switch action {
		case actionTemplateCSV:
			name = "budget_template.csv"
			write = func(w io.Writer) error {
				return importer.WriteTemplate(w, importer.FormatCSV, importer.SampleRows(now))
			}
		case actionTemplateXLSX:
			name = "budget_template.xlsx"
			write = func(w io.Writer) error {
				return importer.WriteTemplate(w, importer.FormatXLSX, importer.SampleRows(now))
			}
		default:
			var txs []*transaction.Transaction

			err := m.ledger.Do(func(ctx context.Context, ledger *transaction.Service) error {
				seq, err := ledger.List(ctx, transaction.ListFilter{})
				if err != nil {
					return err
				}

				txs = slices.Collect(seq)

				return nil
			})
			if err != nil {
				return writtenMsg{err: err}
			}

			name = fmt.Sprintf("budget_export_%s.xlsx", now.Format("20060102_150405"))
			write = func(w io.Writer) error {
				return report.WriteWorkbook(w, slices.Values(txs))
			}
		}

		path := filepath.Join(dir, name)

		return writtenMsg{path: path, err: writeFile(path, write)}
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}
