package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/budget/internal/importer"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

// ImportModel picks a CSV or XLSX file and bulk-imports it into the ledger.
type ImportModel struct {
	ledger        Ledger
	importService *importer.Service

	state      importState
	filePicker filepicker.Model
	path       string

	report     *importer.Report
	rejections list.Model
	err        error
}

func NewImportModel(ledger Ledger, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		ledger:        ledger,
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			if m.state == importStateResult {
				m.state = importStateFilePick
				m.report = nil
				m.err = nil

				return m, m.filePicker.Init()
			}

			return m, Back
		}

		if m.state == importStateResult {
			var cmd tea.Cmd
			m.rejections, cmd = m.rejections.Update(msg)

			return m, cmd
		}

	case importResultMsg:
		m.state = importStateResult
		m.report = msg.report
		m.err = msg.err

		if msg.report != nil {
			m.rejections = newRejectionList(msg.report.Rejected)
		}

		return m, nil

	case tea.WindowSizeMsg:
		if m.report != nil {
			m.rejections.SetSize(msg.Width-4, msg.Height-10)
		}
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.path = path

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return pageStyle.Render(
			"Select a .csv or .xlsx file to import:\n\n" + m.filePicker.View() + "\n" + faintStyle.Render("Esc: back"),
		)
	case importStateImporting:
		return pageStyle.Render(fmt.Sprintf("Importing %s...", filepath.Base(m.path)))
	}

	return m.viewResult()
}

func (m ImportModel) viewResult() string {
	if m.err != nil {
		msg := fmt.Sprintf("Import failed: %v", m.err)

		var ferr *importer.FileError
		if errors.As(m.err, &ferr) {
			msg = fmt.Sprintf("Import failed (%s): %v", ferr.Kind, ferr.Err)
		}

		return pageStyle.Render(errorStyle.Render(msg) + "\n\n" + faintStyle.Render("Esc: pick another file"))
	}

	r := m.report
	status := okStyle.Render(fmt.Sprintf(
		"%s: %d rows read, %d imported, %d rejected.",
		filepath.Base(m.path), r.Total, len(r.Accepted), len(r.Rejected),
	))

	if len(r.Rejected) == 0 {
		return pageStyle.Render(status + "\n\n" + faintStyle.Render("Esc: import another file"))
	}

	return pageStyle.Render(status + "\n\n" + m.rejections.View() + "\n" + faintStyle.Render("Esc: import another file"))
}

type importResultMsg struct {
	report *importer.Report
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		format, err := importer.FormatFromFilename(path)
		if err != nil {
			return importResultMsg{err: err}
		}

		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		var report *importer.Report

		err = m.ledger.Do(func(ctx context.Context, ledger *transaction.Service) error {
			ctx, cancel := context.WithTimeout(ctx, importTimeout)
			defer cancel()

			var err error
			report, err = m.importService.Import(ctx, ledger, format, f)

			return err
		})

		return importResultMsg{report: report, err: err}
	}
}

type rejectionItem struct {
	rejection importer.Rejection
}

func (i rejectionItem) FilterValue() string { return i.rejection.Err.Error() }

func newRejectionList(rejected []importer.Rejection) list.Model {
	items := make([]list.Item, len(rejected))
	for i, r := range rejected {
		items[i] = rejectionItem{rejection: r}
	}

	l := list.New(items, rejectionDelegate{}, 80, 15)
	l.Title = "Rejected Rows"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

type rejectionDelegate struct{}

func (d rejectionDelegate) Height() int                             { return 1 }
func (d rejectionDelegate) Spacing() int                            { return 0 }
func (d rejectionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rejectionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(rejectionItem)
	if !ok {
		return
	}

	r := item.rejection
	line := fmt.Sprintf("row %-5d %-18s %s", r.Row, r.Err.Kind, r.Err.Error())

	if index == m.Index() {
		fmt.Fprintln(w, cursorStyle.Render("> "+line))
		return
	}

	fmt.Fprintln(w, "  "+line)
}
