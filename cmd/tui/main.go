package main

import (
	"flag"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/budget/internal/database"
	"github.com/MrJamesThe3rd/budget/internal/importer"
	"github.com/MrJamesThe3rd/budget/internal/logger"
	"github.com/MrJamesThe3rd/budget/internal/session"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
	"github.com/MrJamesThe3rd/budget/internal/transaction/memory"
	txStore "github.com/MrJamesThe3rd/budget/internal/transaction/store"
)

type View int

const (
	ViewMenu View = iota
	ViewAdd
	ViewImport
	ViewList
	ViewSummary
	ViewFiles
)

type model struct {
	ledger        view.Ledger
	importService *importer.Service

	currentView View

	addView     view.AddModel
	importView  view.ImportModel
	listView    view.ListModel
	summaryView view.SummaryModel
	filesView   view.FilesModel
}

func initialModel(ledger view.Ledger, impSvc *importer.Service) model {
	return model{
		ledger:        ledger,
		importService: impSvc,
		currentView:   ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewAdd
				m.addView = view.NewAddModel(m.ledger)

				return m, m.addView.Init()
			case "2":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.ledger, m.importService)

				return m, m.importView.Init()
			case "3":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.ledger)

				return m, m.listView.Init()
			case "4":
				m.currentView = ViewSummary
				m.summaryView = view.NewSummaryModel(m.ledger)

				return m, m.summaryView.Init()
			case "5":
				m.currentView = ViewFiles
				m.filesView = view.NewFilesModel(m.ledger)

				return m, m.filesView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewSummary:
		var newModel tea.Model
		newModel, cmd = m.summaryView.Update(msg)
		m.summaryView = newModel.(view.SummaryModel)
	case ViewFiles:
		var newModel tea.Model
		newModel, cmd = m.filesView.Update(msg)
		m.filesView = newModel.(view.FilesModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Budget\n\n" +
				"1. Add Transaction\n" +
				"2. Import File\n" +
				"3. List Transactions\n" +
				"4. Summary\n" +
				"5. Templates and Export\n\n" +
				"q. Quit",
		)
	case ViewAdd:
		return m.addView.View()
	case ViewImport:
		return m.importView.View()
	case ViewList:
		return m.listView.View()
	case ViewSummary:
		return m.summaryView.View()
	case ViewFiles:
		return m.filesView.View()
	}

	return "Unknown View"
}

func main() {
	dbPath := flag.String("db", "", "SQLite file to keep the ledger in; empty keeps it in memory")
	sessionID := flag.String("session", "local", "ledger name inside the SQLite file")
	flag.Parse()

	log := logger.NewDevelopment()
	defer log.Sync()

	var (
		sessions *session.Manager
		id       string
	)

	if *dbPath == "" {
		sessions = session.NewManager(func(string) transaction.Repository { return memory.New() })
		id = sessions.New()
	} else {
		if err := database.Migrate(database.DriverSQLite, *dbPath); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}

		db, err := database.New(database.DriverSQLite, *dbPath)
		if err != nil {
			log.Fatal("failed to open database", zap.String("path", *dbPath), zap.Error(err))
		}
		defer db.Close()

		store := txStore.New(db, database.Placeholder(database.DriverSQLite))
		sessions = session.NewManager(func(id string) transaction.Repository { return store.Ledger(id) })
		id = *sessionID
	}

	// Import logs stay off the terminal while the program owns it.
	m := initialModel(view.NewLedger(sessions, id), importer.NewService(zap.NewNop()))

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Error("failed to run TUI", zap.Error(err))
		os.Exit(1)
	}
}
