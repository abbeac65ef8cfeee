// Package view holds the screens of the terminal client.
package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/budget/internal/session"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const ledgerTimeout = 30 * time.Second

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	pageStyle   = lipgloss.NewStyle().Padding(1)
)

// BackMsg returns the program to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Ledger is the single session the terminal client works on. Calls go through the session
// manager, so commands running on different goroutines never touch the ledger at once.
type Ledger struct {
	sessions *session.Manager
	id       string
}

// NewLedger binds the client to session id. It is fixed when the ledger is persisted, so
// entries survive a restart.
func NewLedger(sessions *session.Manager, id string) Ledger {
	return Ledger{sessions: sessions, id: id}
}

func (l Ledger) Do(fn func(ctx context.Context, ledger *transaction.Service) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
	defer cancel()

	return l.sessions.Do(ctx, l.id, fn)
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
