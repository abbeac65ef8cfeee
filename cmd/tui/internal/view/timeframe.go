package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/budget/internal/report"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

// Timeframe is a predefined or custom period to narrow a listing to.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// filterFor turns a predefined timeframe into the period fields of a ListFilter.
// TimeframeCustom yields an empty filter; its bounds come from the inputs.
func filterFor(tf Timeframe, now time.Time) transaction.ListFilter {
	var f transaction.ListFilter

	switch tf {
	case TimeframeThisMonth:
		f.Year, f.Month = new(now.Year()), new(now.Month())
	case TimeframeLastMonth:
		last := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		f.Year, f.Month = new(last.Year()), new(last.Month())
	case TimeframeThisYear:
		f.Year = new(now.Year())
	}

	return f
}

// TimeframeSelectedMsg carries the chosen period. Label is the human-readable form of Filter.
type TimeframeSelectedMsg struct {
	Filter transaction.ListFilter
	Label  string
}

func choose(f transaction.ListFilter) tea.Cmd {
	return func() tea.Msg {
		return TimeframeSelectedMsg{Filter: f, Label: report.NewPeriod(f).Label}
	}
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker lets the user pick a period, either from a list or as a custom date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker() TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD (optional)"
	ei.CharLimit = 10
	ei.Width = 24
	ei.Prompt = "End Date:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   TimeframeAll,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(keyMsg)
		case timeframeStateCustom:
			return m.updateCustom(keyMsg)
		}
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > TimeframeThisMonth {
			m.selected--
		}
	case "down", "j":
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case "enter":
		if m.selected != TimeframeCustom {
			return m, choose(filterFor(m.selected, m.now()))
		}

		m.state = timeframeStateCustom
		m.focusIndex = 0
		m.endInput.Blur()

		return m, m.startInput.Focus()
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			return m, m.startInput.Focus()
		}

		return m, m.endInput.Focus()

	case "enter":
		f, err := customFilter(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil

		return m, choose(f)

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.startInput, cmd = m.startInput.Update(msg)
	} else {
		m.endInput, cmd = m.endInput.Update(msg)
	}

	return m, cmd
}

// customFilter parses an inclusive date range. A blank end leaves the range open.
func customFilter(start, end string) (transaction.ListFilter, error) {
	var f transaction.ListFilter

	s, err := time.Parse(time.DateOnly, strings.TrimSpace(start))
	if err != nil {
		return f, errors.New("invalid start date (YYYY-MM-DD)")
	}

	f.StartDate = &s

	if strings.TrimSpace(end) == "" {
		return f, nil
	}

	e, err := time.Parse(time.DateOnly, strings.TrimSpace(end))
	if err != nil {
		return f, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if e.Before(s) {
		return f, errors.New("end date is before start date")
	}

	f.EndDate = &e

	return f, nil
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	var b strings.Builder

	b.WriteString("Select Timeframe:\n\n")

	for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
		if tf == m.selected {
			b.WriteString(cursorStyle.Render("> "+tf.String()) + "\n")
			continue
		}

		b.WriteString("  " + tf.String() + "\n")
	}

	b.WriteString("\n(Enter to select, Esc to back)")

	return b.String() + errStr
}

// IsSelecting reports whether the picker shows the list rather than the custom range inputs.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}
