package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeThisQuarter
	TimeframeThisFY
	TimeframeLastFY
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisQuarter:
		return "This Quarter"
	case TimeframeThisFY:
		return "This Financial Year"
	case TimeframeLastFY:
		return "Last Financial Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// financialYearStart is 1 April of the financial year containing t.
func financialYearStart(t time.Time) time.Time {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}

	return time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC)
}

// dateRange resolves tf against now. The end is the last nanosecond of its day.
func dateRange(tf Timeframe, now time.Time) (time.Time, time.Time) {
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var start, end time.Time

	switch tf {
	case TimeframeThisMonth:
		start, end = month, month.AddDate(0, 1, 0)
	case TimeframeLastMonth:
		start, end = month.AddDate(0, -1, 0), month
	case TimeframeThisQuarter:
		// Quarters follow the financial year: Apr-Jun, Jul-Sep, Oct-Dec, Jan-Mar.
		offset := (int(now.Month()) - int(time.April) + 12) % 3
		start = month.AddDate(0, -offset, 0)
		end = start.AddDate(0, 3, 0)
	case TimeframeThisFY:
		start = financialYearStart(now)
		end = start.AddDate(1, 0, 0)
	case TimeframeLastFY:
		end = financialYearStart(now)
		start = end.AddDate(-1, 0, 0)
	}

	return start, end.Add(-time.Nanosecond)
}

// TimeframeSelectedMsg carries the chosen range. Start and End are zero when All is set.
type TimeframeSelectedMsg struct {
	Label string
	Start time.Time
	End   time.Time
	All   bool
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

type TimeframePicker struct {
	state    timeframeState
	selected Timeframe

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	now func() time.Time
	err error
}

func NewTimeframePicker() TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "From: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "To:   "

	return TimeframePicker{
		selected:   TimeframeThisFY,
		startInput: si,
		endInput:   ei,
		now:        time.Now,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if m.state == timeframeStateSelect {
			return m.updateSelect(key)
		}

		if next, cmd, handled := m.updateCustom(key); handled {
			return next, cmd
		}
	}

	if m.state == timeframeStateCustom {
		var startCmd, endCmd tea.Cmd
		m.startInput, startCmd = m.startInput.Update(msg)
		m.endInput, endCmd = m.endInput.Update(msg)

		return m, tea.Batch(startCmd, endCmd)
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
		switch m.selected {
		case TimeframeCustom:
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		case TimeframeAll:
			return m, selected(TimeframeSelectedMsg{Label: m.selected.String(), All: true})
		}

		start, end := dateRange(m.selected, m.now())

		return m, selected(TimeframeSelectedMsg{Label: m.selected.String(), Start: start, End: end})
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true
	case "enter":
		start, err := time.Parse(time.DateOnly, m.startInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid start date, use YYYY-MM-DD")
			return m, nil, true
		}

		end, err := time.Parse(time.DateOnly, m.endInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid end date, use YYYY-MM-DD")
			return m, nil, true
		}

		if end.Before(start) {
			m.err = fmt.Errorf("end date is before start date")
			return m, nil, true
		}

		m.err = nil
		label := start.Format(time.DateOnly) + " to " + end.Format(time.DateOnly)

		return m, selected(TimeframeSelectedMsg{Label: label, Start: start, End: end.AddDate(0, 0, 1).Add(-time.Nanosecond)}), true
	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func selected(msg TimeframeSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = "\n\n" + errorStyle("Error: "+m.err.Error())
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Custom range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Select period:\n\n"

	for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
		cursor := " "
		if m.selected == tf {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, tf)
	}

	return s + "\n(Enter to select, Esc to back)" + errStr
}

// Selecting reports whether Esc should leave the picker's parent.
func (m TimeframePicker) Selecting() bool {
	return m.state == timeframeStateSelect
}
