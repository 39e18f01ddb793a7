package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/document"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/report"
)

type dashboardState int

const (
	dashboardStatePick dashboardState = iota
	dashboardStateShow
)

// DashboardModel shows billed, collected and outstanding totals for a period.
type DashboardModel struct {
	CommonModel
	reports *report.Service
	owner   uuid.UUID

	state   dashboardState
	picker  TimeframePicker
	period  string
	summary *report.Summary
	gst     *report.GSTReport
	err     error
}

func NewDashboardModel(reports *report.Service, owner uuid.UUID) DashboardModel {
	return DashboardModel{
		reports: reports,
		owner:   owner,
		picker:  NewTimeframePicker(),
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = dashboardStateShow
		m.period = msg.Label
		m.summary, m.gst, m.err = nil, nil, nil

		scope := report.Scope{Owner: &m.owner}
		if !msg.All {
			scope.StartDate, scope.EndDate = &msg.Start, &msg.End
		}

		return m, m.loadCmd(scope)

	case dashboardLoadedMsg:
		m.summary, m.gst, m.err = msg.summary, msg.gst, msg.err
		return m, nil

	case tea.KeyMsg:
		if m.state == dashboardStateShow {
			if msg.String() == "esc" {
				m.state = dashboardStatePick
			}

			return m, nil
		}

		if msg.String() == "esc" && m.picker.Selecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m DashboardModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	if m.state == dashboardStatePick {
		return style.Render("Dashboard\n\n" + m.picker.View())
	}

	if m.err != nil {
		return style.Render(errorStyle("Error: "+m.err.Error()) + "\n\n(Esc to change period)")
	}

	if m.summary == nil {
		return style.Render("Loading " + m.period + "...")
	}

	s := m.summary

	var b strings.Builder
	fmt.Fprintf(&b, "Dashboard: %s\n\n", activeStyle(m.period))
	fmt.Fprintf(&b, "Invoices     %d\n", s.TotalInvoices)
	fmt.Fprintf(&b, "Billed       %s\n", document.Rupees(s.TotalBilled))
	fmt.Fprintf(&b, "GST          %s\n", document.Rupees(s.TotalGST))
	fmt.Fprintf(&b, "Collected    %s (%s)\n", document.Rupees(s.TotalPaid), document.Percent(s.CollectionRate))
	fmt.Fprintf(&b, "Outstanding  %s\n\n", document.Rupees(s.Outstanding))

	fmt.Fprintf(&b, "Paid %d | Partially paid %d | Unpaid %d\n",
		s.CountsByStatus[invoice.StatusPaid],
		s.CountsByStatus[invoice.StatusPartiallyPaid],
		s.CountsByStatus[invoice.StatusUnpaid],
	)
	fmt.Fprintf(&b, "Tax %d | Proforma %d | Non-tax %d\n",
		s.CountsByType[invoice.TypeTaxInvoice],
		s.CountsByType[invoice.TypeProforma],
		s.CountsByType[invoice.TypeNonTaxInvoice],
	)

	if g := m.gst; g != nil {
		fmt.Fprintf(&b, "\nGST on tax invoices: CGST %s | SGST %s | IGST %s\n",
			document.Rupees(g.TotalCGST), document.Rupees(g.TotalSGST), document.Rupees(g.TotalIGST))
	}

	b.WriteString("\n(Esc to change period)")

	return style.Render(b.String())
}

type dashboardLoadedMsg struct {
	summary *report.Summary
	gst     *report.GSTReport
	err     error
}

func (m DashboardModel) loadCmd(scope report.Scope) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := dbCtx()
		defer cancel()

		summary, err := m.reports.Dashboard(ctx, scope)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		gst, err := m.reports.GST(ctx, scope)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		return dashboardLoadedMsg{summary: &summary, gst: &gst}
	}
}
