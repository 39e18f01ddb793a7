package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/billbook/billbook/cmd/tui/internal/view"
	"github.com/billbook/billbook/internal/config"
	"github.com/billbook/billbook/internal/customer"
	customerStore "github.com/billbook/billbook/internal/customer/store"
	"github.com/billbook/billbook/internal/database"
	"github.com/billbook/billbook/internal/invoice"
	invoiceStore "github.com/billbook/billbook/internal/invoice/store"
	"github.com/billbook/billbook/internal/payment"
	paymentStore "github.com/billbook/billbook/internal/payment/store"
	"github.com/billbook/billbook/internal/project"
	projectStore "github.com/billbook/billbook/internal/project/store"
	"github.com/billbook/billbook/internal/report"
)

type View int

const (
	ViewMenu View = iota
	ViewInvoices
	ViewDashboard
)

type model struct {
	invoiceService  *invoice.Service
	paymentService  *payment.Service
	customerService *customer.Service
	reportService   *report.Service
	owner           uuid.UUID
	company         string

	currentView View

	invoiceView   view.InvoiceModel
	dashboardView view.DashboardModel
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	owner, err := cfg.TUIUser()
	if err != nil {
		slog.Error("failed to resolve user", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// The terminal owns stdout; service logs would corrupt the screen.
	quiet := slog.New(slog.DiscardHandler)

	customerSvc := customer.NewService(customerStore.New(db))
	paymentSvc := payment.NewService(paymentStore.New(db))
	invoiceSvc := invoice.NewService(invoiceStore.New(db), customerSvc, invoice.WithLogger(quiet))
	reportSvc := report.NewService(invoiceSvc, paymentSvc, customerSvc, project.NewService(projectStore.New(db)))

	return model{
		invoiceService:  invoiceSvc,
		paymentService:  paymentSvc,
		customerService: customerSvc,
		reportService:   reportSvc,
		owner:           owner,
		company:         cfg.Company.Name,
		currentView:     ViewMenu,
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
				m.currentView = ViewInvoices
				m.invoiceView = view.NewInvoiceModel(m.invoiceService, m.paymentService, m.customerService, m.owner)

				return m, m.invoiceView.Init()
			case "2":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.reportService, m.owner)

				return m, m.dashboardView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoiceView.Update(msg)
		m.invoiceView = newModel.(view.InvoiceModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.company + " Billbook\n\n" +
				"1. Invoices & Payments\n" +
				"2. Dashboard\n\n" +
				"q. Quit",
		)
	case ViewInvoices:
		return m.invoiceView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
