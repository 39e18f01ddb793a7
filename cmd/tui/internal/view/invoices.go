package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/document"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/payment"
)

type invoiceState int

const (
	invoiceStateBrowse invoiceState = iota
	invoiceStateDetail
	invoiceStatePay
)

var (
	statusFilters = []*invoice.PaymentStatus{
		nil,
		new(invoice.StatusUnpaid),
		new(invoice.StatusPartiallyPaid),
		new(invoice.StatusPaid),
	}
	typeFilters = []*invoice.Type{
		nil,
		new(invoice.TypeTaxInvoice),
		new(invoice.TypeProforma),
		new(invoice.TypeNonTaxInvoice),
	}
)

// InvoiceModel browses invoices, shows their payment ledger and records payments.
type InvoiceModel struct {
	CommonModel
	invoices  *invoice.Service
	payments  *payment.Service
	customers *customer.Service
	owner     uuid.UUID

	state invoiceState
	table table.Model
	rows  []*invoice.Invoice
	names map[uuid.UUID]string

	statusIdx int
	typeIdx   int

	ledger *payment.Ledger
	form   *huh.Form
	entry  *paymentEntry

	loading bool
	status  string
	err     error
}

// paymentEntry holds the payment form bindings. Held by pointer: the model is
// copied on every update.
type paymentEntry struct {
	amount        string
	mode          payment.Mode
	date          string
	transactionID string
	notes         string
}

func NewInvoiceModel(invoices *invoice.Service, payments *payment.Service, customers *customer.Service, owner uuid.UUID) InvoiceModel {
	return InvoiceModel{
		invoices:  invoices,
		payments:  payments,
		customers: customers,
		owner:     owner,
		table: newTable([]table.Column{
			{Title: "Invoice", Width: 16},
			{Title: "Date", Width: 12},
			{Title: "Customer", Width: 28},
			{Title: "Type", Width: 16},
			{Title: "Total", Width: 16},
			{Title: "Status", Width: 15},
		}),
		names:   map[uuid.UUID]string{},
		loading: true,
	}
}

func (m InvoiceModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesLoadedMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.rows = msg.invoices
			m.names = msg.names
			m.refreshTable()
		}

		return m, nil

	case ledgerLoadedMsg:
		if msg.err != nil {
			m.status = "Error loading payments: " + msg.err.Error()
			m.state = invoiceStateBrowse
			m.table.Focus()

			return m, nil
		}

		m.ledger = msg.ledger

		return m, nil

	case paymentSavedMsg:
		if msg.err != nil {
			m.status = "Error saving payment: " + msg.err.Error()
			return m, nil
		}

		m.status = "Payment recorded"

		return m, tea.Batch(m.loadCmd(), m.ledgerCmd(msg.invoiceID))

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case invoiceStateDetail:
		return m.updateDetail(msg)
	case invoiceStatePay:
		return m.updatePay(msg)
	}

	return m.updateBrowse(msg)
}

func (m InvoiceModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusIdx = (m.statusIdx + 1) % len(statusFilters)
			return m, m.loadCmd()
		case "t":
			m.typeIdx = (m.typeIdx + 1) % len(typeFilters)
			return m, m.loadCmd()
		case "enter":
			inv := m.current()
			if inv == nil {
				return m, nil
			}

			m.state = invoiceStateDetail
			m.ledger = nil
			m.status = ""
			m.table.Blur()

			return m, m.ledgerCmd(inv.ID)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoiceModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "esc":
		m.state = invoiceStateBrowse
		m.table.Focus()
	case "p":
		if m.ledger == nil || !m.ledger.Remaining.IsPositive() {
			m.status = "Nothing left to collect"
			return m, nil
		}

		return m.enterPayMode()
	}

	return m, nil
}

func (m InvoiceModel) enterPayMode() (tea.Model, tea.Cmd) {
	m.entry = &paymentEntry{
		amount: m.ledger.Remaining.StringFixed(2),
		mode:   payment.ModeBankTransfer,
		date:   time.Now().Format(time.DateOnly),
	}

	modes := make([]huh.Option[payment.Mode], len(payment.Modes))
	for i, mode := range payment.Modes {
		modes[i] = huh.NewOption(string(mode), mode)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Amount").
				Value(&m.entry.amount).
				Validate(validateAmount),
			huh.NewSelect[payment.Mode]().
				Title("Mode").
				Options(modes...).
				Value(&m.entry.mode),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.entry.date).
				Validate(func(s string) error {
					_, err := time.Parse(time.DateOnly, s)
					return err
				}),
			huh.NewInput().
				Title("Transaction ID").
				Value(&m.entry.transactionID),
			huh.NewInput().
				Title("Notes").
				Value(&m.entry.notes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = invoiceStatePay

	return m, m.form.Init()
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}

	if !d.IsPositive() {
		return fmt.Errorf("must be greater than zero")
	}

	return nil
}

func (m InvoiceModel) updatePay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.state = invoiceStateDetail
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	save := m.savePaymentCmd()
	m.state = invoiceStateDetail
	m.form = nil
	m.status = "Saving payment..."

	return m, save
}

func (m InvoiceModel) current() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}

	return m.rows[idx]
}

func (m InvoiceModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle("Error: "+m.err.Error()) + "\n\n(Esc to back)")
	}

	header := fmt.Sprintf("Filter: [s] Status: %s | [t] Type: %s | %d invoices",
		activeStyle(filterLabel(statusFilters[m.statusIdx])),
		activeStyle(filterLabel(typeFilters[m.typeIdx])),
		len(m.rows),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	if m.state != invoiceStateBrowse {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.detailPanel())
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	help := "Enter: payments | s: status | t: type | r: refresh | Esc: back"

	switch m.state {
	case invoiceStateDetail:
		help = "p: record payment | Esc: close"
	case invoiceStatePay:
		help = "Navigate form | Esc: cancel"
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n" + lipgloss.NewStyle().Faint(true).Render(help))
}

func (m InvoiceModel) detailPanel() string {
	inv := m.current()
	if inv == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", inv.Number, document.Title(inv.Type))
	fmt.Fprintf(&b, "%s\n\n", m.names[inv.CustomerID])

	if inv.GSTApplicable {
		fmt.Fprintf(&b, "Subtotal  %s\n", document.Rupees(inv.Subtotal))
		fmt.Fprintf(&b, "GST       %s\n", document.Rupees(inv.GST()))
	}

	fmt.Fprintf(&b, "Total     %s\n\n", document.Rupees(inv.Total))

	switch {
	case m.state == invoiceStatePay && m.form != nil:
		b.WriteString(m.form.View())
	case m.ledger == nil:
		b.WriteString("Loading payments...")
	default:
		if len(m.ledger.Payments) == 0 {
			b.WriteString("No payments yet\n")
		}

		for _, p := range m.ledger.Payments {
			fmt.Fprintf(&b, "%s  %-14s %s\n", formatDate(p.Date), p.Mode, document.Rupees(p.Amount))
		}

		fmt.Fprintf(&b, "\nPaid      %s\n", document.Rupees(m.ledger.TotalPaid))
		fmt.Fprintf(&b, "Remaining %s", document.Rupees(m.ledger.Remaining))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(50).
		Render(b.String())
}

func filterLabel[T ~string](v *T) string {
	if v == nil {
		return "All"
	}

	return string(*v)
}

func (m *InvoiceModel) refreshTable() {
	rows := make([]table.Row, len(m.rows))
	for i, inv := range m.rows {
		rows[i] = table.Row{
			inv.Number,
			formatDate(inv.Date),
			m.names[inv.CustomerID],
			string(inv.Type),
			document.Rupees(inv.Total),
			string(inv.PaymentStatus),
		}
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

type invoicesLoadedMsg struct {
	invoices []*invoice.Invoice
	names    map[uuid.UUID]string
	err      error
}

func (m InvoiceModel) loadCmd() tea.Cmd {
	filter := invoice.ListFilter{
		Status:    statusFilters[m.statusIdx],
		Type:      typeFilters[m.typeIdx],
		CreatedBy: &m.owner,
	}

	return func() tea.Msg {
		ctx, cancel := dbCtx()
		defer cancel()

		invoices, err := m.invoices.ListAll(ctx, filter)
		if err != nil {
			return invoicesLoadedMsg{err: err}
		}

		customers, err := m.customers.List(ctx, customer.ListFilter{CreatedBy: &m.owner})
		if err != nil {
			return invoicesLoadedMsg{err: err}
		}

		names := make(map[uuid.UUID]string, len(customers))
		for _, c := range customers {
			names[c.ID] = c.Name
		}

		return invoicesLoadedMsg{invoices: invoices, names: names}
	}
}

type ledgerLoadedMsg struct {
	ledger *payment.Ledger
	err    error
}

func (m InvoiceModel) ledgerCmd(invoiceID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := dbCtx()
		defer cancel()

		ledger, err := m.payments.ForInvoice(ctx, invoiceID)

		return ledgerLoadedMsg{ledger: ledger, err: err}
	}
}

type paymentSavedMsg struct {
	invoiceID uuid.UUID
	err       error
}

func (m InvoiceModel) savePaymentCmd() tea.Cmd {
	inv := m.current()
	if inv == nil {
		return nil
	}

	entry := *m.entry

	return func() tea.Msg {
		amount, err := decimal.NewFromString(strings.TrimSpace(entry.amount))
		if err != nil {
			return paymentSavedMsg{invoiceID: inv.ID, err: err}
		}

		date, err := time.Parse(time.DateOnly, entry.date)
		if err != nil {
			return paymentSavedMsg{invoiceID: inv.ID, err: err}
		}

		ctx, cancel := dbCtx()
		defer cancel()

		_, err = m.payments.Create(ctx, payment.CreateParams{
			InvoiceID:     inv.ID,
			Amount:        amount,
			Date:          date,
			Mode:          entry.mode,
			TransactionID: strings.TrimSpace(entry.transactionID),
			Notes:         strings.TrimSpace(entry.notes),
			ReceivedBy:    m.owner,
		})

		return paymentSavedMsg{invoiceID: inv.ID, err: err}
	}
}
