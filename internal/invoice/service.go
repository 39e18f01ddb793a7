package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, int, error)
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	BeginCreate(ctx context.Context) (CreateTx, error)
	BeginUpdate(ctx context.Context) (UpdateTx, error)
}

// CreateTx numbers and inserts an invoice atomically.
type CreateTx interface {
	// ReserveNumber claims the next slot of year's sequence and returns how
	// many invoices were numbered in that year before it.
	ReserveNumber(ctx context.Context, year int) (int, error)
	CreateInvoice(ctx context.Context, inv *Invoice) error
	Commit() error
	Rollback() error
}

// UpdateTx edits an invoice under its row lock, so a new total and the
// payment status derived from it commit together.
type UpdateTx interface {
	LockInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	SumPayments(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	// UpdateInvoice writes every editable column and the payment status.
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	Commit() error
	Rollback() error
}

// CustomerDirectory resolves the billing state of a customer.
type CustomerDirectory interface {
	GetState(ctx context.Context, customerID uuid.UUID) (string, error)
}

// FallbackRecorder counts invoices numbered from the clock.
type FallbackRecorder interface {
	NumberFallback()
}

type Service struct {
	repo       Repository
	customers  CustomerDirectory
	fallbacks  FallbackRecorder
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithFallbackRecorder(r FallbackRecorder) Option {
	return func(s *Service) { s.fallbacks = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, customers CustomerDirectory, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		customers: customers,
		logger:    slog.Default(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	CustomerID     uuid.UUID
	ProjectID      *uuid.UUID
	Type           Type
	Date           time.Time
	Items          []ItemInput
	GSTRate        decimal.Decimal
	TaxID          string
	GSTPaid        bool
	CompanyBankID  *uuid.UUID
	CustomerBankID *uuid.UUID
	Notes          string
	IssuerState    string
	CreatedBy      uuid.UUID
}

// UpdateParams lists the fields a caller may change. Nil means unchanged.
// A uuid.Nil project or bank id detaches it. Items, when non-nil, replace the
// current lines and trigger a totals recomputation.
type UpdateParams struct {
	CustomerID     *uuid.UUID
	ProjectID      *uuid.UUID
	Type           *Type
	Date           *time.Time
	Items          []ItemInput
	GSTRate        *decimal.Decimal
	TaxID          *string
	GSTPaid        *bool
	CompanyBankID  *uuid.UUID
	CustomerBankID *uuid.UUID
	Notes          *string
	IssuerState    string
}

type ListFilter struct {
	Status     *PaymentStatus
	Type       *Type
	CustomerID *uuid.UUID
	ProjectID  *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	CreatedBy  *uuid.UUID
	Page       int
	Limit      int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is one page of invoices, newest first.
type Page struct {
	Invoices   []*Invoice
	Total      int
	Page       int
	TotalPages int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	if params.CustomerID == uuid.Nil {
		return nil, apperr.Invalid("customer_id", "is required")
	}

	state, err := s.customers.GetState(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}

	totals, err := BuildTotals(params.Items, params.Type, params.GSTRate, state, params.IssuerState)
	if err != nil {
		return nil, err
	}

	date := params.Date
	if date.IsZero() {
		date = s.now()
	}

	inv := &Invoice{
		Date:           date,
		Type:           params.Type,
		CustomerID:     params.CustomerID,
		ProjectID:      params.ProjectID,
		TaxID:          params.TaxID,
		GSTPaid:        params.GSTPaid,
		CompanyBankID:  params.CompanyBankID,
		CustomerBankID: params.CustomerBankID,
		Notes:          params.Notes,
		IssuerState:    params.IssuerState,
		PaymentStatus:  StatusUnpaid,
		CreatedBy:      params.CreatedBy,
	}
	inv.applyTotals(totals)

	itx, err := s.repo.BeginCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer itx.Rollback()

	inv.Number = s.assignNumber(ctx, itx, inv.Date)

	if err := itx.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}

	return inv, nil
}

func (s *Service) assignNumber(ctx context.Context, itx CreateTx, date time.Time) string {
	count, err := itx.ReserveNumber(ctx, date.Year())
	if err == nil {
		return FormatNumber(date, count)
	}

	number := FallbackNumber(s.now())
	fallback := &apperr.ComputationFallback{Op: "invoice numbering", Err: err}
	s.logger.WarnContext(ctx, "invoice number sequence unavailable", "error", fallback, "number", number)

	if s.fallbacks != nil {
		s.fallbacks.NumberFallback()
	}

	return number
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}

	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}

	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}

	invoices, total, err := s.repo.ListInvoices(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Invoices:   invoices,
		Total:      total,
		Page:       filter.Page,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
	}, nil
}

// ListAll returns every invoice matching filter, ignoring pagination.
func (s *Service) ListAll(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	filter.Page, filter.Limit = 0, 0

	invoices, _, err := s.repo.ListInvoices(ctx, filter)

	return invoices, err
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	tx, err := s.repo.BeginUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	inv, err := tx.LockInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.CustomerID != nil {
		if *params.CustomerID == uuid.Nil {
			return nil, apperr.Invalid("customer_id", "must not be empty")
		}

		inv.CustomerID = *params.CustomerID
	}

	if params.Type != nil {
		if !params.Type.Valid() {
			return nil, apperr.Invalid("invoice_type", "unknown invoice type %q", *params.Type)
		}

		inv.Type = *params.Type
	}

	if params.Date != nil {
		inv.Date = *params.Date
	}

	if params.TaxID != nil {
		inv.TaxID = *params.TaxID
	}

	if params.GSTPaid != nil {
		inv.GSTPaid = *params.GSTPaid
	}

	if params.Notes != nil {
		inv.Notes = *params.Notes
	}

	inv.ProjectID = detachable(inv.ProjectID, params.ProjectID)
	inv.CompanyBankID = detachable(inv.CompanyBankID, params.CompanyBankID)
	inv.CustomerBankID = detachable(inv.CustomerBankID, params.CustomerBankID)

	recomputed := false

	if params.Items != nil {
		rate := inv.GSTRate
		if params.GSTRate != nil {
			rate = *params.GSTRate
		}

		state, err := s.customers.GetState(ctx, inv.CustomerID)
		if err != nil {
			return nil, err
		}

		totals, err := BuildTotals(params.Items, inv.Type, rate, state, params.IssuerState)
		if err != nil {
			return nil, err
		}

		recomputed = !totals.Total.Equal(inv.Total)
		inv.applyTotals(totals)
		inv.IssuerState = params.IssuerState
	}

	if recomputed {
		paid, err := tx.SumPayments(ctx, inv.ID)
		if err != nil {
			return nil, err
		}

		inv.PaymentStatus = StatusFor(inv.Total, paid)
	}

	if err := tx.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	return inv, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetInvoice(ctx, id); err != nil {
		return err
	}

	return s.repo.DeleteInvoice(ctx, id)
}

func detachable(current, update *uuid.UUID) *uuid.UUID {
	if update == nil {
		return current
	}

	if *update == uuid.Nil {
		return nil
	}

	return new(*update)
}
