package payment

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/invoice"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context, filter ListFilter) ([]*Payment, error)
	GetInvoiceRef(ctx context.Context, invoiceID uuid.UUID) (*InvoiceRef, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx writes payments and the status of the invoices they belong to.
// Invoices must be locked before their payments or status are touched.
type Tx interface {
	LockPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	LockInvoices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*InvoiceRef, error)
	CreatePayment(ctx context.Context, p *Payment) error
	UpdatePayment(ctx context.Context, p *Payment) error
	DeletePayment(ctx context.Context, id uuid.UUID) error
	SumPayments(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	SetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status invoice.PaymentStatus) error
	Commit() error
	Rollback() error
}

// InvoiceRef is the part of an invoice the reconciler needs.
type InvoiceRef struct {
	ID        uuid.UUID
	Total     decimal.Decimal
	Status    invoice.PaymentStatus
	CreatedBy uuid.UUID
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateParams struct {
	InvoiceID     uuid.UUID
	Amount        decimal.Decimal
	Date          time.Time
	Mode          Mode
	TransactionID string
	Notes         string
	ReceivedBy    uuid.UUID
}

// UpdateParams lists the fields a caller may change. Nil means unchanged.
// Actor must be the user who recorded the payment.
type UpdateParams struct {
	InvoiceID     *uuid.UUID
	Amount        *decimal.Decimal
	Date          *time.Time
	Mode          *Mode
	TransactionID *string
	Notes         *string
	Actor         uuid.UUID
}

type ListFilter struct {
	InvoiceID  *uuid.UUID
	InvoiceIDs []uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	ReceivedBy *uuid.UUID
}

// Ledger is an invoice with its payments and what is left to collect.
type Ledger struct {
	Payments     []*Payment
	InvoiceTotal decimal.Decimal
	TotalPaid    decimal.Decimal
	Remaining    decimal.Decimal
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Invalid("amount", "must be greater than zero")
	}

	return nil
}

func validateMode(mode Mode) error {
	if !mode.Valid() {
		return apperr.Invalid("payment_mode", "unknown payment mode %q", mode)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Payment, error) {
	if params.InvoiceID == uuid.Nil {
		return nil, apperr.Invalid("invoice_id", "is required")
	}

	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}

	if err := validateMode(params.Mode); err != nil {
		return nil, err
	}

	p := &Payment{
		InvoiceID:     params.InvoiceID,
		Amount:        params.Amount,
		Date:          params.Date,
		Mode:          params.Mode,
		TransactionID: params.TransactionID,
		Notes:         params.Notes,
		ReceivedBy:    params.ReceivedBy,
	}

	if p.Date.IsZero() {
		p.Date = s.now()
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback()

	refs, err := tx.LockInvoices(ctx, []uuid.UUID{p.InvoiceID})
	if err != nil {
		return nil, err
	}

	if refs[p.InvoiceID].CreatedBy != params.ReceivedBy {
		return nil, apperr.Forbidden("record payments on this invoice")
	}

	if err := tx.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	if err := reconcile(ctx, tx, refs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Payment, error) {
	var moveTo []uuid.UUID

	if params.InvoiceID != nil {
		if *params.InvoiceID == uuid.Nil {
			return nil, apperr.Invalid("invoice_id", "must not be empty")
		}

		moveTo = append(moveTo, *params.InvoiceID)
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback()

	p, refs, err := s.lockPayment(ctx, tx, id, moveTo...)
	if err != nil {
		return nil, err
	}

	if p.ReceivedBy != params.Actor {
		return nil, apperr.Forbidden("update this payment")
	}

	if params.InvoiceID != nil {
		p.InvoiceID = *params.InvoiceID
	}

	if params.Amount != nil {
		if err := validateAmount(*params.Amount); err != nil {
			return nil, err
		}

		p.Amount = *params.Amount
	}

	if params.Mode != nil {
		if err := validateMode(*params.Mode); err != nil {
			return nil, err
		}

		p.Mode = *params.Mode
	}

	if params.Date != nil {
		p.Date = *params.Date
	}

	if params.TransactionID != nil {
		p.TransactionID = *params.TransactionID
	}

	if params.Notes != nil {
		p.Notes = *params.Notes
	}

	if refs[p.InvoiceID].CreatedBy != params.Actor {
		return nil, apperr.Forbidden("move payments to this invoice")
	}

	if err := tx.UpdatePayment(ctx, p); err != nil {
		return nil, err
	}

	if err := reconcile(ctx, tx, refs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, id, actor uuid.UUID) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback()

	p, refs, err := s.lockPayment(ctx, tx, id)
	if err != nil {
		return err
	}

	if p.ReceivedBy != actor {
		return apperr.Forbidden("delete this payment")
	}

	if err := tx.DeletePayment(ctx, id); err != nil {
		return err
	}

	if err := reconcile(ctx, tx, refs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment: %w", err)
	}

	return nil
}

// lockPayment locks the payment's invoice, plus any invoice in also, before
// the payment row itself. Deleting an invoice takes its row and then its
// payments, so every writer acquires locks in that order.
func (s *Service) lockPayment(ctx context.Context, tx Tx, id uuid.UUID, also ...uuid.UUID) (*Payment, map[uuid.UUID]*InvoiceRef, error) {
	seen, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	refs, err := tx.LockInvoices(ctx, append([]uuid.UUID{seen.InvoiceID}, also...))
	if err != nil {
		return nil, nil, err
	}

	p, err := tx.LockPayment(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if p.InvoiceID != seen.InvoiceID {
		return nil, nil, &apperr.ConflictError{Message: "payment was moved to another invoice concurrently, retry"}
	}

	return p, refs, nil
}

// reconcile writes the derived status of every locked invoice, in id order.
func reconcile(ctx context.Context, tx Tx, refs map[uuid.UUID]*InvoiceRef) error {
	ids := make([]uuid.UUID, 0, len(refs))
	for id := range refs {
		ids = append(ids, id)
	}

	for _, id := range SortedIDs(ids) {
		ref := refs[id]

		sum, err := tx.SumPayments(ctx, id)
		if err != nil {
			return err
		}

		status := ReconcileStatus(ref.Total, sum)
		if status == ref.Status {
			continue
		}

		if err := tx.SetInvoiceStatus(ctx, id, status); err != nil {
			return err
		}

		ref.Status = status
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, filter)
}

// InvoiceRef returns the owner and total of an invoice.
func (s *Service) InvoiceRef(ctx context.Context, invoiceID uuid.UUID) (*InvoiceRef, error) {
	return s.repo.GetInvoiceRef(ctx, invoiceID)
}

// ForInvoice returns an invoice's payments, newest first, with its running balance.
func (s *Service) ForInvoice(ctx context.Context, invoiceID uuid.UUID) (*Ledger, error) {
	ref, err := s.repo.GetInvoiceRef(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.ListPayments(ctx, ListFilter{InvoiceID: &invoiceID})
	if err != nil {
		return nil, err
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	return &Ledger{
		Payments:     payments,
		InvoiceTotal: ref.Total,
		TotalPaid:    paid,
		Remaining:    Balance(ref.Total, paid),
	}, nil
}

// SortedIDs returns ids deduplicated and in lock order.
func SortedIDs(ids []uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	slices.SortFunc(out, compareUUID)

	return slices.Compact(out)
}

func compareUUID(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
