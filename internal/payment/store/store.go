package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/database"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/payment"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const selectPaymentColumns = `
	id, invoice_id, amount, payment_date, payment_mode, transaction_id, notes,
	received_by, created_at, updated_at
`

func scanPayment(s scanner) (*payment.Payment, error) {
	var p payment.Payment

	var mode string

	if err := s.Scan(
		&p.ID, &p.InvoiceID, &p.Amount, &p.Date, &mode, &p.TransactionID, &p.Notes,
		&p.ReceivedBy, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Mode = payment.Mode(mode)

	return &p, nil
}

func getPayment(ctx context.Context, q queryer, id uuid.UUID, lock bool) (*payment.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + ` FROM payments WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	p, err := scanPayment(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment")
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return getPayment(ctx, s.db, id, false)
}

func (s *Store) ListPayments(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + ` FROM payments WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.InvoiceID != nil {
		query += fmt.Sprintf(" AND invoice_id = $%d", argIdx)

		args = append(args, *filter.InvoiceID)
		argIdx++
	}

	if filter.InvoiceIDs != nil {
		ids := make([]string, len(filter.InvoiceIDs))
		for i, id := range filter.InvoiceIDs {
			ids[i] = id.String()
		}

		query += fmt.Sprintf(" AND invoice_id = ANY($%d::uuid[])", argIdx)

		args = append(args, ids)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND payment_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND payment_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.ReceivedBy != nil {
		query += fmt.Sprintf(" AND received_by = $%d", argIdx)

		args = append(args, *filter.ReceivedBy)
	}

	query += " ORDER BY payment_date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

func (s *Store) GetInvoiceRef(ctx context.Context, invoiceID uuid.UUID) (*payment.InvoiceRef, error) {
	query := `SELECT id, total_amount, payment_status, created_by FROM invoices WHERE id = $1`

	ref, err := scanRef(s.db.QueryRowContext(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("invoice")
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return ref, nil
}

func scanRef(s scanner) (*payment.InvoiceRef, error) {
	var ref payment.InvoiceRef

	var status string

	if err := s.Scan(&ref.ID, &ref.Total, &status, &ref.CreatedBy); err != nil {
		return nil, err
	}

	ref.Status = invoice.PaymentStatus(status)

	return &ref, nil
}

type paymentTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (payment.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning payment tx: %w", err)
	}

	return &paymentTx{tx: dbTx}, nil
}

func (t *paymentTx) Commit() error   { return t.tx.Commit() }
func (t *paymentTx) Rollback() error { return t.tx.Rollback() }

func (t *paymentTx) LockPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return getPayment(ctx, t.tx, id, true)
}

// LockInvoices takes row locks one invoice at a time in id order.
// Every id must exist.
func (t *paymentTx) LockInvoices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*payment.InvoiceRef, error) {
	query := `SELECT id, total_amount, payment_status, created_by FROM invoices WHERE id = $1 FOR UPDATE`

	refs := make(map[uuid.UUID]*payment.InvoiceRef, len(ids))

	for _, id := range payment.SortedIDs(ids) {
		ref, err := scanRef(t.tx.QueryRowContext(ctx, query, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperr.NotFound("invoice")
			}

			return nil, fmt.Errorf("locking invoice: %w", err)
		}

		refs[id] = ref
	}

	return refs, nil
}

func (t *paymentTx) CreatePayment(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (invoice_id, amount, payment_date, payment_mode, transaction_id, notes, received_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.InvoiceID, p.Amount, p.Date, p.Mode, p.TransactionID, p.Notes, p.ReceivedBy,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.NotFound("invoice")
		}

		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

func (t *paymentTx) UpdatePayment(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments
		SET invoice_id = $1, amount = $2, payment_date = $3, payment_mode = $4,
			transaction_id = $5, notes = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.InvoiceID, p.Amount, p.Date, p.Mode, p.TransactionID, p.Notes, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("payment")
		}

		return fmt.Errorf("updating payment: %w", err)
	}

	return nil
}

func (t *paymentTx) DeletePayment(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting payment: %w", err)
	}

	return nil
}

func (t *paymentTx) SumPayments(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal

	err := t.tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1`, invoiceID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing payments: %w", err)
	}

	return sum, nil
}

func (t *paymentTx) SetInvoiceStatus(ctx context.Context, invoiceID uuid.UUID, status invoice.PaymentStatus) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE invoices SET payment_status = $1, updated_at = NOW() WHERE id = $2`, status, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}

	return nil
}
