package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/database"
	"github.com/billbook/billbook/internal/invoice"
)

const numberConstraint = "invoices_number_key"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	id, number, invoice_date, invoice_type, customer_id, project_id, items,
	subtotal, gst_applicable, gst_rate, cgst, sgst, igst, total_amount, issuer_state,
	tax_id, gst_paid, company_bank_id, customer_bank_id, notes, payment_status,
	created_by, created_at, updated_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var typeStr, statusStr string

	var items []byte

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.Date, &typeStr, &inv.CustomerID, &inv.ProjectID, &items,
		&inv.Subtotal, &inv.GSTApplicable, &inv.GSTRate, &inv.CGST, &inv.SGST, &inv.IGST, &inv.Total, &inv.IssuerState,
		&inv.TaxID, &inv.GSTPaid, &inv.CompanyBankID, &inv.CustomerBankID, &inv.Notes, &statusStr,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	inv.Type = invoice.Type(typeStr)
	inv.PaymentStatus = invoice.PaymentStatus(statusStr)

	return &inv, nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("invoice")
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, int, error) {
	where := ` WHERE 1=1`

	var args []any

	argIdx := 1

	add := func(cond string, v any) {
		where += fmt.Sprintf(" AND "+cond, argIdx)

		args = append(args, v)
		argIdx++
	}

	if filter.Status != nil {
		add("payment_status = $%d", *filter.Status)
	}

	if filter.Type != nil {
		add("invoice_type = $%d", *filter.Type)
	}

	if filter.CustomerID != nil {
		add("customer_id = $%d", *filter.CustomerID)
	}

	if filter.ProjectID != nil {
		add("project_id = $%d", *filter.ProjectID)
	}

	if filter.StartDate != nil {
		add("invoice_date >= $%d", *filter.StartDate)
	}

	if filter.EndDate != nil {
		add("invoice_date <= $%d", *filter.EndDate)
	}

	if filter.CreatedBy != nil {
		add("created_by = $%d", *filter.CreatedBy)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting invoices: %w", err)
	}

	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices` + where +
		` ORDER BY invoice_date DESC, number DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)

		args = append(args, filter.Limit, (max(filter.Page, 1)-1)*filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, total, nil
}

// DeleteInvoice removes the invoice. Its payments go with it.
func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("invoice")
	}

	return nil
}

type createTx struct {
	tx *sql.Tx
}

func (s *Store) BeginCreate(ctx context.Context) (invoice.CreateTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning create tx: %w", err)
	}

	return &createTx{tx: dbTx}, nil
}

func (c *createTx) Commit() error   { return c.tx.Commit() }
func (c *createTx) Rollback() error { return c.tx.Rollback() }

// ReserveNumber bumps the yearly counter. The first invoice of a year seeds
// the counter from invoices already dated in that year. The statement runs
// under a savepoint so a failure leaves the transaction usable.
func (c *createTx) ReserveNumber(ctx context.Context, year int) (int, error) {
	if _, err := c.tx.ExecContext(ctx, `SAVEPOINT reserve_number`); err != nil {
		return 0, fmt.Errorf("creating savepoint: %w", err)
	}

	start, end := invoice.YearBounds(year)

	query := `
		INSERT INTO invoice_sequences (year, last_value)
		SELECT $1, COUNT(*) + 1 FROM invoices WHERE invoice_date >= $2 AND invoice_date < $3
		ON CONFLICT (year) DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value
	`

	var next int
	if err := c.tx.QueryRowContext(ctx, query, year, start, end).Scan(&next); err != nil {
		if _, rbErr := c.tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT reserve_number`); rbErr != nil {
			return 0, fmt.Errorf("reserving invoice number: %w", errors.Join(err, rbErr))
		}

		return 0, fmt.Errorf("reserving invoice number: %w", err)
	}

	if _, err := c.tx.ExecContext(ctx, `RELEASE SAVEPOINT reserve_number`); err != nil {
		return 0, fmt.Errorf("releasing savepoint: %w", err)
	}

	return next - 1, nil
}

func (c *createTx) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	query := `
		INSERT INTO invoices (
			number, invoice_date, invoice_type, customer_id, project_id, items,
			subtotal, gst_applicable, gst_rate, cgst, sgst, igst, total_amount, issuer_state,
			tax_id, gst_paid, company_bank_id, customer_bank_id, notes, payment_status,
			created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, NOW())
		RETURNING id, created_at
	`

	err = c.tx.QueryRowContext(ctx, query,
		inv.Number, inv.Date, inv.Type, inv.CustomerID, inv.ProjectID, string(items),
		inv.Subtotal, inv.GSTApplicable, inv.GSTRate, inv.CGST, inv.SGST, inv.IGST, inv.Total, inv.IssuerState,
		inv.TaxID, inv.GSTPaid, inv.CompanyBankID, inv.CustomerBankID, inv.Notes, inv.PaymentStatus,
		inv.CreatedBy,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, numberConstraint) {
			return &apperr.ConflictError{Message: "invoice number " + inv.Number + " already exists", Err: err}
		}

		if database.IsForeignKeyViolation(err) {
			return apperr.Invalid("", "invoice references a missing customer, project or bank account")
		}

		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

type updateTx struct {
	tx *sql.Tx
}

func (s *Store) BeginUpdate(ctx context.Context) (invoice.UpdateTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning update tx: %w", err)
	}

	return &updateTx{tx: dbTx}, nil
}

func (u *updateTx) Commit() error   { return u.tx.Commit() }
func (u *updateTx) Rollback() error { return u.tx.Rollback() }

// LockInvoice reads the invoice and holds its row until the transaction ends.
// Payment writes lock the same row first, so totals and status never race.
func (u *updateTx) LockInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`

	inv, err := scanInvoice(u.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("invoice")
		}

		return nil, fmt.Errorf("locking invoice: %w", err)
	}

	return inv, nil
}

func (u *updateTx) SumPayments(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal

	err := u.tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1`, invoiceID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing payments: %w", err)
	}

	return sum, nil
}

// UpdateInvoice writes every editable column and the payment status. The
// number is owned by creation and never changes.
func (u *updateTx) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	query := `
		UPDATE invoices
		SET invoice_date = $1, invoice_type = $2, customer_id = $3, project_id = $4, items = $5,
			subtotal = $6, gst_applicable = $7, gst_rate = $8, cgst = $9, sgst = $10, igst = $11,
			total_amount = $12, issuer_state = $13, tax_id = $14, gst_paid = $15, company_bank_id = $16,
			customer_bank_id = $17, notes = $18, payment_status = $19, updated_at = NOW()
		WHERE id = $20
		RETURNING updated_at
	`

	err = u.tx.QueryRowContext(ctx, query,
		inv.Date, inv.Type, inv.CustomerID, inv.ProjectID, string(items),
		inv.Subtotal, inv.GSTApplicable, inv.GSTRate, inv.CGST, inv.SGST, inv.IGST,
		inv.Total, inv.IssuerState, inv.TaxID, inv.GSTPaid, inv.CompanyBankID,
		inv.CustomerBankID, inv.Notes, inv.PaymentStatus,
		inv.ID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("invoice")
		}

		if database.IsForeignKeyViolation(err) {
			return apperr.Invalid("", "invoice references a missing customer, project or bank account")
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}
