package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectCustomerColumns = `
	id, name, company_name, email, phone, gstin,
	street, city, state, pincode, country,
	bank_account_number, bank_ifsc, bank_name, bank_branch,
	created_by, created_at, updated_at
`

func scanCustomer(s scanner) (*customer.Customer, error) {
	var c customer.Customer

	if err := s.Scan(
		&c.ID, &c.Name, &c.CompanyName, &c.Email, &c.Phone, &c.GSTIN,
		&c.Address.Street, &c.Address.City, &c.Address.State, &c.Address.Pincode, &c.Address.Country,
		&c.Bank.AccountNumber, &c.Bank.IFSC, &c.Bank.BankName, &c.Bank.Branch,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

const insertCustomer = `
	INSERT INTO customers (
		name, company_name, email, phone, gstin,
		street, city, state, pincode, country,
		bank_account_number, bank_ifsc, bank_name, bank_branch,
		created_by, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
	RETURNING id, created_at
`

func insertArgs(c *customer.Customer) []any {
	return []any{
		c.Name, c.CompanyName, c.Email, c.Phone, c.GSTIN,
		c.Address.Street, c.Address.City, c.Address.State, c.Address.Pincode, c.Address.Country,
		c.Bank.AccountNumber, c.Bank.IFSC, c.Bank.BankName, c.Bank.Branch,
		c.CreatedBy,
	}
}

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	if err := s.db.QueryRowContext(ctx, insertCustomer, insertArgs(c)...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}

	return nil
}

func (s *Store) CreateCustomers(ctx context.Context, cs []*customer.Customer) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertCustomer)
		if err != nil {
			return fmt.Errorf("preparing customer insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range cs {
			if err := stmt.QueryRowContext(ctx, insertArgs(c)...).Scan(&c.ID, &c.CreatedAt); err != nil {
				return fmt.Errorf("creating customer %q: %w", c.Name, err)
			}
		}

		return nil
	})
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("customer")
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context, filter customer.ListFilter) ([]*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.CreatedBy != nil {
		query += fmt.Sprintf(" AND created_by = $%d", argIdx)

		args = append(args, *filter.CreatedBy)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR company_name ILIKE $%d OR gstin ILIKE $%d)", argIdx, argIdx, argIdx)

		args = append(args, "%"+filter.Search+"%")
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer rows: %w", err)
	}

	return customers, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, company_name = $2, email = $3, phone = $4, gstin = $5,
			street = $6, city = $7, state = $8, pincode = $9, country = $10,
			bank_account_number = $11, bank_ifsc = $12, bank_name = $13, bank_branch = $14,
			updated_at = NOW()
		WHERE id = $15
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name, c.CompanyName, c.Email, c.Phone, c.GSTIN,
		c.Address.Street, c.Address.City, c.Address.State, c.Address.Pincode, c.Address.Country,
		c.Bank.AccountNumber, c.Bank.IFSC, c.Bank.BankName, c.Bank.Branch,
		c.ID,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("customer")
		}

		return fmt.Errorf("updating customer: %w", err)
	}

	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return &apperr.ConflictError{Message: "customer still has invoices or projects", Err: err}
		}

		return fmt.Errorf("deleting customer: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("customer")
	}

	return nil
}
