package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/bank"
	"github.com/billbook/billbook/internal/database"
)

const defaultConstraint = "bank_accounts_one_default_key"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectAccountColumns = `
	id, account_holder_name, account_number, ifsc, bank_name, branch, account_type,
	is_default, is_company_account, customer_id, created_by, created_at, updated_at
`

func scanAccount(s scanner) (*bank.Account, error) {
	var a bank.Account

	var accountType string

	if err := s.Scan(
		&a.ID, &a.AccountHolderName, &a.AccountNumber, &a.IFSC, &a.BankName, &a.Branch, &accountType,
		&a.IsDefault, &a.IsCompanyAccount, &a.CustomerID, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.AccountType = bank.AccountType(accountType)

	return &a, nil
}

// clearDefaults unsets the default flag on the owner's other accounts of the same kind.
func clearDefaults(ctx context.Context, tx *sql.Tx, a *bank.Account) error {
	query := `
		UPDATE bank_accounts
		SET is_default = FALSE, updated_at = NOW()
		WHERE created_by = $1 AND is_company_account = $2 AND is_default AND id <> $3
	`

	if _, err := tx.ExecContext(ctx, query, a.CreatedBy, a.IsCompanyAccount, a.ID); err != nil {
		return fmt.Errorf("clearing default accounts: %w", err)
	}

	return nil
}

func mapWriteErr(op string, err error) error {
	if database.IsUniqueViolation(err, defaultConstraint) {
		return &apperr.ConflictError{Message: "another default account was set concurrently", Err: err}
	}

	if database.IsForeignKeyViolation(err) {
		return apperr.NotFound("customer")
	}

	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) CreateAccount(ctx context.Context, a *bank.Account) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if a.IsDefault {
			if err := clearDefaults(ctx, tx, a); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO bank_accounts (
				account_holder_name, account_number, ifsc, bank_name, branch, account_type,
				is_default, is_company_account, customer_id, created_by, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			RETURNING id, created_at
		`

		err := tx.QueryRowContext(ctx, query,
			a.AccountHolderName, a.AccountNumber, a.IFSC, a.BankName, a.Branch, a.AccountType,
			a.IsDefault, a.IsCompanyAccount, a.CustomerID, a.CreatedBy,
		).Scan(&a.ID, &a.CreatedAt)
		if err != nil {
			return mapWriteErr("creating bank account", err)
		}

		return nil
	})
}

func (s *Store) UpdateAccount(ctx context.Context, a *bank.Account) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if a.IsDefault {
			if err := clearDefaults(ctx, tx, a); err != nil {
				return err
			}
		}

		query := `
			UPDATE bank_accounts
			SET account_holder_name = $1, account_number = $2, ifsc = $3, bank_name = $4,
				branch = $5, account_type = $6, is_default = $7, updated_at = NOW()
			WHERE id = $8
			RETURNING updated_at
		`

		err := tx.QueryRowContext(ctx, query,
			a.AccountHolderName, a.AccountNumber, a.IFSC, a.BankName,
			a.Branch, a.AccountType, a.IsDefault, a.ID,
		).Scan(&a.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("bank account")
			}

			return mapWriteErr("updating bank account", err)
		}

		return nil
	})
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*bank.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM bank_accounts WHERE id = $1`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("bank account")
		}

		return nil, fmt.Errorf("getting bank account: %w", err)
	}

	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, filter bank.ListFilter) ([]*bank.Account, error) {
	query := `SELECT ` + selectAccountColumns + ` FROM bank_accounts WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.CreatedBy != nil {
		query += fmt.Sprintf(" AND created_by = $%d", argIdx)

		args = append(args, *filter.CreatedBy)
		argIdx++
	}

	if filter.IsCompanyAccount != nil {
		query += fmt.Sprintf(" AND is_company_account = $%d", argIdx)

		args = append(args, *filter.IsCompanyAccount)
		argIdx++
	}

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND customer_id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
	}

	query += " ORDER BY is_default DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bank accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*bank.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bank account: %w", err)
		}

		accounts = append(accounts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bank account rows: %w", err)
	}

	return accounts, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting bank account: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("bank account")
	}

	return nil
}
