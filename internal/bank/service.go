package bank

import (
	"context"

	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=bank
type Repository interface {
	// CreateAccount and UpdateAccount clear the owner's other defaults of the
	// same kind in the same transaction when the account is the default.
	CreateAccount(ctx context.Context, a *Account) error
	UpdateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	ListAccounts(ctx context.Context, filter ListFilter) ([]*Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	AccountHolderName string
	AccountNumber     string
	IFSC              string
	BankName          string
	Branch            string
	AccountType       AccountType
	IsDefault         bool
	// IsCompanyAccount defaults to true when nil.
	IsCompanyAccount *bool
	CustomerID       *uuid.UUID
	CreatedBy        uuid.UUID
}

type UpdateParams struct {
	AccountHolderName *string
	AccountNumber     *string
	IFSC              *string
	BankName          *string
	Branch            *string
	AccountType       *AccountType
	IsDefault         *bool
}

type ListFilter struct {
	CreatedBy        *uuid.UUID
	IsCompanyAccount *bool
	CustomerID       *uuid.UUID
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Account, error) {
	a := &Account{
		AccountHolderName: params.AccountHolderName,
		AccountNumber:     params.AccountNumber,
		IFSC:              params.IFSC,
		BankName:          params.BankName,
		Branch:            params.Branch,
		AccountType:       params.AccountType,
		IsDefault:         params.IsDefault,
		IsCompanyAccount:  true,
		CustomerID:        params.CustomerID,
		CreatedBy:         params.CreatedBy,
	}

	if params.IsCompanyAccount != nil {
		a.IsCompanyAccount = *params.IsCompanyAccount
	}

	a.normalize()

	if err := validate(a); err != nil {
		return nil, err
	}

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetAccount(ctx, id)
}

// List returns accounts with defaults first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Account, error) {
	return s.repo.ListAccounts(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Account, error) {
	a, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.AccountHolderName != nil {
		a.AccountHolderName = *params.AccountHolderName
	}

	if params.AccountNumber != nil {
		a.AccountNumber = *params.AccountNumber
	}

	if params.IFSC != nil {
		a.IFSC = *params.IFSC
	}

	if params.BankName != nil {
		a.BankName = *params.BankName
	}

	if params.Branch != nil {
		a.Branch = *params.Branch
	}

	if params.AccountType != nil {
		a.AccountType = *params.AccountType
	}

	if params.IsDefault != nil {
		a.IsDefault = *params.IsDefault
	}

	a.normalize()

	if err := validate(a); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAccount(ctx, id)
}

func validate(a *Account) error {
	switch {
	case a.AccountHolderName == "":
		return apperr.Invalid("account_holder_name", "is required")
	case a.AccountNumber == "":
		return apperr.Invalid("account_number", "is required")
	case a.IFSC == "":
		return apperr.Invalid("ifsc", "is required")
	case a.BankName == "":
		return apperr.Invalid("bank_name", "is required")
	case !a.AccountType.Valid():
		return apperr.Invalid("account_type", "unknown account type %q", a.AccountType)
	}

	return nil
}
