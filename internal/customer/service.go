package customer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=customer
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	CreateCustomers(ctx context.Context, cs []*Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context, filter ListFilter) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name        string
	CompanyName string
	Email       string
	Phone       string
	GSTIN       string
	Address     Address
	Bank        BankDetails
	CreatedBy   uuid.UUID
}

// UpdateParams lists the fields a caller may change. Nil means unchanged.
type UpdateParams struct {
	Name        *string
	CompanyName *string
	Email       *string
	Phone       *string
	GSTIN       *string
	Address     *Address
	Bank        *BankDetails
}

type ListFilter struct {
	CreatedBy *uuid.UUID
	Search    string
}

func fromParams(p CreateParams) (*Customer, error) {
	c := &Customer{
		Name:        p.Name,
		CompanyName: p.CompanyName,
		Email:       p.Email,
		Phone:       p.Phone,
		GSTIN:       p.GSTIN,
		Address:     p.Address,
		Bank:        p.Bank,
		CreatedBy:   p.CreatedBy,
	}
	c.normalize()

	if c.Name == "" {
		return nil, apperr.Invalid("name", "is required")
	}

	return c, nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	c, err := fromParams(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Import creates all customers or none. Validation errors name the 1-based row.
func (s *Service) Import(ctx context.Context, params []CreateParams) ([]*Customer, error) {
	if len(params) == 0 {
		return nil, nil
	}

	customers := make([]*Customer, len(params))

	for i, p := range params {
		c, err := fromParams(p)
		if err != nil {
			return nil, apperr.Invalid("row "+strconv.Itoa(i+1), "%v", err)
		}

		customers[i] = c
	}

	if err := s.repo.CreateCustomers(ctx, customers); err != nil {
		return nil, fmt.Errorf("import customers: %w", err)
	}

	return customers, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// GetState returns the customer's address state.
func (s *Service) GetState(ctx context.Context, id uuid.UUID) (string, error) {
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return "", err
	}

	return c.Address.State, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Customer, error) {
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		c.Name = *params.Name
	}

	if params.CompanyName != nil {
		c.CompanyName = *params.CompanyName
	}

	if params.Email != nil {
		c.Email = *params.Email
	}

	if params.Phone != nil {
		c.Phone = *params.Phone
	}

	if params.GSTIN != nil {
		c.GSTIN = *params.GSTIN
	}

	if params.Address != nil {
		c.Address = *params.Address
	}

	if params.Bank != nil {
		c.Bank = *params.Bank
	}

	c.normalize()

	if c.Name == "" {
		return nil, apperr.Invalid("name", "is required")
	}

	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCustomer(ctx, id)
}
