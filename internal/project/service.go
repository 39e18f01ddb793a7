package project

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=project
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context, filter ListFilter) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name        string
	CustomerID  uuid.UUID
	Description string
	Status      Status
	CreatedBy   uuid.UUID
}

type UpdateParams struct {
	Name        *string
	CustomerID  *uuid.UUID
	Description *string
	Status      *Status
}

type ListFilter struct {
	CreatedBy  *uuid.UUID
	CustomerID *uuid.UUID
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
	p := &Project{
		Name:        strings.TrimSpace(params.Name),
		CustomerID:  params.CustomerID,
		Description: strings.TrimSpace(params.Description),
		Status:      params.Status,
		CreatedBy:   params.CreatedBy,
	}

	if p.Status == "" {
		p.Status = StatusActive
	}

	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Project, error) {
	return s.repo.ListProjects(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Project, error) {
	p, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		p.Name = strings.TrimSpace(*params.Name)
	}

	if params.CustomerID != nil {
		p.CustomerID = *params.CustomerID
	}

	if params.Description != nil {
		p.Description = strings.TrimSpace(*params.Description)
	}

	if params.Status != nil {
		p.Status = *params.Status
	}

	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProject(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProject(ctx, id)
}

func validate(p *Project) error {
	if p.Name == "" {
		return apperr.Invalid("name", "is required")
	}

	if p.CustomerID == uuid.Nil {
		return apperr.Invalid("customer_id", "is required")
	}

	if !p.Status.Valid() {
		return apperr.Invalid("status", "unknown project status %q", p.Status)
	}

	return nil
}
