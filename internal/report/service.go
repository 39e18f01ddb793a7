package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/payment"
	"github.com/billbook/billbook/internal/project"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=report
type InvoiceSource interface {
	ListAll(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

type PaymentSource interface {
	List(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, error)
}

type CustomerSource interface {
	Get(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
}

type ProjectSource interface {
	Get(ctx context.Context, id uuid.UUID) (*project.Project, error)
}

// Scope narrows a report. A nil Owner covers every user's records.
type Scope struct {
	Owner     *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

func (s Scope) key() string {
	owner := "all"
	if s.Owner != nil {
		owner = s.Owner.String()
	}

	return fmt.Sprintf("%s:%s:%s", owner, dateKey(s.StartDate), dateKey(s.EndDate))
}

func dateKey(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.UTC().Format(time.RFC3339)
}

type Service struct {
	invoices  InvoiceSource
	payments  PaymentSource
	customers CustomerSource
	projects  ProjectSource
	cache     *Cache
}

type Option func(*Service)

// WithCache serves dashboard and GST summaries through c.
func WithCache(c *Cache) Option {
	return func(s *Service) { s.cache = c }
}

func NewService(invoices InvoiceSource, payments PaymentSource, customers CustomerSource, projects ProjectSource, opts ...Option) *Service {
	s := &Service{
		invoices:  invoices,
		payments:  payments,
		customers: customers,
		projects:  projects,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Invalidate drops cached summaries after invoices or payments change.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	return s.cache.Invalidate(ctx)
}

// Dashboard summarises invoices dated in scope and payments received in scope.
func (s *Service) Dashboard(ctx context.Context, scope Scope) (Summary, error) {
	return cached(ctx, s.cache, "dashboard", scope.key(), func(ctx context.Context) (Summary, error) {
		invoices, err := s.invoices.ListAll(ctx, invoice.ListFilter{
			CreatedBy: scope.Owner,
			StartDate: scope.StartDate,
			EndDate:   scope.EndDate,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("listing invoices: %w", err)
		}

		payments, err := s.payments.List(ctx, payment.ListFilter{
			ReceivedBy: scope.Owner,
			StartDate:  scope.StartDate,
			EndDate:    scope.EndDate,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("listing payments: %w", err)
		}

		return Aggregate(invoices, payments), nil
	})
}

func (s *Service) GST(ctx context.Context, scope Scope) (GSTReport, error) {
	return cached(ctx, s.cache, "gst", scope.key(), func(ctx context.Context) (GSTReport, error) {
		invoices, err := s.invoices.ListAll(ctx, invoice.ListFilter{
			Type:      new(invoice.TypeTaxInvoice),
			CreatedBy: scope.Owner,
			StartDate: scope.StartDate,
			EndDate:   scope.EndDate,
		})
		if err != nil {
			return GSTReport{}, fmt.Errorf("listing invoices: %w", err)
		}

		customers, err := s.lookupCustomers(ctx, invoices)
		if err != nil {
			return GSTReport{}, err
		}

		return GSTSummary(invoices, customers), nil
	})
}

func (s *Service) lookupCustomers(ctx context.Context, invoices []*invoice.Invoice) (map[uuid.UUID]*customer.Customer, error) {
	customers := make(map[uuid.UUID]*customer.Customer)

	for _, inv := range invoices {
		if _, seen := customers[inv.CustomerID]; seen {
			continue
		}

		c, err := s.customers.Get(ctx, inv.CustomerID)
		if err != nil {
			var nf *apperr.NotFoundError
			if errors.As(err, &nf) {
				continue
			}

			return nil, fmt.Errorf("getting customer: %w", err)
		}

		customers[inv.CustomerID] = c
	}

	return customers, nil
}

// Customer reports every invoice billed to one customer, newest first, with their payments.
func (s *Service) Customer(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*PartyReport, error) {
	c, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r, err := s.party(ctx, invoice.ListFilter{CustomerID: &id, CreatedBy: owner})
	if err != nil {
		return nil, err
	}

	r.Customer = c

	return r, nil
}

func (s *Service) Project(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*PartyReport, error) {
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r, err := s.party(ctx, invoice.ListFilter{ProjectID: &id, CreatedBy: owner})
	if err != nil {
		return nil, err
	}

	r.Project = p

	return r, nil
}

func (s *Service) party(ctx context.Context, filter invoice.ListFilter) (*PartyReport, error) {
	invoices, err := s.invoices.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	payments := []*payment.Payment{}

	if len(invoices) > 0 {
		ids := make([]uuid.UUID, len(invoices))
		for i, inv := range invoices {
			ids[i] = inv.ID
		}

		payments, err = s.payments.List(ctx, payment.ListFilter{InvoiceIDs: ids})
		if err != nil {
			return nil, fmt.Errorf("listing payments: %w", err)
		}
	}

	return &PartyReport{
		Invoices: invoices,
		Payments: payments,
		Summary:  Aggregate(invoices, payments),
	}, nil
}
