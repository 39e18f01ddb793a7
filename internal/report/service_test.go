package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/payment"
	"github.com/billbook/billbook/internal/project"
	"github.com/billbook/billbook/internal/report"
)

type mocks struct {
	invoices  *report.MockInvoiceSource
	payments  *report.MockPaymentSource
	customers *report.MockCustomerSource
	projects  *report.MockProjectSource
}

func newMocks(ctrl *gomock.Controller) mocks {
	return mocks{
		invoices:  report.NewMockInvoiceSource(ctrl),
		payments:  report.NewMockPaymentSource(ctrl),
		customers: report.NewMockCustomerSource(ctrl),
		projects:  report.NewMockProjectSource(ctrl),
	}
}

func (m mocks) service(opts ...report.Option) *report.Service {
	return report.NewService(m.invoices, m.payments, m.customers, m.projects, opts...)
}

func TestService_Dashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)
	owner := uuid.New()
	start, end := day(1), day(30)

	inv := taxInvoice(uuid.New(), day(4), "1000", "90", "90", "0")

	m.invoices.EXPECT().ListAll(gomock.Any(), invoice.ListFilter{
		CreatedBy: &owner, StartDate: &start, EndDate: &end,
	}).Return([]*invoice.Invoice{inv}, nil)
	m.payments.EXPECT().List(gomock.Any(), payment.ListFilter{
		ReceivedBy: &owner, StartDate: &start, EndDate: &end,
	}).Return([]*payment.Payment{{Amount: dec("590")}}, nil)

	s, err := m.service().Dashboard(context.Background(), report.Scope{Owner: &owner, StartDate: &start, EndDate: &end})
	require.NoError(t, err)

	assert.Equal(t, 1, s.TotalInvoices)
	assert.True(t, s.Outstanding.Equal(dec("590")))
	assert.True(t, s.CollectionRate.Equal(dec("50")))
}

func TestService_Dashboard_ListFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)
	m.invoices.EXPECT().ListAll(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := m.service().Dashboard(context.Background(), report.Scope{})
	assert.ErrorContains(t, err, "listing invoices")
}

func TestService_GST(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)
	known := &customer.Customer{ID: uuid.New(), Name: "Asha Traders"}
	gone := uuid.New()

	m.invoices.EXPECT().ListAll(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f invoice.ListFilter) ([]*invoice.Invoice, error) {
			require.NotNil(t, f.Type)
			assert.Equal(t, invoice.TypeTaxInvoice, *f.Type)
			assert.Nil(t, f.CreatedBy)

			return []*invoice.Invoice{
				taxInvoice(known.ID, day(8), "1000", "90", "90", "0"),
				taxInvoice(known.ID, day(2), "500", "45", "45", "0"),
				taxInvoice(gone, day(5), "200", "0", "0", "36"),
			}, nil
		})
	m.customers.EXPECT().Get(gomock.Any(), known.ID).Return(known, nil).Times(1)
	m.customers.EXPECT().Get(gomock.Any(), gone).Return(nil, apperr.NotFound("customer"))

	r, err := m.service().GST(context.Background(), report.Scope{})
	require.NoError(t, err)

	require.Len(t, r.Rows, 3)
	assert.Equal(t, day(2), r.Rows[0].Date)
	assert.Equal(t, "N/A", r.Rows[1].CustomerName)
	assert.True(t, r.TotalGST.Equal(dec("306")))
}

func TestService_Customer(t *testing.T) {
	owner := uuid.New()
	c := &customer.Customer{ID: uuid.New(), Name: "Asha Traders"}

	tests := []struct {
		name      string
		setupMock func(m mocks)
		check     func(t *testing.T, r *report.PartyReport, err error)
	}{
		{
			name: "InvoicesWithPayments",
			setupMock: func(m mocks) {
				inv := taxInvoice(c.ID, day(3), "1000", "90", "90", "0")

				m.customers.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.invoices.EXPECT().ListAll(gomock.Any(), invoice.ListFilter{CustomerID: &c.ID, CreatedBy: &owner}).
					Return([]*invoice.Invoice{inv}, nil)
				m.payments.EXPECT().List(gomock.Any(), payment.ListFilter{InvoiceIDs: []uuid.UUID{inv.ID}}).
					Return([]*payment.Payment{{InvoiceID: inv.ID, Amount: dec("180")}}, nil)
			},
			check: func(t *testing.T, r *report.PartyReport, err error) {
				require.NoError(t, err)
				assert.Equal(t, c, r.Customer)
				assert.Len(t, r.Invoices, 1)
				assert.Len(t, r.Payments, 1)
				assert.True(t, r.Summary.Outstanding.Equal(dec("1000")))
			},
		},
		{
			name: "NoInvoicesSkipsPayments",
			setupMock: func(m mocks) {
				m.customers.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.invoices.EXPECT().ListAll(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			check: func(t *testing.T, r *report.PartyReport, err error) {
				require.NoError(t, err)
				assert.Empty(t, r.Payments)
				assert.Equal(t, 0, r.Summary.TotalInvoices)
			},
		},
		{
			name: "UnknownCustomer",
			setupMock: func(m mocks) {
				m.customers.EXPECT().Get(gomock.Any(), c.ID).Return(nil, apperr.NotFound("customer"))
			},
			check: func(t *testing.T, _ *report.PartyReport, err error) {
				var nf *apperr.NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "customer", nf.Entity)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl)
			tt.setupMock(m)

			r, err := m.service().Customer(context.Background(), c.ID, &owner)
			tt.check(t, r, err)
		})
	}
}

func TestService_Project(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)
	p := &project.Project{ID: uuid.New(), Name: "Warehouse fit-out", Status: project.StatusActive}

	inv := taxInvoice(uuid.New(), day(3), "1000", "90", "90", "0")
	inv.ProjectID = &p.ID
	inv.PaymentStatus = invoice.StatusPaid

	m.projects.EXPECT().Get(gomock.Any(), p.ID).Return(p, nil)
	m.invoices.EXPECT().ListAll(gomock.Any(), invoice.ListFilter{ProjectID: &p.ID}).
		Return([]*invoice.Invoice{inv}, nil)
	m.payments.EXPECT().List(gomock.Any(), gomock.Any()).
		Return([]*payment.Payment{{Amount: dec("1180")}}, nil)

	r, err := m.service().Project(context.Background(), p.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, p, r.Project)
	assert.Nil(t, r.Customer)
	assert.True(t, r.Summary.Outstanding.IsZero())
	assert.Equal(t, 1, r.Summary.CountsByStatus[invoice.StatusPaid])
}
