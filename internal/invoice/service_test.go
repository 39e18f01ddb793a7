package invoice_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/invoice"
)

var (
	quietLogger  = slog.New(slog.NewTextHandler(io.Discard, nil))
	errConnReset = errors.New("conn reset")
)

type mocks struct {
	repo      *invoice.MockRepository
	tx        *invoice.MockCreateTx
	updateTx  *invoice.MockUpdateTx
	customers *invoice.MockCustomerDirectory
	fallbacks *invoice.MockFallbackRecorder
}

func newMocks(ctrl *gomock.Controller) mocks {
	return mocks{
		repo:      invoice.NewMockRepository(ctrl),
		tx:        invoice.NewMockCreateTx(ctrl),
		updateTx:  invoice.NewMockUpdateTx(ctrl),
		customers: invoice.NewMockCustomerDirectory(ctrl),
		fallbacks: invoice.NewMockFallbackRecorder(ctrl),
	}
}

func (m mocks) service(now time.Time) *invoice.Service {
	return invoice.NewService(m.repo, m.customers,
		invoice.WithLogger(quietLogger),
		invoice.WithFallbackRecorder(m.fallbacks),
		invoice.WithClock(func() time.Time { return now }),
	)
}

func TestService_Create(t *testing.T) {
	customerID := uuid.New()
	userID := uuid.New()
	now := time.UnixMilli(1_717_171_234_567).UTC()
	invoiceDate := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	baseParams := func() invoice.CreateParams {
		return invoice.CreateParams{
			CustomerID:  customerID,
			Type:        invoice.TypeTaxInvoice,
			Date:        invoiceDate,
			Items:       []invoice.ItemInput{{Description: "Retainer", Rate: decPtr("1000")}},
			GSTRate:     dec("18"),
			IssuerState: "Maharashtra",
			CreatedBy:   userID,
		}
	}

	type testCase struct {
		name       string
		params     func() invoice.CreateParams
		setupMock  func(m mocks)
		wantNumber string
		wantErr    func(t *testing.T, err error)
		check      func(t *testing.T, inv *invoice.Invoice)
	}

	tests := []testCase{
		{
			name:   "IntraStateNumberedFromSequence",
			params: baseParams,
			setupMock: func(m mocks) {
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Maharashtra", nil)
				m.repo.EXPECT().BeginCreate(gomock.Any()).Return(m.tx, nil)
				m.tx.EXPECT().ReserveNumber(gomock.Any(), 2024).Return(4, nil)
				m.tx.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
						inv.ID = uuid.New()
						return nil
					})
				m.tx.EXPECT().Commit().Return(nil)
				m.tx.EXPECT().Rollback().Return(nil)
			},
			wantNumber: "INV-2024-0005",
			check: func(t *testing.T, inv *invoice.Invoice) {
				assert.True(t, inv.CGST.Equal(dec("90")))
				assert.True(t, inv.SGST.Equal(dec("90")))
				assert.True(t, inv.IGST.IsZero())
				assert.True(t, inv.Total.Equal(dec("1180")))
				assert.True(t, inv.GSTApplicable)
				assert.Equal(t, invoice.StatusUnpaid, inv.PaymentStatus)
				assert.Equal(t, userID, inv.CreatedBy)
			},
		},
		{
			name:   "InterStateUsesIGST",
			params: baseParams,
			setupMock: func(m mocks) {
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Karnataka", nil)
				m.repo.EXPECT().BeginCreate(gomock.Any()).Return(m.tx, nil)
				m.tx.EXPECT().ReserveNumber(gomock.Any(), 2024).Return(0, nil)
				m.tx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
				m.tx.EXPECT().Commit().Return(nil)
				m.tx.EXPECT().Rollback().Return(nil)
			},
			wantNumber: "INV-2024-0001",
			check: func(t *testing.T, inv *invoice.Invoice) {
				assert.True(t, inv.IGST.Equal(dec("180")))
				assert.True(t, inv.CGST.IsZero())
				assert.True(t, inv.Total.Equal(dec("1180")))
			},
		},
		{
			name: "ProformaIgnoresRate",
			params: func() invoice.CreateParams {
				p := baseParams()
				p.Type = invoice.TypeProforma
				return p
			},
			setupMock: func(m mocks) {
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Maharashtra", nil)
				m.repo.EXPECT().BeginCreate(gomock.Any()).Return(m.tx, nil)
				m.tx.EXPECT().ReserveNumber(gomock.Any(), 2024).Return(9, nil)
				m.tx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
				m.tx.EXPECT().Commit().Return(nil)
				m.tx.EXPECT().Rollback().Return(nil)
			},
			wantNumber: "INV-2024-0010",
			check: func(t *testing.T, inv *invoice.Invoice) {
				assert.False(t, inv.GSTApplicable)
				assert.True(t, inv.GSTRate.IsZero())
				assert.True(t, inv.Total.Equal(dec("1000")))
			},
		},
		{
			name:   "SequenceFailureFallsBackToClock",
			params: baseParams,
			setupMock: func(m mocks) {
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Maharashtra", nil)
				m.repo.EXPECT().BeginCreate(gomock.Any()).Return(m.tx, nil)
				m.tx.EXPECT().ReserveNumber(gomock.Any(), 2024).Return(0, errors.New("relation does not exist"))
				m.fallbacks.EXPECT().NumberFallback()
				m.tx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
				m.tx.EXPECT().Commit().Return(nil)
				m.tx.EXPECT().Rollback().Return(nil)
			},
			wantNumber: "INV-2024-234567",
		},
		{
			name:   "DuplicateNumberIsConflict",
			params: baseParams,
			setupMock: func(m mocks) {
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Maharashtra", nil)
				m.repo.EXPECT().BeginCreate(gomock.Any()).Return(m.tx, nil)
				m.tx.EXPECT().ReserveNumber(gomock.Any(), 2024).Return(0, errors.New("boom"))
				m.fallbacks.EXPECT().NumberFallback()
				m.tx.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					Return(&apperr.ConflictError{Message: "invoice number INV-2024-234567 already exists"})
				m.tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: func(t *testing.T, err error) {
				var conflict *apperr.ConflictError
				assert.True(t, errors.As(err, &conflict))
			},
		},
		{
			name:   "UnknownCustomer",
			params: baseParams,
			setupMock: func(m mocks) {
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("", apperr.NotFound("customer"))
			},
			wantErr: func(t *testing.T, err error) {
				var nf *apperr.NotFoundError
				require.True(t, errors.As(err, &nf))
				assert.Equal(t, "customer", nf.Entity)
			},
		},
		{
			name: "MissingCustomer",
			params: func() invoice.CreateParams {
				p := baseParams()
				p.CustomerID = uuid.Nil
				return p
			},
			wantErr: func(t *testing.T, err error) {
				var verr *apperr.ValidationError
				assert.True(t, errors.As(err, &verr))
			},
		},
		{
			name: "NoItems",
			params: func() invoice.CreateParams {
				p := baseParams()
				p.Items = nil
				return p
			},
			setupMock: func(m mocks) {
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Maharashtra", nil)
			},
			wantErr: func(t *testing.T, err error) {
				var verr *apperr.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "items", verr.Field)
			},
		},
		{
			name:   "BeginFails",
			params: baseParams,
			setupMock: func(m mocks) {
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Maharashtra", nil)
				m.repo.EXPECT().BeginCreate(gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "db down")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			got, err := m.service(now).Create(context.Background(), tt.params())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				tt.wantErr(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, got.Number)

			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestService_Create_DefaultsDateToNow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)
	m := newMocks(ctrl)

	m.customers.EXPECT().GetState(gomock.Any(), gomock.Any()).Return("", nil)
	m.repo.EXPECT().BeginCreate(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().ReserveNumber(gomock.Any(), 2025).Return(0, nil)
	m.tx.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit().Return(nil)
	m.tx.EXPECT().Rollback().Return(nil)

	got, err := m.service(now).Create(context.Background(), invoice.CreateParams{
		CustomerID: uuid.New(),
		Type:       invoice.TypeNonTaxInvoice,
		Items:      []invoice.ItemInput{{Description: "Hosting", Rate: decPtr("99")}},
	})
	require.NoError(t, err)

	assert.Equal(t, now, got.Date)
	assert.Equal(t, "INV-2025-0001", got.Number)
}

func storedInvoice(customerID uuid.UUID) *invoice.Invoice {
	return &invoice.Invoice{
		ID:            uuid.New(),
		Number:        "INV-2024-0003",
		Date:          time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Type:          invoice.TypeTaxInvoice,
		CustomerID:    customerID,
		Items:         []invoice.LineItem{{Description: "Old", Quantity: dec("1"), Rate: dec("1000"), Amount: dec("1000")}},
		Subtotal:      dec("1000"),
		GSTApplicable: true,
		GSTRate:       dec("18"),
		CGST:          dec("90"),
		SGST:          dec("90"),
		IGST:          decimal.Zero,
		Total:         dec("1180"),
		PaymentStatus: invoice.StatusPaid,
	}
}

// lockForUpdate expects an update transaction that hands out stored and is
// always rolled back on exit.
func (m mocks) lockForUpdate(stored *invoice.Invoice) {
	m.repo.EXPECT().BeginUpdate(gomock.Any()).Return(m.updateTx, nil)
	m.updateTx.EXPECT().LockInvoice(gomock.Any(), stored.ID).Return(stored, nil)
	m.updateTx.EXPECT().Rollback().Return(nil)
}

func TestService_Update(t *testing.T) {
	customerID := uuid.New()
	notes := "net 30"

	tests := []struct {
		name      string
		params    invoice.UpdateParams
		setupMock func(m mocks, stored *invoice.Invoice)
		check     func(t *testing.T, got *invoice.Invoice)
		wantErr   error
	}{
		{
			name:   "NotesOnlyLeavesTotals",
			params: invoice.UpdateParams{Notes: &notes},
			setupMock: func(m mocks, stored *invoice.Invoice) {
				m.lockForUpdate(stored)
				m.updateTx.EXPECT().UpdateInvoice(gomock.Any(), gomock.Any()).Return(nil)
				m.updateTx.EXPECT().Commit().Return(nil)
			},
			check: func(t *testing.T, got *invoice.Invoice) {
				assert.Equal(t, "net 30", got.Notes)
				assert.True(t, got.Total.Equal(dec("1180")))
				assert.Equal(t, invoice.StatusPaid, got.PaymentStatus)
				assert.Equal(t, "INV-2024-0003", got.Number)
			},
		},
		{
			name: "ItemsRecomputeTotalsAndStatusTogether",
			params: invoice.UpdateParams{
				Items:       []invoice.ItemInput{{Description: "New", Quantity: decPtr("2"), Rate: decPtr("1000")}},
				IssuerState: "Maharashtra",
			},
			setupMock: func(m mocks, stored *invoice.Invoice) {
				m.lockForUpdate(stored)
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Karnataka", nil)
				m.updateTx.EXPECT().SumPayments(gomock.Any(), stored.ID).Return(dec("1180"), nil)
				m.updateTx.EXPECT().
					UpdateInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
						assert.True(t, inv.IGST.Equal(dec("360")))
						assert.True(t, inv.CGST.IsZero())
						assert.True(t, inv.Total.Equal(dec("2360")))
						assert.Equal(t, invoice.StatusPartiallyPaid, inv.PaymentStatus)
						assert.Equal(t, "Maharashtra", inv.IssuerState)
						return nil
					})
				m.updateTx.EXPECT().Commit().Return(nil)
			},
			check: func(t *testing.T, got *invoice.Invoice) {
				assert.Equal(t, invoice.StatusPartiallyPaid, got.PaymentStatus)
				assert.Equal(t, "INV-2024-0003", got.Number)
			},
		},
		{
			name: "UnchangedTotalKeepsStatus",
			params: invoice.UpdateParams{
				Items:       []invoice.ItemInput{{Description: "Renamed", Rate: decPtr("1000")}},
				IssuerState: "Maharashtra",
			},
			setupMock: func(m mocks, stored *invoice.Invoice) {
				m.lockForUpdate(stored)
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Maharashtra", nil)
				m.updateTx.EXPECT().UpdateInvoice(gomock.Any(), gomock.Any()).Return(nil)
				m.updateTx.EXPECT().Commit().Return(nil)
			},
			check: func(t *testing.T, got *invoice.Invoice) {
				assert.Equal(t, "Renamed", got.Items[0].Description)
				assert.Equal(t, invoice.StatusPaid, got.PaymentStatus)
			},
		},
		{
			name: "DetachProject",
			params: invoice.UpdateParams{
				ProjectID: new(uuid.Nil),
			},
			setupMock: func(m mocks, stored *invoice.Invoice) {
				projectID := uuid.New()
				stored.ProjectID = &projectID
				m.lockForUpdate(stored)
				m.updateTx.EXPECT().UpdateInvoice(gomock.Any(), gomock.Any()).Return(nil)
				m.updateTx.EXPECT().Commit().Return(nil)
			},
			check: func(t *testing.T, got *invoice.Invoice) {
				assert.Nil(t, got.ProjectID)
			},
		},
		{
			name: "PaymentSumFailsWritesNothing",
			params: invoice.UpdateParams{
				Items:       []invoice.ItemInput{{Description: "New", Quantity: decPtr("5"), Rate: decPtr("1000")}},
				IssuerState: "Maharashtra",
			},
			setupMock: func(m mocks, stored *invoice.Invoice) {
				m.lockForUpdate(stored)
				m.customers.EXPECT().GetState(gomock.Any(), customerID).Return("Maharashtra", nil)
				m.updateTx.EXPECT().SumPayments(gomock.Any(), stored.ID).Return(decimal.Zero, errConnReset)
			},
			wantErr: errConnReset,
		},
		{
			name:   "WriteFailsDoesNotCommit",
			params: invoice.UpdateParams{Notes: &notes},
			setupMock: func(m mocks, stored *invoice.Invoice) {
				m.lockForUpdate(stored)
				m.updateTx.EXPECT().UpdateInvoice(gomock.Any(), gomock.Any()).Return(errConnReset)
			},
			wantErr: errConnReset,
		},
		{
			name:   "InvalidType",
			params: invoice.UpdateParams{Type: new(invoice.Type("quote"))},
			setupMock: func(m mocks, stored *invoice.Invoice) {
				m.lockForUpdate(stored)
			},
			wantErr: &apperr.ValidationError{},
		},
		{
			name:   "NotFound",
			params: invoice.UpdateParams{Notes: &notes},
			setupMock: func(m mocks, stored *invoice.Invoice) {
				m.repo.EXPECT().BeginUpdate(gomock.Any()).Return(m.updateTx, nil)
				m.updateTx.EXPECT().LockInvoice(gomock.Any(), stored.ID).Return(nil, apperr.NotFound("invoice"))
				m.updateTx.EXPECT().Rollback().Return(nil)
			},
			wantErr: &apperr.NotFoundError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl)
			stored := storedInvoice(customerID)
			tt.setupMock(m, stored)

			got, err := m.service(time.Now()).Update(context.Background(), stored.ID, tt.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				switch want := tt.wantErr.(type) {
				case *apperr.ValidationError:
					assert.ErrorAs(t, err, &want)
				case *apperr.NotFoundError:
					assert.ErrorAs(t, err, &want)
				default:
					assert.ErrorIs(t, err, want)
				}

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_List(t *testing.T) {
	tests := []struct {
		name       string
		filter     invoice.ListFilter
		wantFilter invoice.ListFilter
		total      int
		wantPages  int
		wantPage   int
	}{
		{
			name:       "Defaults",
			filter:     invoice.ListFilter{},
			wantFilter: invoice.ListFilter{Page: 1, Limit: 20},
			total:      41,
			wantPages:  3,
			wantPage:   1,
		},
		{
			name:       "ClampsLimit",
			filter:     invoice.ListFilter{Page: 2, Limit: 1000},
			wantFilter: invoice.ListFilter{Page: 2, Limit: 100},
			total:      100,
			wantPages:  1,
			wantPage:   2,
		},
		{
			name:       "Empty",
			filter:     invoice.ListFilter{Limit: 10},
			wantFilter: invoice.ListFilter{Page: 1, Limit: 10},
			total:      0,
			wantPages:  0,
			wantPage:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := newMocks(ctrl)
			m.repo.EXPECT().ListInvoices(gomock.Any(), tt.wantFilter).Return(nil, tt.total, nil)

			page, err := m.service(time.Now()).List(context.Background(), tt.filter)
			require.NoError(t, err)

			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantPage, page.Page)
		})
	}
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)
	id := uuid.New()

	m.repo.EXPECT().GetInvoice(gomock.Any(), id).Return(&invoice.Invoice{ID: id}, nil)
	m.repo.EXPECT().DeleteInvoice(gomock.Any(), id).Return(nil)

	require.NoError(t, m.service(time.Now()).Delete(context.Background(), id))
}

func TestService_ListAll_IgnoresPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newMocks(ctrl)
	status := invoice.StatusPaid

	m.repo.EXPECT().
		ListInvoices(gomock.Any(), invoice.ListFilter{Status: &status}).
		Return([]*invoice.Invoice{{}, {}, {}}, 3, nil)

	got, err := m.service(time.Now()).ListAll(context.Background(), invoice.ListFilter{Status: &status, Page: 4, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
