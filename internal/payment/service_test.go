package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/invoice"
	"github.com/billbook/billbook/internal/payment"
)

func ref(id, owner uuid.UUID, total string, status invoice.PaymentStatus) map[uuid.UUID]*payment.InvoiceRef {
	return map[uuid.UUID]*payment.InvoiceRef{
		id: {ID: id, Total: dec(total), Status: status, CreatedBy: owner},
	}
}

func TestService_Create(t *testing.T) {
	owner := uuid.New()
	invoiceID := uuid.New()

	params := func() payment.CreateParams {
		return payment.CreateParams{
			InvoiceID:  invoiceID,
			Amount:     dec("400"),
			Date:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Mode:       payment.ModeUPI,
			ReceivedBy: owner,
		}
	}

	type testCase struct {
		name      string
		params    func() payment.CreateParams
		setupMock func(repo *payment.MockRepository, tx *payment.MockTx)
		wantErr   func(t *testing.T, err error)
	}

	tests := []testCase{
		{
			name:   "FirstPaymentMarksPartiallyPaid",
			params: params,
			setupMock: func(repo *payment.MockRepository, tx *payment.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				gomock.InOrder(
					tx.EXPECT().LockInvoices(gomock.Any(), []uuid.UUID{invoiceID}).
						Return(ref(invoiceID, owner, "1000", invoice.StatusUnpaid), nil),
					tx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, p *payment.Payment) error {
							p.ID = uuid.New()
							return nil
						}),
					tx.EXPECT().SumPayments(gomock.Any(), invoiceID).Return(dec("400"), nil),
					tx.EXPECT().SetInvoiceStatus(gomock.Any(), invoiceID, invoice.StatusPartiallyPaid).Return(nil),
					tx.EXPECT().Commit().Return(nil),
				)
				tx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name:   "CompletingPaymentMarksPaid",
			params: params,
			setupMock: func(repo *payment.MockRepository, tx *payment.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().LockInvoices(gomock.Any(), gomock.Any()).
					Return(ref(invoiceID, owner, "1000", invoice.StatusPartiallyPaid), nil)
				tx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().SumPayments(gomock.Any(), invoiceID).Return(dec("1000"), nil)
				tx.EXPECT().SetInvoiceStatus(gomock.Any(), invoiceID, invoice.StatusPaid).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name:   "UnchangedStatusIsNotWritten",
			params: params,
			setupMock: func(repo *payment.MockRepository, tx *payment.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().LockInvoices(gomock.Any(), gomock.Any()).
					Return(ref(invoiceID, owner, "1000", invoice.StatusPartiallyPaid), nil)
				tx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().SumPayments(gomock.Any(), invoiceID).Return(dec("800"), nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name:   "InvoiceNotFound",
			params: params,
			setupMock: func(repo *payment.MockRepository, tx *payment.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().LockInvoices(gomock.Any(), gomock.Any()).Return(nil, apperr.NotFound("invoice"))
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: func(t *testing.T, err error) {
				var nf *apperr.NotFoundError
				assert.True(t, errors.As(err, &nf))
			},
		},
		{
			name:   "OtherUsersInvoice",
			params: params,
			setupMock: func(repo *payment.MockRepository, tx *payment.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().LockInvoices(gomock.Any(), gomock.Any()).
					Return(ref(invoiceID, uuid.New(), "1000", invoice.StatusUnpaid), nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: func(t *testing.T, err error) {
				var forbidden *apperr.ForbiddenError
				assert.True(t, errors.As(err, &forbidden))
			},
		},
		{
			name: "ZeroAmount",
			params: func() payment.CreateParams {
				p := params()
				p.Amount = decimal.Zero
				return p
			},
			wantErr: func(t *testing.T, err error) {
				var verr *apperr.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "amount", verr.Field)
			},
		},
		{
			name: "UnknownMode",
			params: func() payment.CreateParams {
				p := params()
				p.Mode = "card"
				return p
			},
			wantErr: func(t *testing.T, err error) {
				var verr *apperr.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "payment_mode", verr.Field)
			},
		},
		{
			name:   "SumFailsRollsBack",
			params: params,
			setupMock: func(repo *payment.MockRepository, tx *payment.MockTx) {
				repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().LockInvoices(gomock.Any(), gomock.Any()).
					Return(ref(invoiceID, owner, "1000", invoice.StatusUnpaid), nil)
				tx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().SumPayments(gomock.Any(), invoiceID).Return(decimal.Zero, errors.New("conn reset"))
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "conn reset")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := payment.NewMockRepository(ctrl)
			tx := payment.NewMockTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, tx)
			}

			got, err := payment.NewService(repo).Create(context.Background(), tt.params())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				tt.wantErr(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, invoiceID, got.InvoiceID)
		})
	}
}

func TestService_Update_MovesBetweenInvoices(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	oldInvoice := uuid.New()
	newInvoice := uuid.New()
	paymentID := uuid.New()

	repo := payment.NewMockRepository(ctrl)
	tx := payment.NewMockTx(ctrl)

	stored := func() *payment.Payment {
		return &payment.Payment{
			ID:         paymentID,
			InvoiceID:  oldInvoice,
			Amount:     dec("1000"),
			Mode:       payment.ModeCash,
			ReceivedBy: owner,
		}
	}

	refs := map[uuid.UUID]*payment.InvoiceRef{
		oldInvoice: {ID: oldInvoice, Total: dec("1000"), Status: invoice.StatusPaid, CreatedBy: owner},
		newInvoice: {ID: newInvoice, Total: dec("500"), Status: invoice.StatusUnpaid, CreatedBy: owner},
	}

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	gomock.InOrder(
		repo.EXPECT().GetPayment(gomock.Any(), paymentID).Return(stored(), nil),
		tx.EXPECT().LockInvoices(gomock.Any(), gomock.InAnyOrder([]uuid.UUID{oldInvoice, newInvoice})).Return(refs, nil),
		tx.EXPECT().LockPayment(gomock.Any(), paymentID).Return(stored(), nil),
		tx.EXPECT().UpdatePayment(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *payment.Payment) error {
				assert.Equal(t, newInvoice, p.InvoiceID)
				assert.True(t, p.Amount.Equal(dec("500")))
				return nil
			}),
	)
	tx.EXPECT().SumPayments(gomock.Any(), oldInvoice).Return(decimal.Zero, nil)
	tx.EXPECT().SumPayments(gomock.Any(), newInvoice).Return(dec("500"), nil)
	tx.EXPECT().SetInvoiceStatus(gomock.Any(), oldInvoice, invoice.StatusUnpaid).Return(nil)
	tx.EXPECT().SetInvoiceStatus(gomock.Any(), newInvoice, invoice.StatusPaid).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	got, err := payment.NewService(repo).Update(context.Background(), paymentID, payment.UpdateParams{
		InvoiceID: &newInvoice,
		Amount:    new(dec("500")),
		Actor:     owner,
	})
	require.NoError(t, err)
	assert.Equal(t, newInvoice, got.InvoiceID)
}

func TestService_Update_NotOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := payment.NewMockRepository(ctrl)
	tx := payment.NewMockTx(ctrl)
	paymentID := uuid.New()
	invoiceID := uuid.New()
	stored := &payment.Payment{ID: paymentID, InvoiceID: invoiceID, ReceivedBy: uuid.New()}

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	repo.EXPECT().GetPayment(gomock.Any(), paymentID).Return(stored, nil)
	tx.EXPECT().LockInvoices(gomock.Any(), []uuid.UUID{invoiceID}).
		Return(ref(invoiceID, stored.ReceivedBy, "100", invoice.StatusPaid), nil)
	tx.EXPECT().LockPayment(gomock.Any(), paymentID).Return(stored, nil)
	tx.EXPECT().Rollback().Return(nil)

	_, err := payment.NewService(repo).Update(context.Background(), paymentID, payment.UpdateParams{Actor: uuid.New()})

	var forbidden *apperr.ForbiddenError
	assert.True(t, errors.As(err, &forbidden))
}

func TestService_Update_PaymentMovedConcurrently(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	seenInvoice := uuid.New()
	paymentID := uuid.New()

	repo := payment.NewMockRepository(ctrl)
	tx := payment.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	repo.EXPECT().GetPayment(gomock.Any(), paymentID).
		Return(&payment.Payment{ID: paymentID, InvoiceID: seenInvoice, ReceivedBy: owner}, nil)
	tx.EXPECT().LockInvoices(gomock.Any(), []uuid.UUID{seenInvoice}).
		Return(ref(seenInvoice, owner, "100", invoice.StatusPaid), nil)
	tx.EXPECT().LockPayment(gomock.Any(), paymentID).
		Return(&payment.Payment{ID: paymentID, InvoiceID: uuid.New(), ReceivedBy: owner}, nil)
	tx.EXPECT().Rollback().Return(nil)

	_, err := payment.NewService(repo).Update(context.Background(), paymentID, payment.UpdateParams{
		Notes: new("late"),
		Actor: owner,
	})

	var conflict *apperr.ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestService_Update_EmptyInvoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := payment.NewService(payment.NewMockRepository(ctrl)).Update(context.Background(), uuid.New(), payment.UpdateParams{
		InvoiceID: new(uuid.Nil),
		Actor:     uuid.New(),
	})

	var invalid *apperr.ValidationError
	assert.True(t, errors.As(err, &invalid))
}

func TestService_Delete_LastPaymentMarksUnpaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	invoiceID := uuid.New()
	paymentID := uuid.New()

	repo := payment.NewMockRepository(ctrl)
	tx := payment.NewMockTx(ctrl)

	stored := func() *payment.Payment {
		return &payment.Payment{ID: paymentID, InvoiceID: invoiceID, Amount: dec("1180"), ReceivedBy: owner}
	}

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	gomock.InOrder(
		repo.EXPECT().GetPayment(gomock.Any(), paymentID).Return(stored(), nil),
		tx.EXPECT().LockInvoices(gomock.Any(), []uuid.UUID{invoiceID}).
			Return(ref(invoiceID, owner, "1180", invoice.StatusPaid), nil),
		tx.EXPECT().LockPayment(gomock.Any(), paymentID).Return(stored(), nil),
		tx.EXPECT().DeletePayment(gomock.Any(), paymentID).Return(nil),
		tx.EXPECT().SumPayments(gomock.Any(), invoiceID).Return(decimal.Zero, nil),
		tx.EXPECT().SetInvoiceStatus(gomock.Any(), invoiceID, invoice.StatusUnpaid).Return(nil),
		tx.EXPECT().Commit().Return(nil),
	)
	tx.EXPECT().Rollback().Return(nil)

	require.NoError(t, payment.NewService(repo).Delete(context.Background(), paymentID, owner))
}

func TestService_ForInvoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	invoiceID := uuid.New()
	repo := payment.NewMockRepository(ctrl)

	repo.EXPECT().GetInvoiceRef(gomock.Any(), invoiceID).
		Return(&payment.InvoiceRef{ID: invoiceID, Total: dec("1180")}, nil)
	repo.EXPECT().ListPayments(gomock.Any(), payment.ListFilter{InvoiceID: &invoiceID}).
		Return([]*payment.Payment{{Amount: dec("400")}, {Amount: dec("180")}}, nil)

	ledger, err := payment.NewService(repo).ForInvoice(context.Background(), invoiceID)
	require.NoError(t, err)

	assert.Len(t, ledger.Payments, 2)
	assert.True(t, ledger.TotalPaid.Equal(dec("580")))
	assert.True(t, ledger.Remaining.Equal(dec("600")))
	assert.True(t, ledger.InvoiceTotal.Equal(dec("1180")))
}

func TestSortedIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	assert.Equal(t, []uuid.UUID{a, b}, payment.SortedIDs([]uuid.UUID{b, a, b}))
}
