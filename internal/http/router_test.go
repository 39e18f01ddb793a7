package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/billbook/billbook/internal/auth"
	"github.com/billbook/billbook/internal/customer"
	"github.com/billbook/billbook/internal/document"
	billbookHttp "github.com/billbook/billbook/internal/http"
	bankHandler "github.com/billbook/billbook/internal/http/bank"
	customerHandler "github.com/billbook/billbook/internal/http/customer"
	invoiceHandler "github.com/billbook/billbook/internal/http/invoice"
	paymentHandler "github.com/billbook/billbook/internal/http/payment"
	projectHandler "github.com/billbook/billbook/internal/http/project"
	reportHandler "github.com/billbook/billbook/internal/http/report"
	"github.com/billbook/billbook/internal/observability"
)

const secret = "router-secret"

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

type fixture struct {
	router      http.Handler
	customers   *customer.MockRepository
	invalidator *countingInvalidator
	auth        *auth.Authenticator
}

func newFixture(t *testing.T, health func(context.Context) error) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := customer.NewMockRepository(ctrl)
	inv := &countingInvalidator{}
	a := auth.NewAuthenticator(secret, "Maharashtra")

	router := billbookHttp.New(billbookHttp.Handlers{
		Invoices:  invoiceHandler.NewHandler(nil, nil, nil, nil, nil, document.Issuer{}),
		Payments:  paymentHandler.NewHandler(nil),
		Customers: customerHandler.NewHandler(customer.NewService(repo)),
		Projects:  projectHandler.NewHandler(nil),
		Banks:     bankHandler.NewHandler(nil),
		Reports:   reportHandler.NewHandler(nil),
	}, billbookHttp.Options{
		Auth:        a,
		Metrics:     observability.NewMetrics(),
		Reports:     inv,
		FrontendURL: "http://localhost:3000",
		Health:      health,
	})

	return fixture{router: router, customers: repo, invalidator: inv, auth: a}
}

func (f fixture) do(t *testing.T, method, target, body string, p *auth.Principal) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	if p != nil {
		token, err := f.auth.Issue(*p, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func TestRouter_Health(t *testing.T) {
	ok := newFixture(t, func(context.Context) error { return nil })
	assert.Equal(t, http.StatusOK, ok.do(t, http.MethodGet, "/api/health", "", nil).Code)

	down := newFixture(t, func(context.Context) error { return errors.New("db down") })
	assert.Equal(t, http.StatusServiceUnavailable, down.do(t, http.MethodGet, "/api/health", "", nil).Code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_OnlyAdminsWrite(t *testing.T) {
	for _, role := range []auth.Role{auth.RoleCA, auth.RoleUser} {
		t.Run(string(role), func(t *testing.T) {
			f := newFixture(t, nil)
			p := &auth.Principal{UserID: uuid.New(), Role: role}

			rec := f.do(t, http.MethodPost, "/api/v1/customers", `{"name":"Asha Traders"}`, p)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Zero(t, f.invalidator.calls)
		})
	}
}

func TestRouter_WritesInvalidateReports(t *testing.T) {
	f := newFixture(t, nil)
	admin := &auth.Principal{UserID: uuid.New(), Role: auth.RoleAdmin}

	f.customers.EXPECT().CreateCustomer(gomock.Any(), gomock.Any()).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/customers", `{"name":"Asha Traders"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, f.invalidator.calls)

	rec = f.do(t, http.MethodPost, "/api/v1/customers", `{"name":""}`, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, f.invalidator.calls)

	f.customers.EXPECT().ListCustomers(gomock.Any(), gomock.Any()).Return(nil, nil)

	rec = f.do(t, http.MethodGet, "/api/v1/customers", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.invalidator.calls)
}

func TestRouter_Metrics(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodGet, "/api/health", "", nil)

	rec := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `billbook_http_requests_total{code="200",method="GET",route="/api/health"}`)
}
