package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/billbook/billbook/internal/auth"
	"github.com/billbook/billbook/internal/http/bank"
	"github.com/billbook/billbook/internal/http/customer"
	"github.com/billbook/billbook/internal/http/invoice"
	"github.com/billbook/billbook/internal/http/payment"
	"github.com/billbook/billbook/internal/http/project"
	"github.com/billbook/billbook/internal/http/report"
	"github.com/billbook/billbook/internal/http/respond"
	"github.com/billbook/billbook/internal/observability"
)

type Handlers struct {
	Invoices  *invoice.Handler
	Payments  *payment.Handler
	Customers *customer.Handler
	Projects  *project.Handler
	Banks     *bank.Handler
	Reports   *report.Handler
}

// Invalidator drops cached reports.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Options struct {
	Auth        *auth.Authenticator
	Metrics     *observability.Metrics
	Reports     Invalidator
	FrontendURL string
	Production  bool
	// Health reports whether the backing stores are reachable.
	Health func(ctx context.Context) error
	// ExportLimit caps PDF and spreadsheet downloads per client IP per minute.
	ExportLimit int
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(opts.Metrics.Middleware)
	router.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        opts.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	}).Handler)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/api/health", health(opts.Health))
	router.Handle("/metrics", opts.Metrics.Handler())

	limit := opts.ExportLimit
	if limit <= 0 {
		limit = 10
	}

	exportLimiter := httprate.Limit(limit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))
	invalidate := invalidateReports(opts.Reports)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(opts.Auth.Middleware)
		r.Use(auth.AdminWrites)

		r.Route("/invoices", func(r chi.Router) {
			r.With(exportLimiter).Group(h.Invoices.PDFRoutes)
			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				r.Use(invalidate)
				h.Invoices.Routes(r)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Use(invalidate)
			h.Payments.Routes(r)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Use(invalidate)
			h.Customers.Routes(r)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Projects.Routes(r)
		})

		r.Route("/banks", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Banks.Routes(r)
		})

		r.Route("/reports", func(r chi.Router) {
			r.With(exportLimiter).Group(h.Reports.ExportRoutes)
			h.Reports.Routes(r)
		})
	})

	return router
}

func health(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				slog.Error("health check failed", "error", err)
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

				return
			}
		}

		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// invalidateReports drops cached reports after a successful write.
func invalidateReports(inv Invalidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if inv == nil || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				return
			}

			if err := inv.Invalidate(context.WithoutCancel(r.Context())); err != nil {
				slog.Error("failed to invalidate report cache", "error", err)
			}
		})
	}
}
