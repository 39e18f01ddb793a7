package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/billbook/billbook/internal/auth"
	"github.com/billbook/billbook/internal/bank"
	bankStore "github.com/billbook/billbook/internal/bank/store"
	"github.com/billbook/billbook/internal/config"
	"github.com/billbook/billbook/internal/customer"
	customerStore "github.com/billbook/billbook/internal/customer/store"
	"github.com/billbook/billbook/internal/database"
	"github.com/billbook/billbook/internal/document"
	billbookHttp "github.com/billbook/billbook/internal/http"
	bankHandler "github.com/billbook/billbook/internal/http/bank"
	customerHandler "github.com/billbook/billbook/internal/http/customer"
	invoiceHandler "github.com/billbook/billbook/internal/http/invoice"
	paymentHandler "github.com/billbook/billbook/internal/http/payment"
	projectHandler "github.com/billbook/billbook/internal/http/project"
	reportHandler "github.com/billbook/billbook/internal/http/report"
	"github.com/billbook/billbook/internal/invoice"
	invoiceStore "github.com/billbook/billbook/internal/invoice/store"
	"github.com/billbook/billbook/internal/observability"
	"github.com/billbook/billbook/internal/payment"
	paymentStore "github.com/billbook/billbook/internal/payment/store"
	"github.com/billbook/billbook/internal/project"
	projectStore "github.com/billbook/billbook/internal/project/store"
	"github.com/billbook/billbook/internal/report"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	var (
		customerService = customer.NewService(customerStore.New(db))
		projectService  = project.NewService(projectStore.New(db))
		bankService     = bank.NewService(bankStore.New(db))
		paymentService  = payment.NewService(paymentStore.New(db))
		invoiceService  = invoice.NewService(invoiceStore.New(db), customerService,
			invoice.WithLogger(logger),
			invoice.WithFallbackRecorder(metrics),
		)
	)

	var reportOpts []report.Option

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()

		if err != nil {
			slog.Warn("redis unreachable, report cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			reportOpts = append(reportOpts, report.WithCache(report.NewCache(client, cfg.Redis.CacheTTL, metrics, logger)))
		}
	}

	reportService := report.NewService(invoiceService, paymentService, customerService, projectService, reportOpts...)

	renderer, err := document.NewRenderer(document.NewClient(cfg.Gotenberg.URL))
	if err != nil {
		slog.Error("failed to load invoice templates", "error", err)
		os.Exit(1)
	}

	issuer := document.Issuer{
		Name:    cfg.Company.Name,
		Address: cfg.Company.Address,
		State:   cfg.Company.State,
		GSTIN:   cfg.Company.GSTIN,
	}

	handlers := billbookHttp.Handlers{
		Invoices:  invoiceHandler.NewHandler(invoiceService, customerService, projectService, bankService, renderer, issuer),
		Payments:  paymentHandler.NewHandler(paymentService),
		Customers: customerHandler.NewHandler(customerService),
		Projects:  projectHandler.NewHandler(projectService),
		Banks:     bankHandler.NewHandler(bankService),
		Reports:   reportHandler.NewHandler(reportService),
	}

	router := billbookHttp.New(handlers, billbookHttp.Options{
		Auth:        auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Company.State),
		Metrics:     metrics,
		Reports:     reportService,
		FrontendURL: cfg.Server.FrontendURL,
		Production:  cfg.App.Env == "production",
		Health:      db.PingContext,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "name", cfg.App.Name, "port", srv.Addr, "env", cfg.App.Env)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
