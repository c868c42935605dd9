package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/dairyops/milkledger/internal/config"
	"github.com/dairyops/milkledger/internal/repository/mongodb"
	"github.com/dairyops/milkledger/internal/repository/sheets"
	"github.com/dairyops/milkledger/internal/scheduler"
	"github.com/dairyops/milkledger/internal/server/handlers"
	"github.com/dairyops/milkledger/internal/server/router"
	identitysvc "github.com/dairyops/milkledger/internal/service/identity"
	ledgersvc "github.com/dairyops/milkledger/internal/service/ledger"
	overviewsvc "github.com/dairyops/milkledger/internal/service/overview"
	paymentssvc "github.com/dairyops/milkledger/internal/service/payments"
	"github.com/dairyops/milkledger/pkg/clients/mailer"
	"github.com/dairyops/milkledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		baseLogger.Fatal("failed to load timezone", zap.Error(err))
	}

	repo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var exporter sheets.Repository
	if cfg.SheetsEnabled() {
		exporter, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	} else {
		baseLogger.Warn("sheets export not configured, disabled")
	}

	resolver := identitysvc.NewResolver(repo.Customers, baseLogger.Named("svc.identity"))
	ledgerSvc := ledgersvc.NewService(repo.Ledger, resolver, loc, baseLogger.Named("svc.ledger"))
	overviewSvc := overviewsvc.NewService(repo.Ledger, resolver, exporter, baseLogger.Named("svc.overview"))
	paymentsSvc := paymentssvc.NewService(repo.Payments, repo.Ledger, repo.ReminderConfigs, resolver, loc, baseLogger.Named("svc.payments"))

	var mailClient mailer.Client
	if cfg.MailerEnabled() {
		mailClient = mailer.NewClient(cfg.Mailer)
		baseLogger.Info("mailer client enabled")
	} else {
		baseLogger.Warn("mailer api key missing, reminder mail disabled")
	}

	engine := router.New(router.Handlers{
		Ledger:    handlers.NewLedgerHandler(ledgerSvc, baseLogger.Named("handlers.ledger")),
		Overview:  handlers.NewOverviewHandler(overviewSvc, ledgerSvc, baseLogger.Named("handlers.overview")),
		Payments:  handlers.NewPaymentHandler(paymentsSvc, baseLogger.Named("handlers.payments")),
		Customers: handlers.NewCustomerHandler(repo.Customers, baseLogger.Named("handlers.customers")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Mailer, paymentsSvc, mailClient, loc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
