package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sheikh-saqib/account-ledger-service/internal/api/handlers"
	"github.com/sheikh-saqib/account-ledger-service/internal/api/middleware"
	"github.com/sheikh-saqib/account-ledger-service/internal/config"
	"github.com/sheikh-saqib/account-ledger-service/internal/currency"
	"github.com/sheikh-saqib/account-ledger-service/internal/events/kafka"
	"github.com/sheikh-saqib/account-ledger-service/internal/events/logpub"
	interfaces "github.com/sheikh-saqib/account-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-service/internal/ledger"
	"github.com/sheikh-saqib/account-ledger-service/internal/logger"
	"github.com/sheikh-saqib/account-ledger-service/internal/permissions"
	"github.com/sheikh-saqib/account-ledger-service/internal/storage/memory"
	"github.com/sheikh-saqib/account-ledger-service/internal/storage/postgres"
)

type ledgerStore interface {
	interfaces.TransactionStore
	interfaces.AccountCatalog
	interfaces.TicketStore
	interfaces.WorkPeriodStore
}

func main() {
	cfg, err := config.Load(".env")
	log := logger.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.WithLevel(log, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store ledgerStore
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to postgres")
		}
		defer db.Close()

		pg := postgres.NewPostgresLedgerStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to create schema")
		}
		store = pg
	} else {
		log.Warn().Msg("No DATABASE_URL configured - using in-memory store")
		store = memory.NewMemoryLedgerStore()
	}

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
	} else {
		log.Warn().Msg("No KAFKA_BROKERS configured - events are only logged")
		publisher = logpub.NewPublisher(log)
	}

	formatter, err := currency.NewFormatter(cfg.CurrencyCode, cfg.Locale)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create currency formatter")
	}

	registry := permissions.NewAccountRegistry()
	checker := permissions.NewRoleChecker(registry, cfg.Grants())

	details := ledger.DetailsDeps{
		Projector:   ledger.NewProjector(store, formatter),
		Accounts:    store,
		Tickets:     store,
		WorkPeriods: store,
		Publisher:   publisher,
	}
	ledgerService := ledger.NewLedger(store, store, publisher)

	mux := http.NewServeMux()
	handlers.NewAccountsHandler(details, ledgerService, registry, log).Register(mux, checker)
	handlers.NewCatalogHandler(store, store, store, log).Register(mux, checker)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           middleware.Chain(mux, middleware.Logger(log), middleware.Recovery(log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}
