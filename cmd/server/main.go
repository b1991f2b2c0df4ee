// Package main is the entry point for the CEDEARs portfolio manager.
//
// The application's core is the commission and custody fee engine: it
// computes what a brokerage charges for buying/selling a CEDEAR and for
// holding the portfolio, projects first-year costs, ranks broker rate
// cards, and inverse-solves minimum trade sizes. Persistence is split
// across two SQLite databases:
// - config.db: broker fee schedules (rate cards)
// - ledger.db: immutable record of executed trades and fees paid
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/config"
	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/database"
	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/modules/fees"
	feeshandlers "github.com/DiegoMartinotti/cedears-manager-sub002/internal/modules/fees/handlers"
	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/modules/historical"
	historicalhandlers "github.com/DiegoMartinotti/cedears-manager-sub002/internal/modules/historical/handlers"
	"github.com/DiegoMartinotti/cedears-manager-sub002/internal/server"
	"github.com/DiegoMartinotti/cedears-manager-sub002/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting CEDEARs manager")

	// API clients expect plain JSON numbers for amounts and rates
	decimal.MarshalJSONWithoutQuotes = true

	// config.db holds the broker rate cards; ledger.db is the append-only
	// record of executed trades, so it runs with the stricter profile.
	configDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "config.db"),
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open config database")
	}
	defer configDB.Close()

	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	for _, db := range []*database.DB{configDB, ledgerDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("db", db.Name()).Msg("Failed to migrate database")
		}
	}

	// Repositories and services
	scheduleRepo := fees.NewScheduleRepository(configDB.Conn(), log)
	feesService := fees.NewService(scheduleRepo, log)

	tradeRepo := historical.NewTradeRepository(ledgerDB.Conn(), log)
	historicalService := historical.NewService(tradeRepo, log)

	// HTTP server
	srv := server.New(server.Config{
		Log:                log,
		Config:             cfg,
		ConfigDB:           configDB,
		LedgerDB:           ledgerDB,
		FeesHandlers:       feeshandlers.NewFeesHandlers(feesService, log),
		HistoricalHandlers: historicalhandlers.NewHistoricalHandlers(historicalService, log),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down HTTP server cleanly")
	}

	// Checkpoint the WALs so both databases close in a minimal state
	for _, db := range []*database.DB{configDB, ledgerDB} {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			log.Warn().Err(err).Str("db", db.Name()).Msg("WAL checkpoint failed")
		}
	}

	log.Info().Msg("Shutdown complete")
}
