package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alpacasim/internal/config"
	"alpacasim/internal/httpapi"
	"alpacasim/internal/journal"
	"alpacasim/internal/ledger"
	"alpacasim/internal/util"
)

func main() {
	cfgPath := "config/alpacasim.yaml"
	if p := os.Getenv("ALPACASIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	initialCash, err := cfg.InitialCash()
	if err != nil {
		log.Fatalf("reading initial cash: %v", err)
	}
	prices, err := cfg.PriceOverrides()
	if err != nil {
		log.Fatalf("reading price overrides: %v", err)
	}
	defaultPrice, err := cfg.DefaultPrice()
	if err != nil {
		log.Fatalf("reading default price: %v", err)
	}

	store := ledger.NewStore(ledger.SeedAccount(cfg.Account.AccountNumber, cfg.Account.Currency, initialCash))
	engine := ledger.NewEngine(store, ledger.NewPriceTable(prices, defaultPrice), logger)

	var jr *journal.Recorder
	if cfg.Storage.SQLitePath != "" {
		jr, err = journal.Open(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening order journal: %v", err)
		}
		defer jr.Close()
		logger.Info("order journal enabled", "path", cfg.Storage.SQLitePath)
	}

	srv := httpapi.NewTradingServer(store, engine, jr, logger)
	httpServer := &http.Server{
		Addr:    cfg.Servers.Trading.Addr(),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("trading API listening",
			"addr", httpServer.Addr,
			"account", cfg.Account.AccountNumber,
			"cash", initialCash.String(),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down trading API")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
