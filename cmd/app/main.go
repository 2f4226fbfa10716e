package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mossdale/dropforge/internal/catalog"
	"github.com/mossdale/dropforge/internal/config"
	"github.com/mossdale/dropforge/internal/database"
	"github.com/mossdale/dropforge/internal/database/postgres"
	"github.com/mossdale/dropforge/internal/drop"
	"github.com/mossdale/dropforge/internal/equip"
	"github.com/mossdale/dropforge/internal/event"
	"github.com/mossdale/dropforge/internal/handler"
	"github.com/mossdale/dropforge/internal/ledger"
	"github.com/mossdale/dropforge/internal/reaction"
	"github.com/mossdale/dropforge/internal/repository"
	"github.com/mossdale/dropforge/internal/server"
	"github.com/mossdale/dropforge/internal/trade"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initLogger(cfg)
	handler.InitValidator()

	pool, err := database.NewPool(cfg.GetDBConnString(), 25, 5*time.Minute, 30*time.Minute)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	reactionRepo := postgres.NewReactionRepository(pool)
	rewardRepo := postgres.NewRewardRepository(pool)
	tradeRepo := postgres.NewTradeRepository(pool)

	bus := event.NewMemoryBus()

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		slog.Error("Failed to create catalog service", "error", err)
		os.Exit(1)
	}

	services := server.Services{
		Drop:     drop.NewService(rewardRepo, bus, cfg.RewardCooldown),
		Ledger:   ledger.NewService(ledgerRepo),
		Trade:    trade.NewService(tradeRepo, bus),
		Reaction: reaction.NewService(reactionRepo, bus),
		Equip:    equip.NewService(userRepo),
		Catalog:  catalogService,
		Users:    userRepo,
	}

	if err := syncCatalog(cfg.CatalogFile, catalogRepo); err != nil {
		slog.Error("Failed to sync item catalog", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, pool, services)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// syncCatalog reconciles the item definitions file against the database at
// startup. A missing file is fatal so misdeployments surface immediately.
func syncCatalog(path string, repo repository.Catalog) error {
	loader := catalog.NewLoader()

	catalogCfg, err := loader.Load(path)
	if err != nil {
		return err
	}
	if err := loader.Validate(catalogCfg); err != nil {
		return err
	}

	result, err := loader.SyncToDatabase(context.Background(), catalogCfg, repo)
	if err != nil {
		return err
	}

	slog.Info("Item catalog synced",
		"inserted", result.ItemsInserted,
		"updated", result.ItemsUpdated,
		"skipped", result.ItemsSkipped)
	return nil
}
