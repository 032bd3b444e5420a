package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quorum-wallet/quorum-wallet/internal/api"
	"github.com/quorum-wallet/quorum-wallet/internal/app"
	"github.com/quorum-wallet/quorum-wallet/internal/config"
	"github.com/quorum-wallet/quorum-wallet/internal/keyvault"
	"github.com/quorum-wallet/quorum-wallet/internal/logger"
	"github.com/quorum-wallet/quorum-wallet/internal/metrics"
	"github.com/quorum-wallet/quorum-wallet/internal/middleware"
	"github.com/quorum-wallet/quorum-wallet/internal/relayer"
	"github.com/quorum-wallet/quorum-wallet/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	// Initialize database
	store, err := storage.New(cfg.PostgresDSN)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	slog.Info("connected to database")

	// Initialize the key vault and load (or bootstrap) the relayer key
	vault, err := keyvault.New(cfg)
	if err != nil {
		slog.Error("failed to initialize key vault", "error", err)
		os.Exit(1)
	}
	keyService := app.NewKeyService(storage.NewRelayerKeyRepository(store), vault)
	relayerKey, err := keyService.LoadOrCreate(ctx)
	if err != nil {
		slog.Error("failed to load relayer key", "error", err)
		os.Exit(1)
	}

	// Connect the relayer to the chain
	rel, err := relayer.New(cfg.RPCURL, relayerKey)
	if err != nil {
		slog.Error("failed to connect to RPC endpoint", "error", err)
		os.Exit(1)
	}
	defer rel.Close()

	if cfg.ChainID != 0 && rel.ChainID().Int64() != cfg.ChainID {
		slog.Error("RPC chain ID mismatch",
			"expected", cfg.ChainID,
			"got", rel.ChainID().String(),
		)
		os.Exit(1)
	}

	slog.Info("relayer ready",
		"address", rel.Address().Hex(),
		"chain_id", rel.ChainID().String(),
	)

	m := metrics.New()

	// Initialize application services
	walletService := app.NewWalletService(app.Config{
		States:     storage.NewStateStore(store),
		EntryPoint: cfg.EntryPointAddress,
		Executor:   rel,
		Metrics:    m,
		Deployer:   cfg.DeployerAddress,
		InitCode:   cfg.WalletInitCode,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, cfg.RateLimitPerSecond > 0, m)

	// Initialize API server
	server := api.NewServer(cfg, walletService, rateLimiter)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Wait for either server error or shutdown signal
	select {
	case err := <-serverErrors:
		slog.Error("server error", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		slog.Info("received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("error during shutdown", "error", err)
			slog.Warn("forcing shutdown")
		}
	}
}
