// ====================================
// File: cmd/mint/main.go
// ====================================
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain/solbc"
	"github.com/rovshanmuradov/candy-mint/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/candy-mint/internal/candymachine"
	"github.com/rovshanmuradov/candy-mint/internal/config"
	"github.com/rovshanmuradov/candy-mint/internal/events"
	"github.com/rovshanmuradov/candy-mint/internal/sale"
	"github.com/rovshanmuradov/candy-mint/internal/ui"
	"github.com/rovshanmuradov/candy-mint/internal/utils/logger"
	"github.com/rovshanmuradov/candy-mint/internal/wallet"
)

const (
	busBufferSize    = 256
	uiBufferSize     = 128
	shutdownDeadline = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to config file (yaml/json/toml)")
	envFile := flag.String("env", "", "Path to .env file (default .env)")
	flag.Parse()

	// Create context with signal handling
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.LoadConfig(*configPath, envFiles...)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Терминал занят TUI, поэтому логи пишутся только в файл
	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Level = cfg.LogLevel
	logCfg.Development = cfg.DebugLogging
	appLogger, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
		_ = appLogger.Close()
	}()

	if err := run(rootCtx, cfg, appLogger.Logger); err != nil {
		appLogger.Error("Mint terminal failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	saleCfg, err := cfg.SaleConfig()
	if err != nil {
		return err
	}

	wallets, err := loadWallets(cfg)
	if err != nil {
		return err
	}

	logger.Info("Starting candy machine mint",
		zap.String("network", cfg.Network),
		zap.String("candy_machine", saleCfg.CandyMachine.String()),
		zap.Int("wallets", len(wallets)))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := solbc.NewClient(cfg.RPCURL, rpc.CommitmentType(cfg.Commitment), logger)
	watcher := transaction.NewWatcher(client, logger, transaction.Config{
		PollInterval:     cfg.PollInterval(),
		MaxStatusRetries: uint(cfg.StatusRetries),
		StatusRetryDelay: transaction.DefaultStatusRetryDelay,
	}, transaction.NewMetrics(registry))

	bus := events.NewBus(logger, busBufferSize)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
		defer cancel()
		if err := bus.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Event bus shutdown incomplete", zap.Error(err))
		}
	}()

	session := sale.NewSession(sale.SessionConfig{
		Sale:    saleCfg,
		Ledger:  client,
		Reader:  candymachine.NewStateReader(client, saleCfg, logger),
		Builder: candymachine.NewBuilder(logger),
		Watcher: watcher,
		Bus:     bus,
		Metrics: sale.NewMetrics(registry),
		Logger:  logger,
	})
	defer session.Close()

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, registry, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	sender := ui.NewUpdateSender(make(chan tea.Msg, uiBufferSize), logger)
	defer sender.Close()
	sub := sender.Forward(bus)
	defer sub.Unsubscribe()

	uiWallets := make([]ui.Wallet, 0, len(wallets))
	for _, w := range wallets {
		uiWallets = append(uiWallets, w)
	}

	model := ui.NewModel(ctx, session, uiWallets, ui.Options{
		Network:         cfg.Network,
		RefreshInterval: cfg.RefreshInterval(),
		Updates:         sender.Updates(),
		Logger:          logger,
	})

	err = ui.Run(ctx, model)
	logger.Info("Shutting down mint terminal")
	return err
}

// loadWallets reads the wallets CSV when configured, otherwise the single
// keypair file.
func loadWallets(cfg *config.Config) ([]*wallet.Wallet, error) {
	if cfg.WalletsCSV != "" {
		return wallet.LoadWallets(cfg.WalletsCSV)
	}
	if cfg.KeypairPath == "" {
		return nil, errors.New("no wallet configured: set keypair_path or wallets_csv")
	}
	w, err := wallet.LoadKeypairFile(cfg.KeypairPath)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", cfg.KeypairPath, err)
	}
	return []*wallet.Wallet{w}, nil
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Metrics server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
