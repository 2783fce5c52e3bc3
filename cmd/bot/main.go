package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitos/bybit_dca_bot/internal/domain"
	"github.com/vitos/bybit_dca_bot/internal/infrastructure/exchange"
	"github.com/vitos/bybit_dca_bot/internal/infrastructure/logger"
	"github.com/vitos/bybit_dca_bot/internal/infrastructure/storage"
	"github.com/vitos/bybit_dca_bot/internal/usecase"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Exchange struct {
		APIKey       string `yaml:"api_key"`
		APISecret    string `yaml:"api_secret"`
		RESTEndpoint string `yaml:"rest_endpoint"`
		WSEndpoint   string `yaml:"ws_endpoint"`
	} `yaml:"exchange"`
	Trading struct {
		Symbol           string `yaml:"symbol"`
		CycleIntervalMs  int    `yaml:"cycle_interval_ms"`
		CancelAllOnStart bool   `yaml:"cancel_all_on_start"`
	} `yaml:"trading"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	adapter := exchange.NewBybitAdapter(cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.RESTEndpoint)

	symbol := cfg.Trading.Symbol
	session := usecase.NewSession(adapter, store, log, symbol)

	ctx := context.Background()
	if err := session.Start(ctx, cfg.Trading.CancelAllOnStart); err != nil {
		log.Fatal("Failed to start session", zap.Error(err))
	}

	// Live price stream is informational only; the strategy works off
	// REST snapshots.
	stream := exchange.NewTickerStream(cfg.Exchange.WSEndpoint, symbol, log)
	stream.OnTicker(func(t *domain.Ticker) {
		log.Debug("ticker",
			zap.String("symbol", t.Symbol),
			zap.Float64("last_price", t.LastPrice),
			zap.Float64("mark_price", t.MarkPrice))
	})
	if err := stream.Connect(); err != nil {
		log.Warn("Ticker stream unavailable", zap.Error(err))
	}
	defer stream.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	intervalMs := cfg.Trading.CycleIntervalMs
	if intervalMs == 0 {
		intervalMs = 10000
	}
	ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
	defer ticker.Stop()

	log.Info("Bot started", zap.String("symbol", symbol), zap.Int("cycle_interval_ms", intervalMs))

	for {
		if err := session.RunCycle(ctx); err != nil {
			log.Error("Cycle failed", zap.Error(err))
		}

		select {
		case <-ticker.C:
			continue
		case <-stop:
			log.Info("Shutting down...")
			return
		}
	}
}
