package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/bybit_dca_bot/internal/domain"
	"github.com/vitos/bybit_dca_bot/internal/infrastructure/storage"
	"gopkg.in/yaml.v3"
)

// Writes the strategy config and trigger documents into the document
// store, so the bot has something to load on its first session.

type SeedConfig struct {
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Strategy struct {
		MaxHoldPositions float64 `yaml:"max_hold_positions"`
		MinQty           float64 `yaml:"min_qty"`
		LongProfit       float64 `yaml:"long_profit"`
		ShortProfit      float64 `yaml:"short_profit"`
		LongNextEntry    float64 `yaml:"long_next_entry"`
		ShortNextEntry   float64 `yaml:"short_next_entry"`
	} `yaml:"strategy"`
	Trigger struct {
		LongEnabled  bool `yaml:"long_enabled"`
		ShortEnabled bool `yaml:"short_enabled"`
	} `yaml:"trigger"`
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	f, err := os.Open(*configPath)
	if err != nil {
		fmt.Printf("Failed to open config: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var cfg SeedConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	strategyConfig := &domain.StrategyConfig{
		MaxHoldPositions: cfg.Strategy.MaxHoldPositions,
		MinQty:           cfg.Strategy.MinQty,
		LongProfit:       cfg.Strategy.LongProfit,
		ShortProfit:      cfg.Strategy.ShortProfit,
		LongNextEntry:    cfg.Strategy.LongNextEntry,
		ShortNextEntry:   cfg.Strategy.ShortNextEntry,
	}
	if err := store.SaveConfig(ctx, strategyConfig); err != nil {
		fmt.Printf("Failed to save config document: %v\n", err)
		os.Exit(1)
	}

	triggerState := &domain.TriggerState{
		LongEnabled:  cfg.Trigger.LongEnabled,
		ShortEnabled: cfg.Trigger.ShortEnabled,
	}
	if err := store.SaveTriggerState(ctx, triggerState); err != nil {
		fmt.Printf("Failed to save trigger document: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded config and trigger documents into %s\n", cfg.Storage.Path)
}
