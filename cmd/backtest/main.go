package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"FXSignals/internal/di"
	"FXSignals/internal/domain/models"
	"FXSignals/internal/domain/repository"
	"FXSignals/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	envFile := flag.String("env", ".env", "optional env file loaded before the config")
	pairFlag := flag.String("pair", "EUR/USD", "pair to simulate, BASE/QUOTE")
	tfFlag := flag.String("tf", "1H", "timeframe: 1m 5m 15m 30m 1H 4H 1D")
	capital := flag.Float64("capital", 0, "initial capital, 0 uses the configured value")
	xlsxPath := flag.String("xlsx", "", "write the equity curve and trade log to this workbook")
	timeout := flag.Duration("timeout", 30*time.Second, "overall time limit")
	flag.Parse()

	if _, err := os.Stat(*envFile); err == nil {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("env file load failed: %v", err)
		}
	}

	pair, err := models.ParsePair(*pairFlag)
	if err == nil {
		err = pair.Validate()
	}
	if err != nil {
		log.Fatalf("invalid pair: %v", err)
	}
	tf := repository.Timeframe(*tfFlag)
	if !repository.IsValidTimeframe(tf) {
		log.Fatalf("invalid timeframe %q", *tfFlag)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	// The CLI has no HTTP surface to expose metrics on.
	cfg.Metrics.Enabled = false

	runner, err := di.InitializeBacktest(cfg)
	if err != nil {
		log.Fatalf("backtest initialization failed: %v", err)
	}
	defer runner.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	res := runner.Backtest.Run(ctx, pair, tf, *capital)

	printSummary(os.Stdout, res)
	printTrades(os.Stdout, res.TradeLog)

	if *xlsxPath != "" {
		if err := writeXLSX(res, *xlsxPath); err != nil {
			log.Fatalf("write workbook: %v", err)
		}
		fmt.Printf("saved workbook to %s\n", *xlsxPath)
	}
}
