// Package main scores wallet trading history offline: per-wallet
// credibility components plus the aggregate bias for one asset/timeframe,
// optionally persisted to Postgres.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"whale-desk/internal/bias"
	"whale-desk/internal/domain"
	"whale-desk/internal/scoring"
	pgstore "whale-desk/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	input := flag.String("input", "", "JSON file with an array of wallet stats")
	asset := flag.String("asset", "BTC", "Asset to aggregate bias for")
	timeframe := flag.String("timeframe", "1h", "Bias timeframe")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "Persist the bias snapshot when set")
	flag.Parse()

	logger := log.New(os.Stderr, "[score] ", log.LstdFlags)

	if *input == "" {
		logger.Fatal("--input is required")
	}

	wallets, err := loadWallets(*input)
	if err != nil {
		logger.Fatalf("Failed to load wallet stats: %v", err)
	}
	if len(wallets) == 0 {
		logger.Fatal("No wallets in input file")
	}

	engine := scoring.MustNewEngine(scoring.DefaultWeights)

	fmt.Printf("%-24s %8s %8s %8s %8s %8s %8s\n",
		"WALLET", "CRED", "HIST", "SOPH", "CONS", "TIME", "RISK")
	for _, stats := range wallets {
		result := engine.ScoreWallet(stats)
		fmt.Printf("%-24s %8.2f %8.2f %8.2f %8.2f %8.2f %8.2f\n",
			result.WalletID,
			result.Credibility,
			result.Components.HistoricalPerformance,
			result.Components.TradingSophistication,
			result.Components.Consistency,
			result.Components.TimingQuality,
			result.Components.RiskManagement,
		)
	}

	aggregator := bias.NewAggregator(engine)
	biasResult := aggregator.Calculate(*asset, *timeframe, wallets)

	fmt.Printf("\nBias %s/%s: value=%.3f confidence=%.2f (%d wallets)\n",
		biasResult.Asset, biasResult.Timeframe, biasResult.Value, biasResult.Confidence, len(biasResult.Components))

	if *postgresDSN == "" {
		return
	}

	ctx := context.Background()
	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	store := pgstore.NewBiasStore(pool)
	if err := store.Insert(ctx, biasResult); err != nil {
		logger.Fatalf("Failed to persist bias snapshot: %v", err)
	}
	logger.Printf("Persisted bias snapshot for %s/%s", biasResult.Asset, biasResult.Timeframe)
}

// loadWallets reads wallet stats from a JSON array file.
func loadWallets(path string) ([]*domain.WalletStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var wallets []*domain.WalletStats
	if err := json.Unmarshal(data, &wallets); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return wallets, nil
}
