package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	app_service "solana-wallet-forensics/internal/application/service"
	domain_service "solana-wallet-forensics/internal/domain/service"
	"solana-wallet-forensics/internal/infrastructure/config"
	"solana-wallet-forensics/internal/infrastructure/logger"
	solanarpc "solana-wallet-forensics/internal/infrastructure/solana"

	"go.uber.org/zap"
)

// One-shot analysis of a single wallet over RPC. Fetches the transfer
// history, runs the full pipeline in-process without persistence, and
// prints the report as JSON.
func main() {
	wallet := flag.String("wallet", "", "wallet address to analyze")
	limit := flag.Int("limit", 0, "max transfers to fetch (0 uses config)")
	flag.Parse()

	if *wallet == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -wallet <address> [-limit n]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source := solanarpc.NewClient(&cfg.Solana, nil, log)

	fetchLimit := *limit
	if fetchLimit <= 0 {
		fetchLimit = cfg.Analysis.MaxTransfers
	}
	transfers, err := source.FetchTransfers(ctx, *wallet, fetchLimit)
	if err != nil {
		log.Error("Failed to fetch transfers", zap.Error(err))
		os.Exit(1)
	}

	formatter := domain_service.NewFormatter(cfg.Analysis.SOLPriceUSD)
	forensics := app_service.NewForensicsApplicationService(
		app_service.Components{
			GraphBuilder: domain_service.NewGraphBuilder(),
			PathAnalyzer: domain_service.NewPathAnalyzer(),
			Clusters:     domain_service.NewClusterEngine(formatter),
			Entities:     domain_service.NewEntityPatternDetector(domain_service.DefaultProgramRegistry()),
			Anomalies:    domain_service.NewAnomalyDetector(cfg.Analysis.LargeAmountThreshold, domain_service.DefaultHighRiskPrograms()),
			Funding:      domain_service.NewFundingAggregator(domain_service.DefaultLabelRegistry()),
		},
		nil, nil, nil, nil, log,
	)

	report, err := forensics.AnalyzeWallet(ctx, *wallet, transfers)
	if err != nil {
		log.Error("Analysis failed", zap.Error(err))
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		log.Error("Failed to encode report", zap.Error(err))
		os.Exit(1)
	}
}
