package service

import (
	"context"
	"fmt"
	"time"

	"solana-wallet-forensics/internal/domain/entity"
	"solana-wallet-forensics/internal/domain/repository"
	"solana-wallet-forensics/internal/domain/service"
	"solana-wallet-forensics/internal/infrastructure/logger"
	"solana-wallet-forensics/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// ForensicsApplicationService wires the analytics components into the full
// pipeline and mirrors results to persistence. Every component consumes the
// same immutable transfer list; persistence failures degrade to warnings
// and never fail the analysis.
type ForensicsApplicationService struct {
	graphBuilder *service.GraphBuilder
	pathAnalyzer *service.PathAnalyzer
	clusters     *service.ClusterEngine
	entities     *service.EntityPatternDetector
	anomalies    *service.AnomalyDetector
	funding      *service.FundingAggregator

	graphRepo  repository.GraphRepository
	entityRepo repository.EntityRepository
	results    repository.AnalysisResultRepository

	metrics *metrics.Metrics
	logger  *logger.Logger
}

// Components groups the analytics services for construction.
type Components struct {
	GraphBuilder *service.GraphBuilder
	PathAnalyzer *service.PathAnalyzer
	Clusters     *service.ClusterEngine
	Entities     *service.EntityPatternDetector
	Anomalies    *service.AnomalyDetector
	Funding      *service.FundingAggregator
}

// NewForensicsApplicationService creates the orchestrating service.
// graphRepo and entityRepo may be nil when persistence is disabled;
// results may be nil to disable cross-call memoization.
func NewForensicsApplicationService(
	components Components,
	graphRepo repository.GraphRepository,
	entityRepo repository.EntityRepository,
	results repository.AnalysisResultRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) service.ForensicsService {
	return &ForensicsApplicationService{
		graphBuilder: components.GraphBuilder,
		pathAnalyzer: components.PathAnalyzer,
		clusters:     components.Clusters,
		entities:     components.Entities,
		anomalies:    components.Anomalies,
		funding:      components.Funding,
		graphRepo:    graphRepo,
		entityRepo:   entityRepo,
		results:      results,
		metrics:      m,
		logger:       log.WithComponent("forensics-service"),
	}
}

// AnalyzeWallet runs the full pipeline over the transfers of one focal
// address and assembles the report.
func (s *ForensicsApplicationService) AnalyzeWallet(ctx context.Context, focalAddress string, transfers []*entity.TransferRecord) (*entity.WalletReport, error) {
	if focalAddress == "" {
		return nil, fmt.Errorf("focal address is empty")
	}
	start := time.Now()
	log := s.logger.WithWallet(focalAddress)
	log.Info("Analyzing wallet", zap.Int("transfers", len(transfers)))

	graph := s.graphBuilder.Build(transfers)
	paths := s.pathAnalyzer.FindSignificantPaths(graph)
	clusters := s.clusters.Cluster(transfers, focalAddress)
	entityAnalysis := s.entities.AnalyzeEntity(focalAddress, transfers, graph)
	anomalies := s.anomalies.Detect(transfers)
	anomalies = append(anomalies, s.anomalies.QuickChecks(transfers)...)
	funding := s.funding.Aggregate(focalAddress, transfers)

	report := &entity.WalletReport{
		FocalAddress:  focalAddress,
		TransferCount: len(transfers),
		Graph:         graph,
		Paths:         paths,
		Clusters:      clusters,
		Anomalies:     anomalies,
		AnomalyScore:  service.AggregateScore(anomalies),
		Entity:        entityAnalysis,
		Funding:       funding,
		GeneratedAt:   time.Now().UTC(),
	}

	for _, a := range anomalies {
		s.metrics.RecordAnomaly(string(a.Kind))
	}
	for _, c := range clusters {
		s.metrics.RecordCluster(string(c.Kind))
	}

	if s.results != nil {
		if err := s.results.Merge(ctx, report); err != nil {
			log.Warn("Failed to merge report into result cache", zap.Error(err))
		}
	}
	s.persist(ctx, log, report)

	s.metrics.RecordAnalysis("success", time.Since(start).Seconds())
	log.Info("Wallet analysis complete",
		zap.Int("paths", len(paths)),
		zap.Int("clusters", len(clusters)),
		zap.Int("anomalies", len(anomalies)),
		zap.Float64("anomaly_score", report.AnomalyScore),
		zap.Float64("entity_risk", entityAnalysis.RiskScore),
		zap.String("entity_type", string(entityAnalysis.EntityType)))
	return report, nil
}

// ProcessTransferBatch groups events by focal wallet and runs an analysis
// per group. A failing wallet does not abort the remaining groups.
func (s *ForensicsApplicationService) ProcessTransferBatch(ctx context.Context, events []*entity.TransferEvent) error {
	s.logger.Info("Processing transfer batch", zap.Int("count", len(events)))

	byWallet := make(map[string][]*entity.TransferRecord)
	for _, event := range events {
		if event == nil || event.Wallet == "" {
			continue
		}
		transfer := event.Transfer
		byWallet[event.Wallet] = append(byWallet[event.Wallet], &transfer)
	}

	var failed int
	for wallet, transfers := range byWallet {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.AnalyzeWallet(ctx, wallet, transfers); err != nil {
			failed++
			s.metrics.RecordAnalysis("error", 0)
			s.logger.Error("Failed to analyze wallet from batch",
				zap.String("wallet", wallet),
				zap.Error(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("batch analysis failed for %d of %d wallets", failed, len(byWallet))
	}
	return nil
}

// persist mirrors the graph and entity analysis into the repositories.
func (s *ForensicsApplicationService) persist(ctx context.Context, log *logger.Logger, report *entity.WalletReport) {
	if s.graphRepo != nil {
		for _, node := range report.Graph.Nodes {
			if err := s.graphRepo.UpsertNode(ctx, node); err != nil {
				log.Warn("Failed to persist graph node",
					zap.String("address", node.Address),
					zap.Error(err))
				continue
			}
			if len(node.Outgoing) > 0 {
				if err := s.graphRepo.UpsertEdges(ctx, node); err != nil {
					log.Warn("Failed to persist graph edges",
						zap.String("address", node.Address),
						zap.Error(err))
				}
			}
		}
	}
	if s.entityRepo != nil {
		if err := s.entityRepo.SaveEntityAnalysis(ctx, report.Entity); err != nil {
			log.Warn("Failed to persist entity analysis", zap.Error(err))
		}
	}
}
