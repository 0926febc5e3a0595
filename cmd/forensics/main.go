package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	app_service "solana-wallet-forensics/internal/application/service"
	"solana-wallet-forensics/internal/domain/entity"
	"solana-wallet-forensics/internal/domain/repository"
	domain_service "solana-wallet-forensics/internal/domain/service"
	"solana-wallet-forensics/internal/infrastructure/cache"
	"solana-wallet-forensics/internal/infrastructure/config"
	"solana-wallet-forensics/internal/infrastructure/database"
	"solana-wallet-forensics/internal/infrastructure/logger"
	"solana-wallet-forensics/internal/infrastructure/messaging"
	"solana-wallet-forensics/internal/infrastructure/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Create FX application
	app := fx.New(
		// Provide dependencies
		fx.Supply(cfg),
		fx.Supply(log),
		fx.Supply(&cfg.NATS),
		fx.Supply(&cfg.Neo4J),
		fx.Provide(func() *zap.Logger { return log.Logger }),

		// Infrastructure providers
		fx.Provide(
			func() *metrics.Metrics { return metrics.NewMetrics(nil) },
			database.NewNeo4JClient,
			database.NewNeo4JGraphRepository,
			database.NewNeo4JEntityRepository,
			cache.NewMemoryResultRepository,
			messaging.NewNATSConsumer,
		),

		// Domain services
		fx.Provide(
			func(cfg *config.Config) *domain_service.Formatter {
				return domain_service.NewFormatter(cfg.Analysis.SOLPriceUSD)
			},
			domain_service.NewGraphBuilder,
			domain_service.NewPathAnalyzer,
			domain_service.NewClusterEngine,
			func() *domain_service.EntityPatternDetector {
				return domain_service.NewEntityPatternDetector(domain_service.DefaultProgramRegistry())
			},
			func(cfg *config.Config) *domain_service.AnomalyDetector {
				return domain_service.NewAnomalyDetector(cfg.Analysis.LargeAmountThreshold, domain_service.DefaultHighRiskPrograms())
			},
			func() *domain_service.FundingAggregator {
				return domain_service.NewFundingAggregator(domain_service.DefaultLabelRegistry())
			},
		),

		// Application providers
		fx.Provide(
			func(
				graphBuilder *domain_service.GraphBuilder,
				pathAnalyzer *domain_service.PathAnalyzer,
				clusters *domain_service.ClusterEngine,
				entities *domain_service.EntityPatternDetector,
				anomalies *domain_service.AnomalyDetector,
				funding *domain_service.FundingAggregator,
				graphRepo repository.GraphRepository,
				entityRepo repository.EntityRepository,
				results repository.AnalysisResultRepository,
				m *metrics.Metrics,
				log *logger.Logger,
			) domain_service.ForensicsService {
				return app_service.NewForensicsApplicationService(
					app_service.Components{
						GraphBuilder: graphBuilder,
						PathAnalyzer: pathAnalyzer,
						Clusters:     clusters,
						Entities:     entities,
						Anomalies:    anomalies,
						Funding:      funding,
					},
					graphRepo, entityRepo, results, m, log,
				)
			},
		),

		// Lifecycle hooks
		fx.Invoke(startForensics),
		fx.Invoke(startHealthServer),

		// Configure logging
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down application...")

	// Stop the application
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application gracefully", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped successfully")
}

// startForensics wires the event consumer to the analysis pipeline
func startForensics(
	lifecycle fx.Lifecycle,
	consumer *messaging.NATSConsumer,
	forensicsService domain_service.ForensicsService,
	log *zap.Logger,
	cfg *config.Config,
	neo4jClient *database.Neo4JClient,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting forensics service...")

			if cfg.Neo4J.Enabled {
				log.Info("Connecting to Neo4J database")
				if err := neo4jClient.Connect(ctx); err != nil {
					return fmt.Errorf("failed to connect to Neo4J: %w", err)
				}
			}

			log.Info("NATS Configuration",
				zap.String("url", cfg.NATS.URL),
				zap.String("stream_name", cfg.NATS.StreamName),
				zap.String("subject_prefix", cfg.NATS.SubjectPrefix),
				zap.Bool("enabled", cfg.NATS.Enabled),
			)

			// Connect to NATS
			if err := consumer.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to NATS: %w", err)
			}

			// Start message processing
			go processEvents(ctx, consumer, forensicsService, log, cfg)

			log.Info("Forensics service started successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping forensics service...")
			if cfg.Neo4J.Enabled {
				if err := neo4jClient.Close(ctx); err != nil {
					log.Error("Failed to close Neo4J connection", zap.Error(err))
				}
			}
			return consumer.Disconnect()
		},
	})
}

// startHealthServer starts the health check and metrics server
func startHealthServer(
	lifecycle fx.Lifecycle,
	cfg *config.Config,
	logger *logger.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting health server...", zap.Int("port", cfg.App.HTTPPort))

			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status":"ok"}`))
			})
			if cfg.Metrics.Enabled {
				mux.Handle("/metrics", promhttp.HandlerFor(
					prometheus.DefaultGatherer,
					promhttp.HandlerOpts{},
				))
			}

			server := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.App.HTTPPort),
				Handler: mux,
			}

			// Start server in background
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Health server error", zap.Error(err))
				}
			}()

			logger.Info("Health server started successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping health server...")
			return nil
		},
	})
}

// processEvents drains the consumer channel into batches and fans them out
// to a worker pool.
func processEvents(
	ctx context.Context,
	consumer *messaging.NATSConsumer,
	forensicsService domain_service.ForensicsService,
	logger *zap.Logger,
	cfg *config.Config,
) {
	msgChan := consumer.GetMessageChannel()
	batch := make([]*entity.TransferEvent, 0, cfg.App.BatchSize)
	ticker := time.NewTicker(5 * time.Second) // Flush batch every 5 seconds
	defer ticker.Stop()

	type batchJob struct {
		events []*entity.TransferEvent
	}
	jobChan := make(chan batchJob, cfg.App.WorkerPoolSize)
	var wg sync.WaitGroup

	// Start worker pool
	for i := 0; i < cfg.App.WorkerPoolSize; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			logger.Info("Starting batch processing worker", zap.Int("worker_id", workerID))

			for job := range jobChan {
				if err := forensicsService.ProcessTransferBatch(ctx, job.events); err != nil {
					logger.Error("Failed to process transfer batch",
						zap.Error(err),
						zap.Int("worker_id", workerID),
						zap.Int("batch_size", len(job.events)))
				} else {
					logger.Info("Successfully processed batch",
						zap.Int("worker_id", workerID),
						zap.Int("batch_size", len(job.events)))
				}
			}
		}(i)
	}

	flush := func() {
		if len(batch) == 0 {
			return
		}
		events := make([]*entity.TransferEvent, len(batch))
		copy(events, batch)
		jobChan <- batchJob{events: events}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			close(jobChan)
			wg.Wait()
			return

		case event := <-msgChan:
			if event == nil {
				// Channel closed, clean up
				flush()
				close(jobChan)
				wg.Wait()
				return
			}

			batch = append(batch, event)
			if len(batch) >= cfg.App.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}
