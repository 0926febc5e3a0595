package database

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-wallet-forensics/internal/domain/entity"
	"solana-wallet-forensics/internal/domain/repository"
	"solana-wallet-forensics/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4JEntityRepository implements EntityRepository interface. Patterns and
// stats are stored as JSON properties; risk score and entity type are
// first-class properties so they can be indexed and queried.
type Neo4JEntityRepository struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JEntityRepository creates a new Neo4J entity repository
func NewNeo4JEntityRepository(client *Neo4JClient, logger *logger.Logger) repository.EntityRepository {
	return &Neo4JEntityRepository{
		client: client,
		logger: logger.WithComponent("neo4j-entity-repo"),
	}
}

// SaveEntityAnalysis stores or replaces the analysis for an address
func (r *Neo4JEntityRepository) SaveEntityAnalysis(ctx context.Context, analysis *entity.EntityAnalysis) error {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	patternsJSON, err := json.Marshal(analysis.Patterns)
	if err != nil {
		return fmt.Errorf("failed to marshal patterns: %w", err)
	}
	statsJSON, err := json.Marshal(analysis.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	query := `
		MERGE (e:EntityAnalysis {address: $address})
		SET
			e.entity_type = $entity_type,
			e.risk_score = $risk_score,
			e.patterns = $patterns,
			e.stats = $stats
	`

	params := map[string]interface{}{
		"address":     analysis.Address,
		"entity_type": string(analysis.EntityType),
		"risk_score":  analysis.RiskScore,
		"patterns":    string(patternsJSON),
		"stats":       string(statsJSON),
	}

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})

	if err != nil {
		return fmt.Errorf("failed to save entity analysis: %w", err)
	}

	return nil
}

// GetEntityAnalysis retrieves the stored analysis for an address
func (r *Neo4JEntityRepository) GetEntityAnalysis(ctx context.Context, address string) (*entity.EntityAnalysis, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (e:EntityAnalysis {address: $address})
		RETURN e.address, e.entity_type, e.risk_score, e.patterns, e.stats
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]interface{}{"address": address})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get entity analysis: %w", err)
	}

	records := result.(neo4j.ResultWithContext)
	if !records.Next(ctx) {
		return nil, fmt.Errorf("entity analysis not found: %s", address)
	}

	return r.recordToAnalysis(records.Record().Values)
}

// GetHighRiskEntities lists stored analyses with risk score at or above the
// given floor, ordered descending.
func (r *Neo4JEntityRepository) GetHighRiskEntities(ctx context.Context, minRisk float64, limit int) ([]*entity.EntityAnalysis, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (e:EntityAnalysis)
		WHERE e.risk_score >= $min_risk
		RETURN e.address, e.entity_type, e.risk_score, e.patterns, e.stats
		ORDER BY e.risk_score DESC
		LIMIT $limit
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]interface{}{
			"min_risk": minRisk,
			"limit":    limit,
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get high risk entities: %w", err)
	}

	var analyses []*entity.EntityAnalysis
	records := result.(neo4j.ResultWithContext)

	for records.Next(ctx) {
		analysis, err := r.recordToAnalysis(records.Record().Values)
		if err != nil {
			r.logger.Warn("Skipping malformed entity analysis record", zap.Error(err))
			continue
		}
		analyses = append(analyses, analysis)
	}

	return analyses, nil
}

func (r *Neo4JEntityRepository) recordToAnalysis(values []interface{}) (*entity.EntityAnalysis, error) {
	analysis := &entity.EntityAnalysis{
		Address:    values[0].(string),
		EntityType: entity.PatternCategory(values[1].(string)),
		RiskScore:  values[2].(float64),
	}

	if raw, ok := values[3].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &analysis.Patterns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal patterns: %w", err)
		}
	}
	if raw, ok := values[4].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &analysis.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
		}
	}

	return analysis, nil
}
