package repository

import (
	"context"

	"solana-wallet-forensics/internal/domain/entity"
)

// GraphRepository defines persistence for relationship graphs. Persistence
// mirrors in-memory analysis output; the analytics core never reads from it
// mid-computation.
type GraphRepository interface {
	// UpsertNode creates or updates an address node. The node kind is only
	// written on creation; an existing node keeps its original kind.
	UpsertNode(ctx context.Context, node *entity.GraphNode) error

	// UpsertEdges writes the weighted transfer edges of a node.
	UpsertEdges(ctx context.Context, node *entity.GraphNode) error

	// GetNode retrieves a node by address.
	GetNode(ctx context.Context, address string) (*entity.GraphNode, error)

	// GetNeighbors retrieves the addresses adjacent to the given one.
	GetNeighbors(ctx context.Context, address string, limit int) ([]string, error)
}

// EntityRepository defines persistence for per-address entity analyses.
type EntityRepository interface {
	// SaveEntityAnalysis stores or replaces the analysis for an address.
	SaveEntityAnalysis(ctx context.Context, analysis *entity.EntityAnalysis) error

	// GetEntityAnalysis retrieves the stored analysis for an address.
	GetEntityAnalysis(ctx context.Context, address string) (*entity.EntityAnalysis, error)

	// GetHighRiskEntities lists stored analyses with risk score at or above
	// the given floor, ordered descending.
	GetHighRiskEntities(ctx context.Context, minRisk float64, limit int) ([]*entity.EntityAnalysis, error)
}
