package database

import (
	"context"
	"fmt"

	"solana-wallet-forensics/internal/domain/entity"
	"solana-wallet-forensics/internal/domain/repository"
	"solana-wallet-forensics/internal/infrastructure/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4JGraphRepository implements GraphRepository interface
type Neo4JGraphRepository struct {
	client *Neo4JClient
	logger *logger.Logger
}

// NewNeo4JGraphRepository creates a new Neo4J graph repository
func NewNeo4JGraphRepository(client *Neo4JClient, logger *logger.Logger) repository.GraphRepository {
	return &Neo4JGraphRepository{
		client: client,
		logger: logger.WithComponent("neo4j-graph-repo"),
	}
}

// UpsertNode creates an address node or refreshes its counters. The node
// kind is only written on creation so an address classified once keeps
// its original kind.
func (r *Neo4JGraphRepository) UpsertNode(ctx context.Context, node *entity.GraphNode) error {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MERGE (a:Address {address: $address})
		ON CREATE SET
			a.kind = $kind,
			a.signature_count = $signature_count,
			a.out_degree = $out_degree,
			a.in_degree = $in_degree
		ON MATCH SET
			a.signature_count = $signature_count,
			a.out_degree = $out_degree,
			a.in_degree = $in_degree
	`

	params := map[string]interface{}{
		"address":         node.Address,
		"kind":            string(node.Kind),
		"signature_count": len(node.Signatures),
		"out_degree":      len(node.Outgoing),
		"in_degree":       len(node.Incoming),
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})

	if err != nil {
		return fmt.Errorf("failed to upsert address node: %w", err)
	}

	return nil
}

// UpsertEdges writes the weighted TRANSFERRED_TO edges leaving a node.
// Target nodes are created as bare addresses when missing so edges never
// dangle.
func (r *Neo4JGraphRepository) UpsertEdges(ctx context.Context, node *entity.GraphNode) error {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (from:Address {address: $from})
		MERGE (to:Address {address: $to})
		MERGE (from)-[r:TRANSFERRED_TO]->(to)
		SET r.transfer_count = $transfer_count
	`

	for target, count := range node.Outgoing {
		params := map[string]interface{}{
			"from":           node.Address,
			"to":             target,
			"transfer_count": count,
		}

		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, params)
		})
		if err != nil {
			return fmt.Errorf("failed to upsert edge %s -> %s: %w", node.Address, target, err)
		}
	}

	return nil
}

// GetNode retrieves a node by address
func (r *Neo4JGraphRepository) GetNode(ctx context.Context, address string) (*entity.GraphNode, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (a:Address {address: $address})
		OPTIONAL MATCH (a)-[out:TRANSFERRED_TO]->(target:Address)
		WITH a, collect({address: target.address, count: out.transfer_count}) as outgoing
		OPTIONAL MATCH (source:Address)-[in:TRANSFERRED_TO]->(a)
		RETURN a.address, a.kind, outgoing, collect({address: source.address, count: in.transfer_count}) as incoming
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]interface{}{"address": address})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get address node: %w", err)
	}

	records := result.(neo4j.ResultWithContext)
	if !records.Next(ctx) {
		return nil, fmt.Errorf("address not found: %s", address)
	}

	values := records.Record().Values

	node := &entity.GraphNode{
		Address:    values[0].(string),
		Kind:       entity.NodeKind(values[1].(string)),
		Signatures: make(map[string]struct{}),
		Outgoing:   make(map[string]int),
		Incoming:   make(map[string]int),
	}

	for _, raw := range values[2].([]interface{}) {
		edge := raw.(map[string]interface{})
		target, ok := edge["address"].(string)
		if !ok {
			continue
		}
		node.Outgoing[target] = int(edge["count"].(int64))
	}
	for _, raw := range values[3].([]interface{}) {
		edge := raw.(map[string]interface{})
		source, ok := edge["address"].(string)
		if !ok {
			continue
		}
		node.Incoming[source] = int(edge["count"].(int64))
	}

	return node, nil
}

// GetNeighbors retrieves the addresses adjacent to the given one, most
// heavily connected first.
func (r *Neo4JGraphRepository) GetNeighbors(ctx context.Context, address string, limit int) ([]string, error) {
	session := r.client.GetDriver().NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	query := `
		MATCH (a:Address {address: $address})-[r:TRANSFERRED_TO]-(other:Address)
		WITH other, sum(r.transfer_count) as weight
		RETURN other.address
		ORDER BY weight DESC
		LIMIT $limit
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]interface{}{
			"address": address,
			"limit":   limit,
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get neighbors: %w", err)
	}

	var neighbors []string
	records := result.(neo4j.ResultWithContext)

	for records.Next(ctx) {
		neighbors = append(neighbors, records.Record().Values[0].(string))
	}

	return neighbors, nil
}
