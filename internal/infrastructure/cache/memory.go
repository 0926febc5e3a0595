package cache

import (
	"context"
	"sync"

	"solana-wallet-forensics/internal/domain/entity"
	"solana-wallet-forensics/internal/domain/repository"
)

// MemoryResultRepository is an in-process AnalysisResultRepository. Entries
// are replaced wholesale under the lock so readers never observe a partially
// merged report.
type MemoryResultRepository struct {
	mu      sync.RWMutex
	reports map[string]*entity.WalletReport
}

// NewMemoryResultRepository creates an empty result cache.
func NewMemoryResultRepository() repository.AnalysisResultRepository {
	return &MemoryResultRepository{
		reports: make(map[string]*entity.WalletReport),
	}
}

// Get returns the cached report for a focal address, if present.
func (r *MemoryResultRepository) Get(ctx context.Context, focalAddress string) (*entity.WalletReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	report, ok := r.reports[focalAddress]
	return report, ok
}

// Merge folds a fresh report into the cached entry for its focal address.
// Scalar results from the fresh report replace the prior ones; graph node
// signature sets union and an existing node keeps its original kind.
func (r *MemoryResultRepository) Merge(ctx context.Context, report *entity.WalletReport) error {
	if report == nil || report.FocalAddress == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prior, exists := r.reports[report.FocalAddress]
	if !exists {
		r.reports[report.FocalAddress] = report
		return nil
	}

	merged := *report
	merged.Graph = mergeGraphs(prior.Graph, report.Graph)
	if prior.Funding != nil && merged.Funding != nil {
		if earlier := earliestFirstDeposit(prior.Funding, merged.Funding); earlier != nil {
			merged.Funding.FirstDeposit = earlier
		}
	}
	r.reports[report.FocalAddress] = &merged
	return nil
}

// Invalidate drops the cached entry for a focal address.
func (r *MemoryResultRepository) Invalidate(ctx context.Context, focalAddress string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reports, focalAddress)
}

// earliestFirstDeposit picks the older of two first-deposit observations.
func earliestFirstDeposit(prior, fresh *entity.FundingAnalysis) *entity.FirstDeposit {
	if prior.FirstDeposit == nil {
		return fresh.FirstDeposit
	}
	if fresh.FirstDeposit == nil {
		return prior.FirstDeposit
	}
	if prior.FirstDeposit.Timestamp.Before(fresh.FirstDeposit.Timestamp) {
		return prior.FirstDeposit
	}
	return fresh.FirstDeposit
}

// mergeGraphs unions two wallet graphs. Signature sets union per node; edge
// counts take the larger observation; node kind stays as first recorded.
func mergeGraphs(prior, fresh *entity.TransferGraph) *entity.TransferGraph {
	if prior == nil {
		return fresh
	}
	if fresh == nil {
		return prior
	}

	merged := entity.NewTransferGraph()
	for _, graph := range []*entity.TransferGraph{prior, fresh} {
		for addr, node := range graph.Nodes {
			target := merged.Upsert(addr, node.Kind)
			for sig := range node.Signatures {
				target.Touch(sig)
			}
			for counterparty, count := range node.Outgoing {
				if count > target.Outgoing[counterparty] {
					target.Outgoing[counterparty] = count
				}
			}
			for counterparty, count := range node.Incoming {
				if count > target.Incoming[counterparty] {
					target.Incoming[counterparty] = count
				}
			}
		}
	}
	return merged
}
