package repository

import (
	"context"

	"solana-wallet-forensics/internal/domain/entity"
)

// AnalysisResultRepository is the derived-result cache kept across analysis
// calls. The core itself stays pure; callers inject an implementation when
// they want cross-call memoization.
//
// Merge semantics are additive: signature sets union, earliest timestamps
// win, newer scalar results replace older ones. Readers must observe either
// a fully-prior or fully-updated entry, never a partial write.
type AnalysisResultRepository interface {
	// Get returns the cached report for a focal address, if present.
	Get(ctx context.Context, focalAddress string) (*entity.WalletReport, bool)

	// Merge folds a fresh report into the cached entry for its focal
	// address, creating the entry when absent.
	Merge(ctx context.Context, report *entity.WalletReport) error

	// Invalidate drops the cached entry for a focal address.
	Invalidate(ctx context.Context, focalAddress string)
}
