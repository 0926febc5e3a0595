package service

import (
	"context"

	"solana-wallet-forensics/internal/domain/entity"
)

// ForensicsService defines the orchestrated analysis operations exposed to
// transports and tooling.
type ForensicsService interface {
	// AnalyzeWallet runs the full pipeline over the transfers of one focal
	// address and assembles the report.
	AnalyzeWallet(ctx context.Context, focalAddress string, transfers []*entity.TransferRecord) (*entity.WalletReport, error)

	// ProcessTransferBatch ingests a batch of transfer events, grouping them
	// by focal wallet and running an analysis per group.
	ProcessTransferBatch(ctx context.Context, events []*entity.TransferEvent) error
}

// TransferSource is the acquisition collaborator: it materializes the
// bounded transfer list the analytics run over. Implementations must stop
// issuing requests promptly once ctx is cancelled.
type TransferSource interface {
	FetchTransfers(ctx context.Context, address string, limit int) ([]*entity.TransferRecord, error)
}
