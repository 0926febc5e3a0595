package service

import (
	"context"
	"testing"
	"time"

	"solana-wallet-forensics/internal/domain/entity"
	domain_service "solana-wallet-forensics/internal/domain/service"
	"solana-wallet-forensics/internal/infrastructure/cache"
	"solana-wallet-forensics/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) domain_service.ForensicsService {
	t.Helper()
	log, err := logger.NewLogger("error", "development")
	require.NoError(t, err)

	return NewForensicsApplicationService(
		Components{
			GraphBuilder: domain_service.NewGraphBuilder(),
			PathAnalyzer: domain_service.NewPathAnalyzer(),
			Clusters:     domain_service.NewClusterEngine(nil),
			Entities:     domain_service.NewEntityPatternDetector(nil),
			Anomalies:    domain_service.NewAnomalyDetector(1000, nil),
			Funding:      domain_service.NewFundingAggregator(nil),
		},
		nil, nil, cache.NewMemoryResultRepository(), nil, log,
	)
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func record(sig, sender, receiver string, amount float64, at time.Time) entity.TransferRecord {
	unix := at.Unix()
	return entity.TransferRecord{
		Signature: sig,
		Sender:    strPtr(sender),
		Receiver:  strPtr(receiver),
		Amount:    f64Ptr(amount),
		BlockTime: &unix,
	}
}

func TestAnalyzeWallet_AssemblesFullReport(t *testing.T) {
	svc := newTestService(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var transfers []*entity.TransferRecord
	for i, sig := range []string{"sig1", "sig2", "sig3"} {
		r := record(sig, "funder", "focal", 5.0, base.Add(time.Duration(i)*time.Second))
		transfers = append(transfers, &r)
	}

	report, err := svc.AnalyzeWallet(context.Background(), "focal", transfers)
	require.NoError(t, err)

	assert.Equal(t, "focal", report.FocalAddress)
	assert.Equal(t, 3, report.TransferCount)
	require.NotNil(t, report.Graph)
	assert.Len(t, report.Graph.Nodes, 2)
	require.NotNil(t, report.Entity)
	require.NotNil(t, report.Funding)
	assert.Equal(t, 15.0, report.Funding.TotalInflow)
	assert.NotEmpty(t, report.Clusters)
	assert.False(t, report.GeneratedAt.IsZero())

	// Three transfers seconds apart trip the burst timing quick check.
	assert.NotEmpty(t, report.Anomalies)
	assert.Greater(t, report.AnomalyScore, 0.0)
}

func TestAnalyzeWallet_EmptyTransfers(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.AnalyzeWallet(context.Background(), "focal", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.TransferCount)
	assert.Empty(t, report.Graph.Nodes)
	assert.Empty(t, report.Paths)
	assert.Empty(t, report.Clusters)
	assert.Empty(t, report.Anomalies)
	assert.Zero(t, report.AnomalyScore)
	assert.Equal(t, entity.EntityTypeUnknown, report.Entity.EntityType)
	assert.Zero(t, report.Funding.TotalInflow)
}

func TestAnalyzeWallet_EmptyAddressRejected(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AnalyzeWallet(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestProcessTransferBatch_GroupsByWallet(t *testing.T) {
	svc := newTestService(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	events := []*entity.TransferEvent{
		{Wallet: "walletA", Transfer: record("sig1", "x", "walletA", 1.0, base)},
		{Wallet: "walletB", Transfer: record("sig2", "y", "walletB", 2.0, base)},
		{Wallet: "walletA", Transfer: record("sig3", "z", "walletA", 3.0, base.Add(time.Minute))},
		nil,
		{Wallet: "", Transfer: record("sig4", "q", "r", 4.0, base)},
	}

	require.NoError(t, svc.ProcessTransferBatch(context.Background(), events))
}

func TestProcessTransferBatch_CancelledContext(t *testing.T) {
	svc := newTestService(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []*entity.TransferEvent{
		{Wallet: "walletA", Transfer: record("sig1", "x", "walletA", 1.0, base)},
	}
	assert.ErrorIs(t, svc.ProcessTransferBatch(ctx, events), context.Canceled)
}
