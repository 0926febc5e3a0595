package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"solana-wallet-forensics/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(focal string, at time.Time) *entity.WalletReport {
	return &entity.WalletReport{
		FocalAddress: focal,
		Graph:        entity.NewTransferGraph(),
		GeneratedAt:  at,
	}
}

func TestMemoryResultRepository_GetAfterMerge(t *testing.T) {
	repo := NewMemoryResultRepository()
	ctx := context.Background()

	_, ok := repo.Get(ctx, "wallet")
	assert.False(t, ok)

	require.NoError(t, repo.Merge(ctx, report("wallet", time.Now())))

	cached, ok := repo.Get(ctx, "wallet")
	require.True(t, ok)
	assert.Equal(t, "wallet", cached.FocalAddress)
}

func TestMemoryResultRepository_MergeUnionsGraph(t *testing.T) {
	repo := NewMemoryResultRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := report("wallet", base)
	node := first.Graph.Upsert("alice", entity.NodeKindWallet)
	node.Touch("sig1")
	node.Outgoing["bob"] = 2
	require.NoError(t, repo.Merge(ctx, first))

	second := report("wallet", base.Add(time.Hour))
	node = second.Graph.Upsert("alice", entity.NodeKindWallet)
	node.Touch("sig2")
	node.Outgoing["bob"] = 1
	second.Graph.Upsert("carol", entity.NodeKindWallet)
	require.NoError(t, repo.Merge(ctx, second))

	cached, ok := repo.Get(ctx, "wallet")
	require.True(t, ok)

	alice := cached.Graph.Node("alice")
	require.NotNil(t, alice)
	assert.Len(t, alice.Signatures, 2)
	assert.Contains(t, alice.Signatures, "sig1")
	assert.Contains(t, alice.Signatures, "sig2")
	// Larger observed edge count wins.
	assert.Equal(t, 2, alice.Outgoing["bob"])
	assert.NotNil(t, cached.Graph.Node("carol"))
	assert.Equal(t, base.Add(time.Hour), cached.GeneratedAt)
}

func TestMemoryResultRepository_MergeKeepsEarliestFirstDeposit(t *testing.T) {
	repo := NewMemoryResultRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := report("wallet", base)
	first.Funding = &entity.FundingAnalysis{
		FirstDeposit: &entity.FirstDeposit{Signature: "sig-old", Timestamp: base},
	}
	require.NoError(t, repo.Merge(ctx, first))

	second := report("wallet", base.Add(time.Hour))
	second.Funding = &entity.FundingAnalysis{
		FirstDeposit: &entity.FirstDeposit{Signature: "sig-new", Timestamp: base.Add(time.Hour)},
	}
	require.NoError(t, repo.Merge(ctx, second))

	cached, ok := repo.Get(ctx, "wallet")
	require.True(t, ok)
	require.NotNil(t, cached.Funding.FirstDeposit)
	assert.Equal(t, "sig-old", cached.Funding.FirstDeposit.Signature)
}

func TestMemoryResultRepository_Invalidate(t *testing.T) {
	repo := NewMemoryResultRepository()
	ctx := context.Background()

	require.NoError(t, repo.Merge(ctx, report("wallet", time.Now())))
	repo.Invalidate(ctx, "wallet")

	_, ok := repo.Get(ctx, "wallet")
	assert.False(t, ok)
}

func TestMemoryResultRepository_ConcurrentMerges(t *testing.T) {
	repo := NewMemoryResultRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := report("wallet", base.Add(time.Duration(i)*time.Second))
			node := r.Graph.Upsert("alice", entity.NodeKindWallet)
			node.Touch(fmt.Sprintf("sig%d", i))
			assert.NoError(t, repo.Merge(ctx, r))
			repo.Get(ctx, "wallet")
		}(i)
	}
	wg.Wait()

	cached, ok := repo.Get(ctx, "wallet")
	require.True(t, ok)
	assert.Len(t, cached.Graph.Node("alice").Signatures, 32)
}
