package service

import (
	"fmt"
	"testing"
	"time"

	"solana-wallet-forensics/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundingAggregator_InflowOutflowAndNet(t *testing.T) {
	aggregator := NewFundingAggregator(nil)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	transfers := []*entity.TransferRecord{
		transfer("sig-in", "sourceA", "focal", 100.0, base),
		transfer("sig-out", "focal", "destB", 30.0, base.Add(time.Hour)),
	}

	analysis := aggregator.Aggregate("focal", transfers)

	assert.Equal(t, 100.0, analysis.TotalInflow)
	assert.Equal(t, 30.0, analysis.TotalOutflow)
	assert.Equal(t, 70.0, analysis.NetBalance)

	require.NotNil(t, analysis.FirstDeposit)
	assert.Equal(t, "sig-in", analysis.FirstDeposit.Signature)
	assert.Equal(t, "sourceA", analysis.FirstDeposit.Sender)
	assert.Equal(t, 100.0, analysis.FirstDeposit.Amount)

	require.Len(t, analysis.TopSources, 1)
	assert.Equal(t, "sourceA", analysis.TopSources[0].Address)
	assert.Equal(t, entity.ConfidenceHigh, analysis.TopSources[0].Confidence)

	require.Len(t, analysis.Timeline, 2)
	assert.Equal(t, 100.0, analysis.Timeline[0].Balance)
	assert.Equal(t, -30.0, analysis.Timeline[1].Delta)
	assert.Equal(t, 70.0, analysis.Timeline[1].Balance)
}

func TestFundingAggregator_ConfidenceTiersFromShare(t *testing.T) {
	aggregator := NewFundingAggregator(nil)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 60%, 30%, and 10% of total inflow.
	transfers := []*entity.TransferRecord{
		transfer("sig1", "whale", "focal", 60.0, base),
		transfer("sig2", "mid", "focal", 30.0, base.Add(time.Minute)),
		transfer("sig3", "small", "focal", 10.0, base.Add(2*time.Minute)),
	}

	analysis := aggregator.Aggregate("focal", transfers)
	require.Len(t, analysis.TopSources, 3)

	assert.Equal(t, "whale", analysis.TopSources[0].Address)
	assert.Equal(t, entity.ConfidenceHigh, analysis.TopSources[0].Confidence)
	assert.Equal(t, entity.ConfidenceMedium, analysis.TopSources[1].Confidence)
	assert.Equal(t, entity.ConfidenceLow, analysis.TopSources[2].Confidence)
}

func TestFundingAggregator_TopSourcesCappedAtFive(t *testing.T) {
	aggregator := NewFundingAggregator(nil)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var transfers []*entity.TransferRecord
	for i := 0; i < 8; i++ {
		transfers = append(transfers,
			transfer(fmt.Sprintf("sig%d", i), fmt.Sprintf("source%d", i), "focal", float64(i+1), base.Add(time.Duration(i)*time.Minute)))
	}

	analysis := aggregator.Aggregate("focal", transfers)
	require.Len(t, analysis.TopSources, 5)
	// Largest contributor first.
	assert.Equal(t, "source7", analysis.TopSources[0].Address)
	assert.Equal(t, 8.0, analysis.TopSources[0].Amount)
}

func TestFundingAggregator_SkipsUnusableAmounts(t *testing.T) {
	aggregator := NewFundingAggregator(nil)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	missing := &entity.TransferRecord{
		Signature: "sig-missing",
		Sender:    strPtr("sourceA"),
		Receiver:  strPtr("focal"),
		BlockTime: timePtr(base),
	}
	zero := transfer("sig-zero", "sourceA", "focal", 0, base.Add(time.Minute))
	good := transfer("sig-good", "sourceA", "focal", 5.0, base.Add(2*time.Minute))

	analysis := aggregator.Aggregate("focal", []*entity.TransferRecord{missing, zero, good})

	assert.Equal(t, 5.0, analysis.TotalInflow)
	require.Len(t, analysis.Timeline, 1)
	assert.Equal(t, "sig-good", analysis.Timeline[0].Signature)
	require.NotNil(t, analysis.FirstDeposit)
	assert.Equal(t, "sig-good", analysis.FirstDeposit.Signature)
}

func TestFundingAggregator_KnownSourceGetsLabel(t *testing.T) {
	labels := entity.LabelRegistry{"exchange-wallet": "Binance Hot Wallet"}
	aggregator := NewFundingAggregator(labels)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	analysis := aggregator.Aggregate("focal", []*entity.TransferRecord{
		transfer("sig1", "exchange-wallet", "focal", 10.0, base),
	})

	require.Len(t, analysis.TopSources, 1)
	assert.Equal(t, "Binance Hot Wallet", analysis.TopSources[0].Label)
}

func TestFundingAggregator_EmptyInput(t *testing.T) {
	analysis := NewFundingAggregator(nil).Aggregate("focal", nil)
	require.NotNil(t, analysis)
	assert.Zero(t, analysis.TotalInflow)
	assert.Zero(t, analysis.TotalOutflow)
	assert.Zero(t, analysis.NetBalance)
	assert.Nil(t, analysis.FirstDeposit)
	assert.Empty(t, analysis.TopSources)
	assert.Empty(t, analysis.Timeline)
}
