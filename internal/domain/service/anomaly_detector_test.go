package service

import (
	"fmt"
	"testing"
	"time"

	"solana-wallet-forensics/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anomaliesOfKind(anomalies []*entity.Anomaly, kind entity.AnomalyKind) []*entity.Anomaly {
	var out []*entity.Anomaly
	for _, a := range anomalies {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

func TestAnomalyDetector_UnusualAmountAfterStableHistory(t *testing.T) {
	detector := NewAnomalyDetector(0, nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Nine steady 1.0-unit transfers, then a 50-unit outlier.
	var transfers []*entity.TransferRecord
	for i := 0; i < 9; i++ {
		transfers = append(transfers,
			transfer(fmt.Sprintf("sig%d", i), "focal", "cp", 1.0, base.Add(time.Duration(i)*time.Hour)))
	}
	outlier := transfer("sig-outlier", "focal", "cp", 50.0, base.Add(9*time.Hour))
	transfers = append(transfers, outlier)

	anomalies := detector.Detect(transfers)

	unusual := anomaliesOfKind(anomalies, entity.AnomalyUnusualAmount)
	require.Len(t, unusual, 1)
	assert.Equal(t, "sig-outlier", unusual[0].Signature)
	assert.Equal(t, entity.SeverityHigh, unusual[0].Severity)

	// The same outlier also dwarfs the prior maximum.
	large := anomaliesOfKind(anomalies, entity.AnomalyLargeValueTransfer)
	require.Len(t, large, 1)
	assert.Equal(t, "sig-outlier", large[0].Signature)
}

func TestAnomalyDetector_InsufficientHistoryStaysSilent(t *testing.T) {
	detector := NewAnomalyDetector(0, nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Four samples of history are below every rule's floor, so even a
	// wild fifth amount cannot fire.
	transfers := []*entity.TransferRecord{
		transfer("sig0", "focal", "cp", 1.0, base),
		transfer("sig1", "focal", "cp", 1.0, base.Add(time.Hour)),
		transfer("sig2", "focal", "cp", 1.0, base.Add(2*time.Hour)),
		transfer("sig3", "focal", "cp", 1.0, base.Add(3*time.Hour)),
		transfer("sig4", "focal", "cp", 9000.0, base.Add(4*time.Hour)),
	}

	anomalies := detector.Detect(transfers)
	assert.Empty(t, anomaliesOfKind(anomalies, entity.AnomalyUnusualAmount))
}

func TestAnomalyDetector_RapidTransactions(t *testing.T) {
	detector := NewAnomalyDetector(0, nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Six transfers ten seconds apart: the sixth sees five prior inside
	// the trailing five-minute window.
	var transfers []*entity.TransferRecord
	for i := 0; i < 6; i++ {
		transfers = append(transfers,
			transfer(fmt.Sprintf("sig%d", i), "focal", "cp", 1.0, base.Add(time.Duration(i)*10*time.Second)))
	}

	rapid := anomaliesOfKind(detector.Detect(transfers), entity.AnomalyRapidTransactions)
	require.NotEmpty(t, rapid)
	assert.Equal(t, "sig5", rapid[0].Signature)
	assert.Equal(t, entity.SeverityMedium, rapid[0].Severity)
}

func TestAnomalyDetector_UnusualProgramNeedsDeepHistory(t *testing.T) {
	detector := NewAnomalyDetector(0, nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var transfers []*entity.TransferRecord
	for i := 0; i < 10; i++ {
		rec := transfer(fmt.Sprintf("sig%d", i), "focal", "cp", 1.0, base.Add(time.Duration(i)*time.Hour))
		rec.ProgramID = strPtr("familiar")
		transfers = append(transfers, rec)
	}
	odd := transfer("sig-odd", "focal", "cp", 1.0, base.Add(10*time.Hour))
	odd.ProgramID = strPtr("stranger")
	transfers = append(transfers, odd)

	unusual := anomaliesOfKind(detector.Detect(transfers), entity.AnomalyUnusualProgram)
	require.Len(t, unusual, 1)
	assert.Equal(t, "sig-odd", unusual[0].Signature)
}

func TestAnomalyDetector_NewCounterparty(t *testing.T) {
	detector := NewAnomalyDetector(0, nil)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var transfers []*entity.TransferRecord
	for i := 0; i < 5; i++ {
		transfers = append(transfers,
			transfer(fmt.Sprintf("sig%d", i), "focal", "regular", 1.0, base.Add(time.Duration(i)*time.Hour)))
	}
	transfers = append(transfers,
		transfer("sig-new", "focal", "stranger", 1.0, base.Add(5*time.Hour)))

	fresh := anomaliesOfKind(detector.Detect(transfers), entity.AnomalyNewCounterparty)
	require.Len(t, fresh, 1)
	assert.Equal(t, "sig-new", fresh[0].Signature)
	assert.Equal(t, entity.SeverityLow, fresh[0].Severity)
}

func TestAnomalyDetector_QuickChecks(t *testing.T) {
	detector := NewAnomalyDetector(100.0, map[string]string{"mixer-prog": "privacy mixer"})
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	over := transfer("sig-over", "focal", "cp", 250.0, base)
	risky := transfer("sig-risky", "focal", "cp", 1.0, base.Add(time.Minute))
	risky.ProgramID = strPtr("mixer-prog")

	burst1 := transfer("sig-b1", "focal", "cp", 1.0, base.Add(time.Hour))
	burst2 := transfer("sig-b2", "focal", "cp", 1.0, base.Add(time.Hour+3*time.Second))
	burst3 := transfer("sig-b3", "focal", "cp", 1.0, base.Add(time.Hour+6*time.Second))

	anomalies := detector.QuickChecks([]*entity.TransferRecord{over, risky, burst1, burst2, burst3})

	large := anomaliesOfKind(anomalies, entity.AnomalyLargeAmount)
	require.Len(t, large, 1)
	assert.Equal(t, "sig-over", large[0].Signature)

	highRisk := anomaliesOfKind(anomalies, entity.AnomalyHighRiskProgram)
	require.Len(t, highRisk, 1)
	assert.Equal(t, "sig-risky", highRisk[0].Signature)
	assert.Equal(t, entity.SeverityHigh, highRisk[0].Severity)

	burst := anomaliesOfKind(anomalies, entity.AnomalyBurstTiming)
	require.Len(t, burst, 1)
	assert.Equal(t, "sig-b2", burst[0].Signature)
}

func TestAnomalyDetector_AggregateScore(t *testing.T) {
	anomalies := []*entity.Anomaly{
		{Severity: entity.SeverityHigh},   // weight 3
		{Severity: entity.SeverityMedium}, // weight 2
		{Severity: entity.SeverityLow},    // weight 1
	}
	assert.Equal(t, 60.0, AggregateScore(anomalies))

	var many []*entity.Anomaly
	for i := 0; i < 20; i++ {
		many = append(many, &entity.Anomaly{Severity: entity.SeverityHigh})
	}
	assert.Equal(t, 100.0, AggregateScore(many))

	assert.Equal(t, 0.0, AggregateScore(nil))
}

func TestAnomalyDetector_EmptyInput(t *testing.T) {
	detector := NewAnomalyDetector(100, nil)
	assert.Empty(t, detector.Detect(nil))
	assert.Empty(t, detector.QuickChecks(nil))
}
