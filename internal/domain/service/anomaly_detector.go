package service

import (
	"fmt"
	"math"
	"time"

	"solana-wallet-forensics/internal/domain/entity"
)

const (
	unusualAmountMinSamples  = 5
	unusualAmountSigmas      = 3.0
	rapidWindow              = 300 * time.Second
	rapidWindowMinCount      = 5
	unusualProgramMinSamples = 10
	unusualProgramRecent     = 10
	newCounterpartyMin       = 5
	newCounterpartyRecent    = 5
	largeValueMinSamples     = 3
	largeValueFactor         = 10.0
	burstNeighborGap         = 5 * time.Second

	anomalyScoreStep = 10.0
)

// AnomalyDetector walks transfers in timestamp order keeping running
// metrics; every rule is evaluated against history strictly preceding the
// current transfer, never including it.
type AnomalyDetector struct {
	largeAmountThreshold float64
	highRiskPrograms     map[string]string
}

// NewAnomalyDetector creates a detector. A non-positive threshold disables
// the absolute large-amount check; nil highRiskPrograms falls back to the
// built-in defaults.
func NewAnomalyDetector(largeAmountThreshold float64, highRiskPrograms map[string]string) *AnomalyDetector {
	if highRiskPrograms == nil {
		highRiskPrograms = DefaultHighRiskPrograms()
	}
	return &AnomalyDetector{
		largeAmountThreshold: largeAmountThreshold,
		highRiskPrograms:     highRiskPrograms,
	}
}

// runningMetrics is the incremental history state. Mean and variance use
// Welford updates so a pass stays single-scan.
type runningMetrics struct {
	amountCount int
	mean        float64
	m2          float64
	maxAmount   float64

	timestamps     []time.Time
	recentPrograms []string
	recentParties  [][]string
	historyCount   int
}

func (m *runningMetrics) stdDev() float64 {
	if m.amountCount == 0 {
		return 0
	}
	return math.Sqrt(m.m2 / float64(m.amountCount))
}

func (m *runningMetrics) observe(t *entity.TransferRecord) {
	m.historyCount++
	if t.HasAmount() {
		amount := *t.Amount
		m.amountCount++
		delta := amount - m.mean
		m.mean += delta / float64(m.amountCount)
		m.m2 += delta * (amount - m.mean)
		if amount > m.maxAmount {
			m.maxAmount = amount
		}
	}
	if t.HasTimestamp() {
		m.timestamps = append(m.timestamps, t.Timestamp())
	}
	if t.ProgramID != nil && *t.ProgramID != "" {
		m.recentPrograms = append(m.recentPrograms, *t.ProgramID)
		if len(m.recentPrograms) > unusualProgramRecent {
			m.recentPrograms = m.recentPrograms[1:]
		}
	}
	var parties []string
	if t.Sender != nil && *t.Sender != "" {
		parties = append(parties, *t.Sender)
	}
	if t.Receiver != nil && *t.Receiver != "" {
		parties = append(parties, *t.Receiver)
	}
	m.recentParties = append(m.recentParties, parties)
	if len(m.recentParties) > newCounterpartyRecent {
		m.recentParties = m.recentParties[1:]
	}
}

// Detect evaluates the incremental rules over transfers in chronological
// order. A transfer may trigger several rules at once.
func (d *AnomalyDetector) Detect(transfers []*entity.TransferRecord) []*entity.Anomaly {
	ordered := entity.SortTransfersByTime(transfers)
	metrics := &runningMetrics{}
	anomalies := []*entity.Anomaly{}

	for _, t := range ordered {
		if t == nil {
			continue
		}
		anomalies = append(anomalies, d.evaluate(t, metrics)...)
		metrics.observe(t)
	}
	return anomalies
}

func (d *AnomalyDetector) evaluate(t *entity.TransferRecord, m *runningMetrics) []*entity.Anomaly {
	var hits []*entity.Anomaly

	if t.HasAmount() && m.amountCount >= unusualAmountMinSamples {
		deviation := math.Abs(*t.Amount - m.mean)
		if sigma := m.stdDev(); deviation > unusualAmountSigmas*sigma {
			hits = append(hits, newAnomaly(t, entity.AnomalyUnusualAmount, entity.SeverityHigh,
				fmt.Sprintf("amount %.4f deviates %.4f from running mean %.4f (stddev %.4f)",
					*t.Amount, deviation, m.mean, sigma)))
		}
	}

	if t.HasTimestamp() {
		cutoff := t.Timestamp().Add(-rapidWindow)
		recent := 0
		for i := len(m.timestamps) - 1; i >= 0; i-- {
			if m.timestamps[i].Before(cutoff) {
				break
			}
			recent++
		}
		if recent >= rapidWindowMinCount {
			hits = append(hits, newAnomaly(t, entity.AnomalyRapidTransactions, entity.SeverityMedium,
				fmt.Sprintf("%d prior transfers within trailing %s", recent, rapidWindow)))
		}
	}

	if t.ProgramID != nil && *t.ProgramID != "" && m.historyCount >= unusualProgramMinSamples {
		if !containsAddress(m.recentPrograms, *t.ProgramID) {
			hits = append(hits, newAnomaly(t, entity.AnomalyUnusualProgram, entity.SeverityMedium,
				fmt.Sprintf("program %s absent from the %d most recent interactions",
					*t.ProgramID, len(m.recentPrograms))))
		}
	}

	if m.historyCount >= newCounterpartyMin {
		if party, isNew := d.unseenCounterparty(t, m); isNew {
			hits = append(hits, newAnomaly(t, entity.AnomalyNewCounterparty, entity.SeverityLow,
				fmt.Sprintf("counterparty %s not seen in the %d most recent transfers",
					party, newCounterpartyRecent)))
		}
	}

	if t.HasAmount() && m.amountCount >= largeValueMinSamples && *t.Amount > largeValueFactor*m.maxAmount {
		hits = append(hits, newAnomaly(t, entity.AnomalyLargeValueTransfer, entity.SeverityHigh,
			fmt.Sprintf("amount %.4f exceeds %gx the prior maximum %.4f",
				*t.Amount, largeValueFactor, m.maxAmount)))
	}

	return hits
}

// unseenCounterparty reports a sender or receiver absent from all parties
// of the most recent prior transfers.
func (d *AnomalyDetector) unseenCounterparty(t *entity.TransferRecord, m *runningMetrics) (string, bool) {
	known := make(map[string]struct{})
	for _, parties := range m.recentParties {
		for _, p := range parties {
			known[p] = struct{}{}
		}
	}
	if t.Sender != nil && *t.Sender != "" {
		if _, ok := known[*t.Sender]; !ok {
			return *t.Sender, true
		}
	}
	if t.Receiver != nil && *t.Receiver != "" {
		if _, ok := known[*t.Receiver]; !ok {
			return *t.Receiver, true
		}
	}
	return "", false
}

// QuickChecks runs the standalone rules that need no running history:
// absolute threshold breaches, tight transfer bursts, and interactions
// with designated high-risk programs.
func (d *AnomalyDetector) QuickChecks(transfers []*entity.TransferRecord) []*entity.Anomaly {
	ordered := entity.SortTransfersByTime(transfers)
	anomalies := []*entity.Anomaly{}

	for _, t := range ordered {
		if t == nil {
			continue
		}
		if d.largeAmountThreshold > 0 && t.HasAmount() && *t.Amount > d.largeAmountThreshold {
			anomalies = append(anomalies, newAnomaly(t, entity.AnomalyLargeAmount, entity.SeverityMedium,
				fmt.Sprintf("amount %.4f exceeds absolute threshold %.4f", *t.Amount, d.largeAmountThreshold)))
		}
		if t.ProgramID != nil {
			if reason, flagged := d.highRiskPrograms[*t.ProgramID]; flagged {
				anomalies = append(anomalies, newAnomaly(t, entity.AnomalyHighRiskProgram, entity.SeverityHigh,
					fmt.Sprintf("interaction with %s program %s", reason, *t.ProgramID)))
			}
		}
	}

	// Three temporally adjacent transfers each within 5s of their neighbors.
	for i := 1; i+1 < len(ordered); i++ {
		prev, cur, next := ordered[i-1], ordered[i], ordered[i+1]
		if !prev.HasTimestamp() || !cur.HasTimestamp() || !next.HasTimestamp() {
			continue
		}
		if cur.Timestamp().Sub(prev.Timestamp()) <= burstNeighborGap &&
			next.Timestamp().Sub(cur.Timestamp()) <= burstNeighborGap {
			anomalies = append(anomalies, newAnomaly(cur, entity.AnomalyBurstTiming, entity.SeverityLow,
				"center of three transfers spaced under 5s apart"))
		}
	}

	return anomalies
}

// AggregateScore folds anomalies into a single [0,100] score: ten points
// per severity weight, capped.
func AggregateScore(anomalies []*entity.Anomaly) float64 {
	total := 0
	for _, a := range anomalies {
		total += a.Severity.Weight()
	}
	return ClampRisk(anomalyScoreStep * float64(total))
}

func newAnomaly(t *entity.TransferRecord, kind entity.AnomalyKind, severity entity.AnomalySeverity, details string) *entity.Anomaly {
	return &entity.Anomaly{
		Signature: t.Signature,
		Kind:      kind,
		Severity:  severity,
		RiskScore: ClampRisk(float64(severity.Weight()) * 25),
		Details:   details,
		Timestamp: t.Timestamp(),
	}
}
