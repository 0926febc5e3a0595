package entity

import "time"

// AnomalyKind identifies which detection rule flagged a transfer.
type AnomalyKind string

const (
	AnomalyUnusualAmount      AnomalyKind = "UNUSUAL_AMOUNT"
	AnomalyRapidTransactions  AnomalyKind = "RAPID_TRANSACTIONS"
	AnomalyUnusualProgram     AnomalyKind = "UNUSUAL_PROGRAM"
	AnomalyNewCounterparty    AnomalyKind = "NEW_COUNTERPARTY"
	AnomalyLargeValueTransfer AnomalyKind = "LARGE_VALUE_TRANSFER"
	AnomalyLargeAmount        AnomalyKind = "LARGE_AMOUNT"
	AnomalyBurstTiming        AnomalyKind = "BURST_TIMING"
	AnomalyHighRiskProgram    AnomalyKind = "HIGH_RISK_PROGRAM"
)

// AnomalySeverity grades an anomaly for aggregate scoring.
type AnomalySeverity string

const (
	SeverityLow    AnomalySeverity = "LOW"
	SeverityMedium AnomalySeverity = "MEDIUM"
	SeverityHigh   AnomalySeverity = "HIGH"
)

// Weight returns the contribution of this severity to the aggregate
// anomaly score.
func (s AnomalySeverity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Anomaly is a single rule hit against one transfer.
type Anomaly struct {
	Signature string          `json:"signature"`
	Kind      AnomalyKind     `json:"kind"`
	Severity  AnomalySeverity `json:"severity"`
	RiskScore float64         `json:"risk_score"` // [0,100]
	Details   string          `json:"details"`
	Timestamp time.Time       `json:"timestamp"`
}
