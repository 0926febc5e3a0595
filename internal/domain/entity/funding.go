package entity

import "time"

// ConfidenceTier classifies a funding source by its share of total inflow.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "high"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceLow    ConfidenceTier = "low"
)

// FundingSource is an aggregated inbound counterparty.
type FundingSource struct {
	Address        string         `json:"address"`
	Amount         float64        `json:"amount"`
	FirstSeen      time.Time      `json:"first_seen"`
	FirstSignature string         `json:"first_signature"`
	Confidence     ConfidenceTier `json:"confidence"`
	Label          string         `json:"label,omitempty"`
}

// BalancePoint is one entry of the chronological running-balance timeline.
type BalancePoint struct {
	Signature string    `json:"signature"`
	Timestamp time.Time `json:"timestamp"`
	Delta     float64   `json:"delta"` // signed: deposits add, withdrawals subtract
	Balance   float64   `json:"balance"`
}

// FirstDeposit describes the earliest inbound transfer for the focal wallet.
type FirstDeposit struct {
	Signature string    `json:"signature"`
	Sender    string    `json:"sender,omitempty"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// FundingAnalysis is the inflow/outflow summary for a focal wallet.
type FundingAnalysis struct {
	FocalAddress string           `json:"focal_address"`
	TotalInflow  float64          `json:"total_inflow"`
	TotalOutflow float64          `json:"total_outflow"`
	NetBalance   float64          `json:"net_balance"`
	FirstDeposit *FirstDeposit    `json:"first_deposit,omitempty"`
	TopSources   []*FundingSource `json:"top_sources"` // at most 5, by amount desc
	Timeline     []BalancePoint   `json:"timeline"`
}
