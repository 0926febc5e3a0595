package entity

import "time"

// WalletReport is the assembled output of a full forensic analysis run for
// one focal address. Components are independently computed over the same
// transfer collection; any of them may be empty for sparse wallets.
type WalletReport struct {
	FocalAddress  string           `json:"focal_address"`
	TransferCount int              `json:"transfer_count"`
	Graph         *TransferGraph   `json:"graph"`
	Paths         []*TransferPath  `json:"paths"`
	Clusters      []*Cluster       `json:"clusters"`
	Anomalies     []*Anomaly       `json:"anomalies"`
	AnomalyScore  float64          `json:"anomaly_score"` // [0,100]
	Entity        *EntityAnalysis  `json:"entity"`
	Funding       *FundingAnalysis `json:"funding"`
	GeneratedAt   time.Time        `json:"generated_at"`
}
