package entity

// PatternCategory labels a detected behavioral pattern for an address.
type PatternCategory string

const (
	PatternDEX            PatternCategory = "DEX"
	PatternNFTMarketplace PatternCategory = "NFT_MARKETPLACE"
	PatternGaming         PatternCategory = "GAMING"
	PatternDeFi           PatternCategory = "DEFI"
	PatternTokenHolder    PatternCategory = "TOKEN_HOLDER"
	PatternActiveTrader   PatternCategory = "ACTIVE_TRADER"

	// EntityTypeUnknown is the default when no pattern dominates.
	EntityTypeUnknown PatternCategory = "UNKNOWN"
)

// PatternRiskTier grades how suspicious a pattern category is on its own.
type PatternRiskTier string

const (
	PatternRiskLow    PatternRiskTier = "LOW_RISK"
	PatternRiskMedium PatternRiskTier = "MEDIUM_RISK"
	PatternRiskHigh   PatternRiskTier = "HIGH_RISK"
)

// EntityPattern is one detected pattern with its confidence in [0,1].
type EntityPattern struct {
	Category   PatternCategory `json:"category"`
	Confidence float64         `json:"confidence"`
	RiskTier   PatternRiskTier `json:"risk_tier"`
	ProgramID  string          `json:"program_id,omitempty"`
	Detail     string          `json:"detail,omitempty"`
}

// EntityStats holds the interaction statistics backing a classification.
type EntityStats struct {
	TransferCount         int     `json:"transfer_count"`
	TotalVolume           float64 `json:"total_volume"`
	DistinctCounterparts  int     `json:"distinct_counterparties"`
	DistinctActiveHours   int     `json:"distinct_active_hours"`
	TransfersPerDay       float64 `json:"transfers_per_day"`
	ProgramInteractions   int     `json:"program_interactions"`
	TokenMintInteractions int     `json:"token_mint_interactions"`
}

// EntityAnalysis is the classification result for one address.
type EntityAnalysis struct {
	Address    string          `json:"address"`
	EntityType PatternCategory `json:"entity_type"`
	Patterns   []EntityPattern `json:"patterns"`
	RiskScore  float64         `json:"risk_score"` // [0,100]
	Stats      EntityStats     `json:"stats"`
}
