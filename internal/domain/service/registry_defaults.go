package service

import (
	"solana-wallet-forensics/internal/domain/entity"
)

// Default static registries. These are configuration, not data the core
// fetches; deployments override them through the application wiring.

// DefaultProgramRegistry maps well-known mainnet program IDs to behavioral
// categories with their minimum-interaction thresholds.
func DefaultProgramRegistry() entity.ProgramRegistry {
	return entity.ProgramRegistry{
		"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8": {
			Name: "Raydium AMM v4", Category: entity.PatternDEX, MinInteractions: 3, RiskTier: entity.PatternRiskLow,
		},
		"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4": {
			Name: "Jupiter Aggregator v6", Category: entity.PatternDEX, MinInteractions: 3, RiskTier: entity.PatternRiskLow,
		},
		"srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX": {
			Name: "OpenBook", Category: entity.PatternDEX, MinInteractions: 3, RiskTier: entity.PatternRiskLow,
		},
		"M2mx93ekt1fmXSVkTrUL9xVFHkmME8HTUi5Cyc5aF7K": {
			Name: "Magic Eden v2", Category: entity.PatternNFTMarketplace, MinInteractions: 2, RiskTier: entity.PatternRiskLow,
		},
		"TSWAPaqyCSx2KABk68Shruf4rp7CxcNi8hAsbdwmHbN": {
			Name: "Tensor Swap", Category: entity.PatternNFTMarketplace, MinInteractions: 2, RiskTier: entity.PatternRiskLow,
		},
		"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD": {
			Name: "Marinade Staking", Category: entity.PatternDeFi, MinInteractions: 2, RiskTier: entity.PatternRiskLow,
		},
		"So1endDq2YkqhipRh3WViPa8hdiSpxWy6z3Z6tMCpAo": {
			Name: "Solend", Category: entity.PatternDeFi, MinInteractions: 2, RiskTier: entity.PatternRiskMedium,
		},
		"FLiPggWYQyKVTULFWMQjAk26JfK5XRCajfyTmD5weaZ7": {
			Name: "FlipSide Gaming", Category: entity.PatternGaming, MinInteractions: 2, RiskTier: entity.PatternRiskMedium,
		},
	}
}

// DefaultLabelRegistry maps known exchange and protocol addresses to
// display labels for funding-source attribution.
func DefaultLabelRegistry() entity.LabelRegistry {
	return entity.LabelRegistry{
		"5tzFkiKscXHK5ZXCGbXZxdw7gTjjD1mBwuoFbhUvuAi9": "Binance Hot Wallet",
		"2AQdpHJ2JpcEgPiATUXjQxA8QmafFegfQwSLWSprPicm": "Coinbase Hot Wallet",
		"H8sMJSCQxfKiFTCfDR3DUMLPwcRbM61LGFJ8N4dK3WjS": "Kraken Deposit",
		"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM": "FTX Estate",
		"ASTyfSima4LLAdDgoFGkgqoKowG1LZFDr9fAQrg7iaJZ": "MEXC Hot Wallet",
	}
}

// DefaultHighRiskPrograms lists program IDs whose mere use flags a
// transfer in the standalone anomaly checks.
func DefaultHighRiskPrograms() map[string]string {
	return map[string]string{
		"mixerEfg3yXGYZJbhG43RJ2KdMUXbf6s9YGBXnFeKwKS": "privacy mixer",
		"tor1xzb2Zyy1cUxXmyJfR8aNXuWnwHG8AwgaG7UGD4K":  "sanctioned relay",
	}
}
