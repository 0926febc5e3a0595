package service

import (
	"fmt"

	"solana-wallet-forensics/internal/domain/entity"
)

const (
	tokenHolderMinInteractions = 5
	tokenHolderConfidenceScale = 10
	activeTraderMinTransfers   = 3
	activeTraderMinHours       = 3
)

// EntityPatternDetector classifies an address from its program, token, and
// hour-of-day interaction statistics. The program and label registries are
// static configuration; the detector never fetches anything.
type EntityPatternDetector struct {
	programs entity.ProgramRegistry
}

// NewEntityPatternDetector creates a detector over the given program
// registry. A nil registry falls back to the built-in defaults.
func NewEntityPatternDetector(programs entity.ProgramRegistry) *EntityPatternDetector {
	if programs == nil {
		programs = DefaultProgramRegistry()
	}
	return &EntityPatternDetector{programs: programs}
}

// interaction tallies accumulated in a single pass over the transfers.
type interactionStats struct {
	programCounts map[string]int
	tokenCounts   map[string]int
	hourHistogram [24]int
	timedCount    int
	transferCount int
	totalVolume   float64
}

// AnalyzeEntity classifies address against the given transfers. The graph,
// when provided, supplies the counterparty fan-out from its node registry;
// without one the fan-out is derived from the transfers directly.
func (d *EntityPatternDetector) AnalyzeEntity(address string, transfers []*entity.TransferRecord, graph *entity.TransferGraph) *entity.EntityAnalysis {
	stats := d.tally(transfers)
	fanOut := d.counterpartyFanOut(address, transfers, graph)

	patterns := d.detectPatterns(stats)

	analysis := &entity.EntityAnalysis{
		Address:    address,
		EntityType: dominantCategory(patterns),
		Patterns:   patterns,
		Stats: entity.EntityStats{
			TransferCount:         stats.transferCount,
			TotalVolume:           stats.totalVolume,
			DistinctCounterparts:  fanOut,
			DistinctActiveHours:   activeHours(stats.hourHistogram),
			TransfersPerDay:       transfersPerDay(transfers, stats.transferCount),
			ProgramInteractions:   mapTotal(stats.programCounts),
			TokenMintInteractions: mapTotal(stats.tokenCounts),
		},
	}
	analysis.RiskScore = d.riskScore(analysis)
	return analysis
}

// tally runs the single statistics pass.
func (d *EntityPatternDetector) tally(transfers []*entity.TransferRecord) interactionStats {
	stats := interactionStats{
		programCounts: make(map[string]int),
		tokenCounts:   make(map[string]int),
	}
	for _, t := range transfers {
		if t == nil {
			continue
		}
		stats.transferCount++
		stats.totalVolume += t.AmountValue()
		if t.ProgramID != nil && *t.ProgramID != "" {
			stats.programCounts[*t.ProgramID]++
		}
		for _, token := range t.TokenTransfers {
			if token.Mint != "" {
				stats.tokenCounts[token.Mint]++
			}
		}
		if t.HasTimestamp() {
			stats.hourHistogram[t.Timestamp().Hour()]++
			stats.timedCount++
		}
	}
	return stats
}

// detectPatterns emits category patterns from the registry plus the
// token-holder and active-trader heuristics.
func (d *EntityPatternDetector) detectPatterns(stats interactionStats) []entity.EntityPattern {
	patterns := []entity.EntityPattern{}

	programIDs := sortedKeys(stats.programCounts)
	for _, programID := range programIDs {
		rule, known := d.programs.Rule(programID)
		if !known {
			continue
		}
		count := stats.programCounts[programID]
		if count < rule.MinInteractions {
			continue
		}
		patterns = append(patterns, entity.EntityPattern{
			Category:   rule.Category,
			Confidence: ClampConfidence(float64(count) / float64(rule.MinInteractions)),
			RiskTier:   rule.RiskTier,
			ProgramID:  programID,
			Detail:     fmt.Sprintf("%d interactions with %s", count, rule.Name),
		})
	}

	if tokenTotal := mapTotal(stats.tokenCounts); tokenTotal >= tokenHolderMinInteractions {
		patterns = append(patterns, entity.EntityPattern{
			Category:   entity.PatternTokenHolder,
			Confidence: ClampConfidence(float64(tokenTotal) / tokenHolderConfidenceScale),
			RiskTier:   entity.PatternRiskLow,
			Detail:     fmt.Sprintf("%d token mint interactions", tokenTotal),
		})
	}

	hours := activeHours(stats.hourHistogram)
	if stats.transferCount >= activeTraderMinTransfers && hours >= activeTraderMinHours {
		patterns = append(patterns, entity.EntityPattern{
			Category:   entity.PatternActiveTrader,
			Confidence: ClampConfidence(float64(hours) / 24),
			RiskTier:   entity.PatternRiskLow,
			Detail:     fmt.Sprintf("active in %d distinct hours", hours),
		})
	}

	return patterns
}

// riskScore composes the entity risk from volume, frequency, flagged
// patterns, and counterparty fan-out.
func (d *EntityPatternDetector) riskScore(analysis *entity.EntityAnalysis) float64 {
	score := tierBonus(analysis.Stats.TotalVolume, 100, 1000, 10, 20)
	score += tierBonus(analysis.Stats.TransfersPerDay, 20, 50, 10, 20)
	for _, p := range analysis.Patterns {
		switch p.RiskTier {
		case entity.PatternRiskHigh:
			score += 30
		case entity.PatternRiskMedium:
			score += 15
		}
	}
	score += tierBonus(float64(analysis.Stats.DistinctCounterparts), 20, 50, 10, 20)
	return ClampRisk(score)
}

// counterpartyFanOut prefers the graph node registry; the union of a
// node's outgoing and incoming edges is its distinct counterparty set.
func (d *EntityPatternDetector) counterpartyFanOut(address string, transfers []*entity.TransferRecord, graph *entity.TransferGraph) int {
	if graph != nil {
		if node := graph.Node(address); node != nil {
			union := make(map[string]struct{}, len(node.Outgoing)+len(node.Incoming))
			for addr := range node.Outgoing {
				union[addr] = struct{}{}
			}
			for addr := range node.Incoming {
				union[addr] = struct{}{}
			}
			return len(union)
		}
	}
	seen := make(map[string]struct{})
	for _, t := range transfers {
		if t == nil {
			continue
		}
		if cp := t.Counterparty(address); cp != "" {
			seen[cp] = struct{}{}
		}
	}
	return len(seen)
}

// dominantCategory picks the category with the highest summed confidence.
// Ties keep the first-encountered category.
func dominantCategory(patterns []entity.EntityPattern) entity.PatternCategory {
	sums := make(map[entity.PatternCategory]float64)
	var order []entity.PatternCategory
	for _, p := range patterns {
		if _, seen := sums[p.Category]; !seen {
			order = append(order, p.Category)
		}
		sums[p.Category] += p.Confidence
	}

	best := entity.EntityTypeUnknown
	bestSum := 0.0
	for _, category := range order {
		if sums[category] > bestSum {
			best = category
			bestSum = sums[category]
		}
	}
	return best
}

// transfersPerDay derives the daily frequency from the observed time span,
// with a floor of one day so sparse histories do not explode the rate.
func transfersPerDay(transfers []*entity.TransferRecord, count int) float64 {
	span, ok := timestampSpan(transfers)
	if !ok || count == 0 {
		return 0
	}
	days := span.Hours() / 24
	if days < 1 {
		days = 1
	}
	return float64(count) / days
}

func activeHours(histogram [24]int) int {
	active := 0
	for _, count := range histogram {
		if count > 0 {
			active++
		}
	}
	return active
}

func mapTotal(counts map[string]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
