package service

import (
	"sort"

	"solana-wallet-forensics/internal/domain/entity"
)

const maxTopFundingSources = 5

// FundingAggregator computes inflow/outflow totals, the running-balance
// timeline, and the top funding sources for a focal wallet.
type FundingAggregator struct {
	labels entity.LabelRegistry
}

// NewFundingAggregator creates an aggregator. A nil label registry falls
// back to the built-in defaults.
func NewFundingAggregator(labels entity.LabelRegistry) *FundingAggregator {
	if labels == nil {
		labels = DefaultLabelRegistry()
	}
	return &FundingAggregator{labels: labels}
}

// Aggregate walks the transfers chronologically. Records without a usable
// amount are excluded from sums and the timeline but never abort the pass.
func (a *FundingAggregator) Aggregate(focalAddress string, transfers []*entity.TransferRecord) *entity.FundingAnalysis {
	analysis := &entity.FundingAnalysis{
		FocalAddress: focalAddress,
		TopSources:   []*entity.FundingSource{},
		Timeline:     []entity.BalancePoint{},
	}

	sources := make(map[string]*entity.FundingSource)
	balance := 0.0

	for _, t := range entity.SortTransfersByTime(transfers) {
		if t == nil || !t.HasAmount() || *t.Amount <= 0 {
			continue
		}
		amount := *t.Amount

		inbound := t.Receiver != nil && *t.Receiver == focalAddress
		outbound := t.Sender != nil && *t.Sender == focalAddress
		if !inbound && !outbound {
			continue
		}

		delta := amount
		if inbound {
			analysis.TotalInflow += amount
			a.recordSource(sources, t, amount)
			if analysis.FirstDeposit == nil {
				deposit := &entity.FirstDeposit{
					Signature: t.Signature,
					Amount:    amount,
					Timestamp: t.Timestamp(),
				}
				if t.Sender != nil {
					deposit.Sender = *t.Sender
				}
				analysis.FirstDeposit = deposit
			}
		} else {
			analysis.TotalOutflow += amount
			delta = -amount
		}

		balance += delta
		analysis.Timeline = append(analysis.Timeline, entity.BalancePoint{
			Signature: t.Signature,
			Timestamp: t.Timestamp(),
			Delta:     delta,
			Balance:   balance,
		})
	}

	analysis.NetBalance = analysis.TotalInflow - analysis.TotalOutflow
	analysis.TopSources = a.rankSources(sources, analysis.TotalInflow)
	return analysis
}

// recordSource accumulates a per-sender aggregate, keeping the earliest
// timestamp with its signature.
func (a *FundingAggregator) recordSource(sources map[string]*entity.FundingSource, t *entity.TransferRecord, amount float64) {
	if t.Sender == nil || *t.Sender == "" {
		return
	}
	sender := *t.Sender
	source, exists := sources[sender]
	if !exists {
		sources[sender] = &entity.FundingSource{
			Address:        sender,
			Amount:         amount,
			FirstSeen:      t.Timestamp(),
			FirstSignature: t.Signature,
			Label:          a.labels.Label(sender),
		}
		return
	}
	source.Amount += amount
	if t.HasTimestamp() && (source.FirstSeen.IsZero() || t.Timestamp().Before(source.FirstSeen)) {
		source.FirstSeen = t.Timestamp()
		source.FirstSignature = t.Signature
	}
}

// rankSources picks the top sources by amount and assigns the confidence
// tier from each source's share of total inflow. A zero inflow yields zero
// shares, never NaN.
func (a *FundingAggregator) rankSources(sources map[string]*entity.FundingSource, totalInflow float64) []*entity.FundingSource {
	ranked := make([]*entity.FundingSource, 0, len(sources))
	for _, s := range sources {
		ranked = append(ranked, s)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		return ranked[i].Address < ranked[j].Address
	})
	if len(ranked) > maxTopFundingSources {
		ranked = ranked[:maxTopFundingSources]
	}

	for _, s := range ranked {
		share := 0.0
		if totalInflow > 0 {
			share = s.Amount / totalInflow
		}
		switch {
		case share > 0.5:
			s.Confidence = entity.ConfidenceHigh
		case share > 0.2:
			s.Confidence = entity.ConfidenceMedium
		default:
			s.Confidence = entity.ConfidenceLow
		}
	}
	return ranked
}
