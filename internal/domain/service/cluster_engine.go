package service

import (
	"fmt"
	"sort"
	"time"

	"solana-wallet-forensics/internal/domain/entity"
)

const (
	// minClusterSize is the canonical minimum group size for every pass.
	minClusterSize = 3

	// timeWindowGap closes a time-based window once the gap to the previous
	// transfer exceeds it.
	timeWindowGap = 10 * time.Minute
)

// ClusterEngine runs three independent grouping passes over one transfer
// set. A transfer may belong to clusters from multiple passes; passes are
// never deduplicated against each other.
type ClusterEngine struct {
	formatter *Formatter
}

// NewClusterEngine creates a clustering engine.
func NewClusterEngine(formatter *Formatter) *ClusterEngine {
	if formatter == nil {
		formatter = NewFormatter(0)
	}
	return &ClusterEngine{formatter: formatter}
}

// Cluster merges the results of the address, time, and amount passes,
// sorted descending by risk score.
func (e *ClusterEngine) Cluster(transfers []*entity.TransferRecord, focalAddress string) []*entity.Cluster {
	clusters := []*entity.Cluster{}
	clusters = append(clusters, e.clusterByAddress(transfers, focalAddress)...)
	clusters = append(clusters, e.clusterByTime(transfers, focalAddress)...)
	clusters = append(clusters, e.clusterByAmount(transfers, focalAddress)...)

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].RiskScore > clusters[j].RiskScore
	})
	return clusters
}

// clusterByAddress groups transfers by their counterparty. Risk rises with
// repeated amounts and high total volume.
func (e *ClusterEngine) clusterByAddress(transfers []*entity.TransferRecord, focal string) []*entity.Cluster {
	groups := make(map[string][]*entity.TransferRecord)
	for _, t := range transfers {
		if t == nil {
			continue
		}
		counterparty := t.Counterparty(focal)
		if counterparty == "" {
			continue
		}
		groups[counterparty] = append(groups[counterparty], t)
	}

	keys := sortedKeys(groups)
	var clusters []*entity.Cluster
	for _, counterparty := range keys {
		members := groups[counterparty]
		if len(members) < minClusterSize {
			continue
		}

		risk := 30.0
		if hasRepeatedAmount(members, minClusterSize) {
			risk += 20
		}
		volume := 0.0
		for _, t := range members {
			volume += t.AmountValue()
		}
		if volume > 100 {
			risk += 15
		}

		clusters = append(clusters, &entity.Cluster{
			ID:             "addr-" + counterparty,
			Kind:           entity.ClusterAddressBased,
			Transfers:      members,
			Counterparties: []string{counterparty},
			RiskScore:      ClampRisk(risk),
			DetectionReason: fmt.Sprintf("%d transfers with counterparty %s totaling %s",
				len(members), counterparty, e.formatter.SOL(volume)),
		})
	}
	return clusters
}

// clusterByTime sorts transfers chronologically and greedily extends a
// window while gaps stay under the threshold. Records without a timestamp
// do not participate.
func (e *ClusterEngine) clusterByTime(transfers []*entity.TransferRecord, focal string) []*entity.Cluster {
	var timed []*entity.TransferRecord
	for _, t := range transfers {
		if t != nil && t.HasTimestamp() {
			timed = append(timed, t)
		}
	}
	timed = entity.SortTransfersByTime(timed)

	var clusters []*entity.Cluster
	var window []*entity.TransferRecord
	flush := func() {
		if len(window) >= minClusterSize {
			risk := 40.0 + minFloat(2*float64(len(window)), 30)
			span := window[len(window)-1].Timestamp().Sub(window[0].Timestamp())
			clusters = append(clusters, &entity.Cluster{
				ID:             fmt.Sprintf("time-%d", len(clusters)+1),
				Kind:           entity.ClusterTimeBased,
				Transfers:      window,
				Counterparties: distinctCounterparties(window, focal),
				RiskScore:      ClampRisk(risk),
				DetectionReason: fmt.Sprintf("%d transfers within %s burst window",
					len(window), span.Round(time.Second)),
			})
		}
		window = nil
	}

	for _, t := range timed {
		if len(window) > 0 {
			gap := t.Timestamp().Sub(window[len(window)-1].Timestamp())
			if gap > timeWindowGap {
				flush()
			}
		}
		window = append(window, t)
	}
	flush()
	return clusters
}

// clusterByAmount buckets transfers by amount rounded to two decimals.
// Tight temporal spread inside one bucket raises the risk sharply.
func (e *ClusterEngine) clusterByAmount(transfers []*entity.TransferRecord, focal string) []*entity.Cluster {
	buckets := make(map[string][]*entity.TransferRecord)
	for _, t := range transfers {
		if t == nil || !t.HasAmount() {
			continue
		}
		key := e.formatter.AmountBucket(*t.Amount)
		buckets[key] = append(buckets[key], t)
	}

	keys := sortedKeys(buckets)
	var clusters []*entity.Cluster
	for _, bucket := range keys {
		members := buckets[bucket]
		if len(members) < minClusterSize {
			continue
		}

		risk := 35.0
		if span, ok := timestampSpan(members); ok {
			if span < 24*time.Hour {
				risk += 15
				if span < time.Hour {
					risk += 25
				}
			}
		}
		if len(members) > 5 {
			risk += 10
		}

		clusters = append(clusters, &entity.Cluster{
			ID:             "amount-" + bucket,
			Kind:           entity.ClusterAmountBased,
			Transfers:      members,
			Counterparties: distinctCounterparties(members, focal),
			RiskScore:      ClampRisk(risk),
			DetectionReason: fmt.Sprintf("%d transfers of identical amount %s",
				len(members), bucket),
		})
	}
	return clusters
}

// hasRepeatedAmount reports whether any amount value occurs at least
// minRepeats times within the group.
func hasRepeatedAmount(transfers []*entity.TransferRecord, minRepeats int) bool {
	counts := make(map[float64]int)
	for _, t := range transfers {
		if !t.HasAmount() {
			continue
		}
		counts[*t.Amount]++
		if counts[*t.Amount] >= minRepeats {
			return true
		}
	}
	return false
}

// timestampSpan returns max-min block time over members that carry one.
func timestampSpan(transfers []*entity.TransferRecord) (time.Duration, bool) {
	var earliest, latest time.Time
	seen := false
	for _, t := range transfers {
		if !t.HasTimestamp() {
			continue
		}
		ts := t.Timestamp()
		if !seen {
			earliest, latest = ts, ts
			seen = true
			continue
		}
		if ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	if !seen {
		return 0, false
	}
	return latest.Sub(earliest), true
}

func distinctCounterparties(transfers []*entity.TransferRecord, focal string) []string {
	seen := make(map[string]struct{})
	for _, t := range transfers {
		if cp := t.Counterparty(focal); cp != "" {
			seen[cp] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for cp := range seen {
		out = append(out, cp)
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
