package entity

// ClusterKind identifies which detection pass produced a cluster.
type ClusterKind string

const (
	ClusterAddressBased ClusterKind = "ADDRESS_BASED"
	ClusterTimeBased    ClusterKind = "TIME_BASED"
	ClusterAmountBased  ClusterKind = "AMOUNT_BASED"
)

// Cluster is a group of transfers flagged together by one clustering pass.
// The same transfer may appear in clusters from different passes.
type Cluster struct {
	ID              string            `json:"id"`
	Kind            ClusterKind       `json:"kind"`
	Transfers       []*TransferRecord `json:"transfers"`
	Counterparties  []string          `json:"counterparties"`
	RiskScore       float64           `json:"risk_score"` // [0,100]
	DetectionReason string            `json:"detection_reason"`
}

// Size returns the number of member transfers.
func (c *Cluster) Size() int {
	return len(c.Transfers)
}
