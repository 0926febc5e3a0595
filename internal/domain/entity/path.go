package entity

// PathClassification categorizes a multi-hop path by the node kinds it
// crosses.
type PathClassification string

const (
	PathDirectTransfer     PathClassification = "DIRECT_TRANSFER"
	PathProgramInteraction PathClassification = "PROGRAM_INTERACTION"
	PathTokenFlow          PathClassification = "TOKEN_FLOW"
	PathComplexFlow        PathClassification = "COMPLEX_FLOW"
)

// TransferPath is an ordered address sequence discovered by the bounded
// graph search, ranked by its significance score.
type TransferPath struct {
	Addresses      []string           `json:"addresses"`
	Significance   float64            `json:"significance"` // [0,1]
	Signatures     []string           `json:"signatures"`   // union over path nodes
	Classification PathClassification `json:"classification"`
}

// Length returns the number of hops plus one (node count).
func (p *TransferPath) Length() int {
	return len(p.Addresses)
}
