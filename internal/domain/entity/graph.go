package entity

// NodeKind represents the kind of a graph node. A node's kind is fixed at
// first insertion and never changes afterwards.
type NodeKind string

const (
	NodeKindWallet  NodeKind = "WALLET"
	NodeKindProgram NodeKind = "PROGRAM"
	NodeKindToken   NodeKind = "TOKEN"
)

// TypeWeight returns the significance weight this node kind contributes to
// a path score.
func (k NodeKind) TypeWeight() float64 {
	switch k {
	case NodeKindProgram:
		return 0.3
	case NodeKindToken:
		return 0.2
	default:
		return 0.1
	}
}

// GraphNode is a single address in the relationship graph, with the set of
// transfer signatures that touched it and weighted edges to counterparties.
type GraphNode struct {
	Address    string              `json:"address"`
	Kind       NodeKind            `json:"kind"`
	Signatures map[string]struct{} `json:"-"`
	Outgoing   map[string]int      `json:"outgoing"` // counterparty -> interaction count
	Incoming   map[string]int      `json:"incoming"`
}

// NewGraphNode creates an empty node of the given kind.
func NewGraphNode(address string, kind NodeKind) *GraphNode {
	return &GraphNode{
		Address:    address,
		Kind:       kind,
		Signatures: make(map[string]struct{}),
		Outgoing:   make(map[string]int),
		Incoming:   make(map[string]int),
	}
}

// Touch records that the given transfer signature involved this node.
func (n *GraphNode) Touch(signature string) {
	if signature != "" {
		n.Signatures[signature] = struct{}{}
	}
}

// TransferGraph is the node registry produced by the graph builder.
type TransferGraph struct {
	Nodes map[string]*GraphNode `json:"nodes"`
}

// NewTransferGraph creates an empty graph.
func NewTransferGraph() *TransferGraph {
	return &TransferGraph{Nodes: make(map[string]*GraphNode)}
}

// Upsert returns the node for address, creating it with the given kind when
// it does not exist yet. An existing node keeps its original kind.
func (g *TransferGraph) Upsert(address string, kind NodeKind) *GraphNode {
	if node, exists := g.Nodes[address]; exists {
		return node
	}
	node := NewGraphNode(address, kind)
	g.Nodes[address] = node
	return node
}

// Node returns the node for address, or nil.
func (g *TransferGraph) Node(address string) *GraphNode {
	return g.Nodes[address]
}

// WalletAddresses returns the addresses of all wallet-kind nodes.
func (g *TransferGraph) WalletAddresses() []string {
	var wallets []string
	for addr, node := range g.Nodes {
		if node.Kind == NodeKindWallet {
			wallets = append(wallets, addr)
		}
	}
	return wallets
}
