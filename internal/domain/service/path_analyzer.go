package service

import (
	"sort"

	"solana-wallet-forensics/internal/domain/entity"
)

const (
	// maxPathDepth bounds the search to three hops (four addresses).
	maxPathDepth = 3

	// minPathSignificance is the emission floor; paths at or below it are
	// discarded.
	minPathSignificance = 0.1

	signatureWeight    = 0.1
	edgeStrengthWeight = 0.05
)

// PathAnalyzer runs a bounded depth-first search over the relationship
// graph and ranks the discovered multi-hop paths.
type PathAnalyzer struct{}

// NewPathAnalyzer creates a path analyzer.
func NewPathAnalyzer() *PathAnalyzer {
	return &PathAnalyzer{}
}

// pathState is one immutable search frame. Extending a path allocates a new
// address slice, so sibling branches never alias each other's state.
type pathState struct {
	addresses []string
	depth     int
}

// FindSignificantPaths searches from every wallet-kind node and returns all
// paths of length > 1 whose significance exceeds the emission floor, sorted
// descending by significance. Ties keep discovery order.
func (a *PathAnalyzer) FindSignificantPaths(graph *entity.TransferGraph) []*entity.TransferPath {
	if graph == nil || len(graph.Nodes) == 0 {
		return []*entity.TransferPath{}
	}

	roots := graph.WalletAddresses()
	sort.Strings(roots)

	paths := []*entity.TransferPath{}
	for _, root := range roots {
		paths = append(paths, a.searchFrom(graph, root)...)
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].Significance > paths[j].Significance
	})
	return paths
}

// searchFrom explores outgoing edges from root with an explicit stack.
// A node may appear in independent paths found on different branches but
// never twice inside one path.
func (a *PathAnalyzer) searchFrom(graph *entity.TransferGraph, root string) []*entity.TransferPath {
	var found []*entity.TransferPath

	stack := []pathState{{addresses: []string{root}, depth: 0}}
	for len(stack) > 0 {
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(state.addresses) > 1 {
			if path := a.evaluate(graph, state.addresses); path != nil {
				found = append(found, path)
			}
		}
		if state.depth >= maxPathDepth {
			continue
		}

		current := graph.Node(state.addresses[len(state.addresses)-1])
		if current == nil {
			continue
		}
		neighbors := make([]string, 0, len(current.Outgoing))
		for addr := range current.Outgoing {
			neighbors = append(neighbors, addr)
		}
		sort.Strings(neighbors)

		// Push in reverse so lexicographically smaller branches pop first.
		for i := len(neighbors) - 1; i >= 0; i-- {
			next := neighbors[i]
			if containsAddress(state.addresses, next) || graph.Node(next) == nil {
				continue
			}
			extended := make([]string, len(state.addresses), len(state.addresses)+1)
			copy(extended, state.addresses)
			extended = append(extended, next)
			stack = append(stack, pathState{addresses: extended, depth: state.depth + 1})
		}
	}

	return found
}

// evaluate scores an address sequence and returns the path when it clears
// the emission floor, nil otherwise.
func (a *PathAnalyzer) evaluate(graph *entity.TransferGraph, addresses []string) *entity.TransferPath {
	signatures := make(map[string]struct{})
	significance := 0.0

	for _, addr := range addresses {
		node := graph.Node(addr)
		if node == nil {
			return nil
		}
		significance += node.Kind.TypeWeight()
		for sig := range node.Signatures {
			signatures[sig] = struct{}{}
		}
	}
	significance += signatureWeight * float64(len(signatures))

	for i := 0; i < len(addresses)-1; i++ {
		prev := graph.Node(addresses[i])
		next := graph.Node(addresses[i+1])
		strength := prev.Outgoing[next.Address] + next.Incoming[prev.Address]
		significance += edgeStrengthWeight * float64(strength)
	}

	if significance > 1.0 {
		significance = 1.0
	}
	if significance <= minPathSignificance {
		return nil
	}

	sigList := make([]string, 0, len(signatures))
	for sig := range signatures {
		sigList = append(sigList, sig)
	}
	sort.Strings(sigList)

	return &entity.TransferPath{
		Addresses:      addresses,
		Significance:   significance,
		Signatures:     sigList,
		Classification: classifyPath(graph, addresses),
	}
}

// classifyPath categorizes a path by the node kinds it crosses.
func classifyPath(graph *entity.TransferGraph, addresses []string) entity.PathClassification {
	hasProgram, hasToken := false, false
	for _, addr := range addresses {
		switch graph.Node(addr).Kind {
		case entity.NodeKindProgram:
			hasProgram = true
		case entity.NodeKindToken:
			hasToken = true
		}
	}
	switch {
	case hasProgram:
		return entity.PathProgramInteraction
	case hasToken:
		return entity.PathTokenFlow
	case len(addresses) >= 3:
		return entity.PathComplexFlow
	default:
		return entity.PathDirectTransfer
	}
}

func containsAddress(addresses []string, addr string) bool {
	for _, a := range addresses {
		if a == addr {
			return true
		}
	}
	return false
}
