package service

import (
	"fmt"
	"testing"

	"solana-wallet-forensics/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// link adds a directed edge and a shared signature between two existing
// nodes of the graph.
func link(graph *entity.TransferGraph, from, to, sig string) {
	a := graph.Node(from)
	b := graph.Node(to)
	a.Outgoing[to]++
	b.Incoming[from]++
	a.Touch(sig)
	b.Touch(sig)
}

func TestPathAnalyzer_FindsChainPaths(t *testing.T) {
	graph := entity.NewTransferGraph()
	for _, addr := range []string{"alice", "bob", "carol"} {
		graph.Upsert(addr, entity.NodeKindWallet)
	}
	link(graph, "alice", "bob", "sig1")
	link(graph, "bob", "carol", "sig2")

	paths := NewPathAnalyzer().FindSignificantPaths(graph)
	require.NotEmpty(t, paths)

	// Every emitted path spans at least two addresses.
	var full *entity.TransferPath
	for _, p := range paths {
		assert.GreaterOrEqual(t, p.Length(), 2)
		if len(p.Addresses) == 3 {
			full = p
		}
	}

	require.NotNil(t, full)
	assert.Equal(t, []string{"alice", "bob", "carol"}, full.Addresses)
	assert.Equal(t, entity.PathComplexFlow, full.Classification)
	assert.ElementsMatch(t, []string{"sig1", "sig2"}, full.Signatures)

	// Three wallet nodes (0.3), two signatures (0.2), two edges each of
	// strength 2 (0.2).
	assert.InDelta(t, 0.7, full.Significance, 1e-9)
}

func TestPathAnalyzer_SortedBySignificanceDescending(t *testing.T) {
	graph := entity.NewTransferGraph()
	for _, addr := range []string{"a", "b", "c", "d"} {
		graph.Upsert(addr, entity.NodeKindWallet)
	}
	link(graph, "a", "b", "sig1")
	link(graph, "b", "c", "sig2")
	link(graph, "c", "d", "sig3")

	paths := NewPathAnalyzer().FindSignificantPaths(graph)
	require.NotEmpty(t, paths)
	for i := 1; i < len(paths); i++ {
		assert.GreaterOrEqual(t, paths[i-1].Significance, paths[i].Significance)
	}
}

func TestPathAnalyzer_DepthBound(t *testing.T) {
	graph := entity.NewTransferGraph()
	addrs := []string{"w0", "w1", "w2", "w3", "w4", "w5"}
	for _, addr := range addrs {
		graph.Upsert(addr, entity.NodeKindWallet)
	}
	for i := 0; i < len(addrs)-1; i++ {
		link(graph, addrs[i], addrs[i+1], fmt.Sprintf("sig%d", i))
	}

	paths := NewPathAnalyzer().FindSignificantPaths(graph)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		assert.LessOrEqual(t, len(p.Addresses), 4)
	}
}

func TestPathAnalyzer_NoOutgoingEdgesNoPaths(t *testing.T) {
	graph := entity.NewTransferGraph()
	graph.Upsert("sink", entity.NodeKindWallet)

	paths := NewPathAnalyzer().FindSignificantPaths(graph)
	assert.Empty(t, paths)
}

func TestPathAnalyzer_CycleNeverRevisitsWithinOnePath(t *testing.T) {
	graph := entity.NewTransferGraph()
	for _, addr := range []string{"x", "y"} {
		graph.Upsert(addr, entity.NodeKindWallet)
	}
	link(graph, "x", "y", "sig1")
	link(graph, "y", "x", "sig2")

	paths := NewPathAnalyzer().FindSignificantPaths(graph)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		seen := map[string]bool{}
		for _, addr := range p.Addresses {
			assert.False(t, seen[addr], "address %s repeated in path %v", addr, p.Addresses)
			seen[addr] = true
		}
	}
}

func TestPathAnalyzer_ProgramNodeClassification(t *testing.T) {
	graph := entity.NewTransferGraph()
	graph.Upsert("wallet", entity.NodeKindWallet)
	graph.Upsert("program", entity.NodeKindProgram)
	link(graph, "wallet", "program", "sig1")

	paths := NewPathAnalyzer().FindSignificantPaths(graph)
	require.Len(t, paths, 1)
	assert.Equal(t, entity.PathProgramInteraction, paths[0].Classification)
}

func TestPathAnalyzer_SignificanceClampedToOne(t *testing.T) {
	graph := entity.NewTransferGraph()
	graph.Upsert("hub", entity.NodeKindWallet)
	graph.Upsert("spoke", entity.NodeKindWallet)
	for i := 0; i < 20; i++ {
		link(graph, "hub", "spoke", fmt.Sprintf("sig%d", i))
	}

	paths := NewPathAnalyzer().FindSignificantPaths(graph)
	require.NotEmpty(t, paths)
	assert.Equal(t, 1.0, paths[0].Significance)
}

func TestPathAnalyzer_EmptyGraph(t *testing.T) {
	assert.Empty(t, NewPathAnalyzer().FindSignificantPaths(entity.NewTransferGraph()))
	assert.Empty(t, NewPathAnalyzer().FindSignificantPaths(nil))
}
