package service

import (
	"solana-wallet-forensics/internal/domain/entity"
)

// GraphBuilder converts a transfer list into the relationship graph. Every
// build starts from an empty graph; there is no state carried across calls.
type GraphBuilder struct{}

// NewGraphBuilder creates a graph builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{}
}

// Build upserts a node for each sender, receiver, program, and token mint a
// transfer touches, recording the transfer's signature against every touched
// node. A directed sender->receiver edge is added only when both endpoints
// are present. Node kinds are assigned at first sight and never change.
func (b *GraphBuilder) Build(transfers []*entity.TransferRecord) *entity.TransferGraph {
	graph := entity.NewTransferGraph()

	for _, transfer := range transfers {
		if transfer == nil {
			continue
		}

		var sender, receiver *entity.GraphNode
		if transfer.Sender != nil && *transfer.Sender != "" {
			sender = graph.Upsert(*transfer.Sender, entity.NodeKindWallet)
			sender.Touch(transfer.Signature)
		}
		if transfer.Receiver != nil && *transfer.Receiver != "" {
			receiver = graph.Upsert(*transfer.Receiver, entity.NodeKindWallet)
			receiver.Touch(transfer.Signature)
		}
		if transfer.ProgramID != nil && *transfer.ProgramID != "" {
			graph.Upsert(*transfer.ProgramID, entity.NodeKindProgram).Touch(transfer.Signature)
		}
		for _, token := range transfer.TokenTransfers {
			if token.Mint != "" {
				graph.Upsert(token.Mint, entity.NodeKindToken).Touch(transfer.Signature)
			}
		}

		if sender != nil && receiver != nil {
			sender.Outgoing[receiver.Address]++
			receiver.Incoming[sender.Address]++
		}
	}

	return graph
}
