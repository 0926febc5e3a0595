package solana

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// realRPCClient adapts *rpc.Client to the RPCClient interface. The library's
// GetSignaturesForAddress takes no options, so the adapter delegates to the
// WithOpts variant to keep pagination in one method.
type realRPCClient struct {
	client *rpc.Client
}

var _ RPCClient = (*realRPCClient)(nil)

// NewRPCClient wraps a solana-go RPC client for the given endpoint. Premium
// endpoints carry their API key in the URL.
func NewRPCClient(rpcURL string) RPCClient {
	return &realRPCClient{client: rpc.New(rpcURL)}
}

func (r *realRPCClient) GetSignaturesForAddress(
	ctx context.Context,
	address solana.PublicKey,
	opts *rpc.GetSignaturesForAddressOpts,
) ([]*rpc.TransactionSignature, error) {
	return r.client.GetSignaturesForAddressWithOpts(ctx, address, opts)
}

func (r *realRPCClient) GetTransaction(
	ctx context.Context,
	signature solana.Signature,
	opts *rpc.GetTransactionOpts,
) (*rpc.GetTransactionResult, error) {
	return r.client.GetTransaction(ctx, signature, opts)
}
