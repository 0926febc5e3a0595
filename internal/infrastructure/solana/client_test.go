package solana

import (
	"testing"

	"solana-wallet-forensics/internal/infrastructure/config"
	"solana-wallet-forensics/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRPCClient(t *testing.T) {
	// NewRPCClient returns the adapter over *rpc.Client; the assignment
	// below fails to compile if the adapter drifts from the interface.
	var client RPCClient = NewRPCClient("http://localhost:8899")
	assert.NotNil(t, client)
}

func TestNewClientWiresAdapter(t *testing.T) {
	log, err := logger.NewLogger("error", "development")
	require.NoError(t, err)

	cfg := &config.SolanaConfig{RPCURL: "http://localhost:8899"}
	c := NewClient(cfg, nil, log)

	require.NotNil(t, c.rpc)
	assert.IsType(t, &realRPCClient{}, c.rpc)
}
