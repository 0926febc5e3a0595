package solana

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solana-wallet-forensics/internal/domain/entity"
	"solana-wallet-forensics/internal/domain/service"
	"solana-wallet-forensics/internal/infrastructure/config"
	"solana-wallet-forensics/internal/infrastructure/logger"
	"solana-wallet-forensics/internal/infrastructure/metrics"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// RPCClient is the subset of the Solana RPC surface the acquisition layer
// needs. Tests substitute a fake so no real node is hit.
type RPCClient interface {
	GetSignaturesForAddress(
		ctx context.Context,
		address solana.PublicKey,
		opts *rpc.GetSignaturesForAddressOpts,
	) ([]*rpc.TransactionSignature, error)

	GetTransaction(
		ctx context.Context,
		signature solana.Signature,
		opts *rpc.GetTransactionOpts,
	) (*rpc.GetTransactionResult, error)
}

// Client fetches transfer history for a wallet over Solana RPC. It pages
// through GetSignaturesForAddress and resolves each signature to a full
// transaction, throttling between requests to respect public RPC limits.
type Client struct {
	rpc     RPCClient
	config  *config.SolanaConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewClient creates a Solana transfer source from configuration.
func NewClient(cfg *config.SolanaConfig, m *metrics.Metrics, log *logger.Logger) *Client {
	return &Client{
		rpc:     NewRPCClient(cfg.RPCURL),
		config:  cfg,
		logger:  log.WithComponent("solana-client"),
		metrics: m,
	}
}

// NewClientWithRPC creates a client around an existing RPC implementation.
func NewClientWithRPC(rpcClient RPCClient, cfg *config.SolanaConfig, m *metrics.Metrics, log *logger.Logger) *Client {
	return &Client{
		rpc:     rpcClient,
		config:  cfg,
		logger:  log.WithComponent("solana-client"),
		metrics: m,
	}
}

var _ service.TransferSource = (*Client)(nil)

// FetchTransfers retrieves up to limit transfer records for the address,
// newest first. Signatures whose transaction details cannot be fetched
// degrade to metadata-only records rather than failing the whole fetch.
func (c *Client) FetchTransfers(ctx context.Context, address string, limit int) ([]*entity.TransferRecord, error) {
	wallet, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address %q: %w", address, err)
	}
	if limit <= 0 {
		limit = c.config.PageSize
	}

	c.logger.Info("Fetching transfers",
		zap.String("wallet", address),
		zap.Int("limit", limit))

	signatures, err := c.fetchSignatures(ctx, wallet, limit)
	if err != nil {
		return nil, err
	}

	transfers := make([]*entity.TransferRecord, 0, len(signatures))
	for _, sig := range signatures {
		if err := c.throttle(ctx); err != nil {
			return transfers, err
		}

		result, err := c.fetchTransaction(ctx, sig.Signature)
		if err != nil {
			c.logger.Warn("Using metadata-only record after failed transaction fetch",
				zap.String("signature", sig.Signature.String()),
				zap.Error(err))
			record := signatureToRecord(sig)
			record.Network = c.config.Network
			transfers = append(transfers, record)
			continue
		}

		record, err := recordFromResult(sig, result)
		if err != nil {
			c.logger.Warn("Using metadata-only record after parse failure",
				zap.String("signature", sig.Signature.String()),
				zap.Error(err))
			record = signatureToRecord(sig)
		}
		record.Network = c.config.Network
		transfers = append(transfers, record)
	}

	c.metrics.RecordTransfersIngested("rpc", len(transfers))
	c.logger.Info("Fetched transfers",
		zap.String("wallet", address),
		zap.Int("count", len(transfers)))

	return transfers, nil
}

// fetchSignatures pages backwards through the signature history until limit
// records are collected or the chain end is reached.
func (c *Client) fetchSignatures(ctx context.Context, wallet solana.PublicKey, limit int) ([]*rpc.TransactionSignature, error) {
	var all []*rpc.TransactionSignature
	var before solana.Signature

	for page := 0; page < c.config.MaxPages && len(all) < limit; page++ {
		pageSize := c.config.PageSize
		if remaining := limit - len(all); remaining < pageSize {
			pageSize = remaining
		}
		opts := &rpc.GetSignaturesForAddressOpts{Limit: &pageSize}
		if !before.IsZero() {
			opts.Before = before
		}

		start := time.Now()
		sigs, err := c.rpc.GetSignaturesForAddress(ctx, wallet, opts)
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordRPCCall("GetSignaturesForAddress", status, time.Since(start).Seconds())

		if err != nil {
			return nil, fmt.Errorf("failed to get signatures for %s: %w", wallet, err)
		}
		if len(sigs) == 0 {
			break
		}

		all = append(all, sigs...)
		before = sigs[len(sigs)-1].Signature

		if err := c.throttle(ctx); err != nil {
			return all, err
		}
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// fetchTransaction resolves one signature with retry and backoff. Rate
// limited responses back off longer than ordinary errors.
func (c *Client) fetchTransaction(ctx context.Context, signature solana.Signature) (*rpc.GetTransactionResult, error) {
	maxVersion := uint64(0)
	opts := &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		MaxSupportedTransactionVersion: &maxVersion,
	}

	var result *rpc.GetTransactionResult
	var err error

	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.config.RequestTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		}

		start := time.Now()
		result, err = c.rpc.GetTransaction(callCtx, signature, opts)
		cancel()
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordRPCCall("GetTransaction", status, time.Since(start).Seconds())

		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var backoff time.Duration
		if strings.Contains(err.Error(), "429") {
			backoff = time.Duration(2<<uint(attempt)) * time.Second
			c.metrics.RecordRateLimitHit("GetTransaction")
			c.metrics.RecordRPCRetry("GetTransaction", "rate_limit")
			c.logger.Warn("Rate limited, backing off",
				zap.String("signature", signature.String()),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff))
		} else {
			backoff = time.Duration(1<<uint(attempt)) * time.Second
			c.metrics.RecordRPCRetry("GetTransaction", "error")
			c.logger.Warn("Transaction fetch failed, retrying",
				zap.String("signature", signature.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, err
}

// throttle waits the configured request delay, abandoning the wait when the
// context is cancelled.
func (c *Client) throttle(ctx context.Context) error {
	if c.config.RequestDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.config.RequestDelay):
		return nil
	}
}
