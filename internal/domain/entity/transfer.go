package entity

import (
	"math"
	"sort"
	"time"
)

// TokenTransfer represents a single SPL token movement inside a transfer.
type TokenTransfer struct {
	Mint   string  `json:"mint"`
	Amount float64 `json:"amount"`
}

// TransferRecord represents one observed value movement for a wallet.
// Records are acquired once and never mutated afterwards; optional fields
// stay nil when the source did not provide them, they are never coerced.
type TransferRecord struct {
	Signature      string          `json:"signature"`
	BlockTime      *int64          `json:"block_time,omitempty"` // unix seconds
	Sender         *string         `json:"sender,omitempty"`
	Receiver       *string         `json:"receiver,omitempty"`
	Amount         *float64        `json:"amount,omitempty"` // SOL units
	ProgramID      *string         `json:"program_id,omitempty"`
	Fee            uint64          `json:"fee"`
	Err            *string         `json:"err,omitempty"`
	TokenTransfers []TokenTransfer `json:"token_transfers,omitempty"`
	Network        string          `json:"network,omitempty"`
}

// TransferEvent is the ingestion envelope: one transfer record observed
// for one watched focal wallet.
type TransferEvent struct {
	Wallet   string         `json:"wallet"`
	Transfer TransferRecord `json:"transfer"`
}

// HasAmount reports whether the record carries a usable amount: present,
// finite, and non-negative. Everything else is excluded from aggregates.
func (t *TransferRecord) HasAmount() bool {
	return t.Amount != nil && !math.IsNaN(*t.Amount) && !math.IsInf(*t.Amount, 0) && *t.Amount >= 0
}

// AmountValue returns the usable amount, or 0 when HasAmount is false.
func (t *TransferRecord) AmountValue() float64 {
	if !t.HasAmount() {
		return 0
	}
	return *t.Amount
}

// HasTimestamp reports whether the record carries a block time.
func (t *TransferRecord) HasTimestamp() bool {
	return t.BlockTime != nil
}

// Timestamp returns the block time, or the zero time when absent.
func (t *TransferRecord) Timestamp() time.Time {
	if t.BlockTime == nil {
		return time.Time{}
	}
	return time.Unix(*t.BlockTime, 0).UTC()
}

// Counterparty returns the non-focal side of the transfer relative to the
// given focal address, or "" when neither side is another known party.
func (t *TransferRecord) Counterparty(focal string) string {
	if t.Sender != nil && *t.Sender != focal {
		return *t.Sender
	}
	if t.Receiver != nil && *t.Receiver != focal {
		return *t.Receiver
	}
	return ""
}

// SortTransfersByTime returns a copy of transfers ordered by block time
// ascending. Records without a timestamp sort first; ties keep input order.
func SortTransfersByTime(transfers []*TransferRecord) []*TransferRecord {
	sorted := make([]*TransferRecord, len(transfers))
	copy(sorted, transfers)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.HasTimestamp() {
			return b.HasTimestamp()
		}
		if !b.HasTimestamp() {
			return false
		}
		return *a.BlockTime < *b.BlockTime
	})
	return sorted
}
