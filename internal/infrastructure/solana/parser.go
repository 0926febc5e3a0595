package solana

import (
	"encoding/binary"
	"fmt"
	"math"

	"solana-wallet-forensics/internal/domain/entity"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Well-known Solana program IDs
var (
	// SystemProgramID is the native SOL transfer program (all-zeros key)
	SystemProgramID = solana.SystemProgramID

	// TokenProgramID is the SPL Token program
	TokenProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	// Token2022ProgramID is the Token Extensions program (Token-2022)
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

	// MemoProgramID is the SPL Memo program
	MemoProgramID = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
)

const (
	systemTransferInstruction = uint32(2)
	lamportsPerSOL            = 1_000_000_000
)

// signatureToRecord converts signature-list metadata to a transfer record.
// Sender, receiver, and amount are only available from the full transaction.
func signatureToRecord(sig *rpc.TransactionSignature) *entity.TransferRecord {
	record := &entity.TransferRecord{
		Signature: sig.Signature.String(),
	}

	if sig.BlockTime != nil {
		blockTime := int64(*sig.BlockTime)
		record.BlockTime = &blockTime
	}
	if sig.Err != nil {
		errMsg := fmt.Sprintf("transaction failed: %v", sig.Err)
		record.Err = &errMsg
	}

	return record
}

// recordFromResult parses a full transaction result into a transfer record,
// extracting the native transfer endpoints, the interacted program, the fee,
// and SPL token balance deltas.
func recordFromResult(sig *rpc.TransactionSignature, result *rpc.GetTransactionResult) (*entity.TransferRecord, error) {
	record := signatureToRecord(sig)

	// Failed or pruned transactions keep metadata only.
	if sig.Err != nil || result == nil {
		return record, nil
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	applyInstructions(record, tx.Message.Instructions, tx.Message.AccountKeys)

	if result.Meta != nil {
		record.Fee = result.Meta.Fee
		record.TokenTransfers = tokenDeltas(result.Meta)
	}

	return record, nil
}

// applyInstructions walks the compiled instructions, extracting native
// transfer endpoints and attributing the interacted program. System and memo
// instructions never count as the interacted program; SPL Token and
// Token-2022 instructions are plumbing around whatever program moved the
// tokens, so they are only reported when no other program appears.
func applyInstructions(record *entity.TransferRecord, instructions []solana.CompiledInstruction, accountKeys []solana.PublicKey) {
	var tokenProgram *string
	for _, instruction := range instructions {
		if int(instruction.ProgramIDIndex) >= len(accountKeys) {
			continue
		}
		programID := accountKeys[instruction.ProgramIDIndex]

		if programID.Equals(SystemProgramID) {
			if amount, from, to, err := parseSystemTransfer(instruction, accountKeys); err == nil {
				sol := float64(amount) / lamportsPerSOL
				record.Amount = &sol
				record.Sender = &from
				record.Receiver = &to
			}
			continue
		}
		if programID.Equals(MemoProgramID) {
			continue
		}
		if programID.Equals(TokenProgramID) || programID.Equals(Token2022ProgramID) {
			if tokenProgram == nil {
				program := programID.String()
				tokenProgram = &program
			}
			continue
		}

		if record.ProgramID == nil {
			program := programID.String()
			record.ProgramID = &program
		}
	}

	if record.ProgramID == nil {
		record.ProgramID = tokenProgram
	}
}

// parseSystemTransfer extracts lamports and endpoints from a System Program
// Transfer instruction.
func parseSystemTransfer(instruction solana.CompiledInstruction, accountKeys []solana.PublicKey) (uint64, string, string, error) {
	// System Transfer instruction format:
	// [0..4]  = instruction type (u32, 2 for Transfer)
	// [4..12] = lamports (u64)
	if len(instruction.Data) < 12 {
		return 0, "", "", fmt.Errorf("instruction data too short: %d bytes", len(instruction.Data))
	}
	if binary.LittleEndian.Uint32(instruction.Data[0:4]) != systemTransferInstruction {
		return 0, "", "", fmt.Errorf("not a transfer instruction")
	}
	if len(instruction.Accounts) < 2 {
		return 0, "", "", fmt.Errorf("transfer instruction missing accounts")
	}
	fromIdx, toIdx := int(instruction.Accounts[0]), int(instruction.Accounts[1])
	if fromIdx >= len(accountKeys) || toIdx >= len(accountKeys) {
		return 0, "", "", fmt.Errorf("account index out of range")
	}

	lamports := binary.LittleEndian.Uint64(instruction.Data[4:12])
	return lamports, accountKeys[fromIdx].String(), accountKeys[toIdx].String(), nil
}

// tokenDeltas derives per-account SPL token movements from the pre and post
// token balances. Only balance increases are reported, each as one inbound
// token movement for its mint.
func tokenDeltas(meta *rpc.TransactionMeta) []entity.TokenTransfer {
	pre := make(map[uint16]float64)
	for _, balance := range meta.PreTokenBalances {
		if balance.UiTokenAmount != nil && balance.UiTokenAmount.UiAmount != nil {
			pre[balance.AccountIndex] = *balance.UiTokenAmount.UiAmount
		}
	}

	var transfers []entity.TokenTransfer
	for _, balance := range meta.PostTokenBalances {
		if balance.UiTokenAmount == nil || balance.UiTokenAmount.UiAmount == nil {
			continue
		}
		delta := *balance.UiTokenAmount.UiAmount - pre[balance.AccountIndex]
		if delta <= 0 || math.IsNaN(delta) {
			continue
		}
		transfers = append(transfers, entity.TokenTransfer{
			Mint:   balance.Mint.String(),
			Amount: delta,
		})
	}

	return transfers
}
