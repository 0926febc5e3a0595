package solana

import (
	"encoding/binary"
	"testing"

	"solana-wallet-forensics/internal/domain/entity"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureToRecord_Metadata(t *testing.T) {
	sig := solana.Signature{1, 2, 3}
	blockTime := solana.UnixTimeSeconds(1717243200)
	raw := &rpc.TransactionSignature{
		Signature: sig,
		BlockTime: &blockTime,
	}

	record := signatureToRecord(raw)

	assert.Equal(t, sig.String(), record.Signature)
	require.NotNil(t, record.BlockTime)
	assert.Equal(t, int64(1717243200), *record.BlockTime)
	assert.Nil(t, record.Err)
	assert.Nil(t, record.Amount)
}

func TestSignatureToRecord_FailedTransaction(t *testing.T) {
	raw := &rpc.TransactionSignature{
		Signature: solana.Signature{7},
		Err:       map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}},
	}

	record := signatureToRecord(raw)

	require.NotNil(t, record.Err)
	assert.Contains(t, *record.Err, "transaction failed")
	assert.Nil(t, record.BlockTime)
}

func TestSystemProgramIDIsCanonical(t *testing.T) {
	// The System Program is the all-zeros key. A near-miss constant would
	// silently classify every native transfer as a program interaction.
	assert.True(t, SystemProgramID.Equals(solana.SystemProgramID))
	assert.Equal(t, "11111111111111111111111111111111", SystemProgramID.String())
}

func systemTransferInstructionData(lamports uint64) []byte {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], systemTransferInstruction)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	return data
}

func TestApplyInstructions_NativeTransfer(t *testing.T) {
	from := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	to := solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
	accountKeys := []solana.PublicKey{from, to, solana.SystemProgramID}

	instructions := []solana.CompiledInstruction{{
		ProgramIDIndex: 2,
		Accounts:       []uint16{0, 1},
		Data:           systemTransferInstructionData(2_000_000_000),
	}}

	record := &entity.TransferRecord{}
	applyInstructions(record, instructions, accountKeys)

	require.NotNil(t, record.Amount)
	assert.InDelta(t, 2.0, *record.Amount, 1e-9)
	require.NotNil(t, record.Sender)
	assert.Equal(t, from.String(), *record.Sender)
	require.NotNil(t, record.Receiver)
	assert.Equal(t, to.String(), *record.Receiver)
	// The System Program itself is never the interacted program.
	assert.Nil(t, record.ProgramID)
}

func TestApplyInstructions_PrefersNonTokenProgram(t *testing.T) {
	dex := solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	accountKeys := []solana.PublicKey{TokenProgramID, dex}

	instructions := []solana.CompiledInstruction{
		{ProgramIDIndex: 0},
		{ProgramIDIndex: 1},
	}

	record := &entity.TransferRecord{}
	applyInstructions(record, instructions, accountKeys)

	require.NotNil(t, record.ProgramID)
	assert.Equal(t, dex.String(), *record.ProgramID)
}

func TestApplyInstructions_TokenProgramAloneIsReported(t *testing.T) {
	accountKeys := []solana.PublicKey{Token2022ProgramID}
	instructions := []solana.CompiledInstruction{{ProgramIDIndex: 0}}

	record := &entity.TransferRecord{}
	applyInstructions(record, instructions, accountKeys)

	require.NotNil(t, record.ProgramID)
	assert.Equal(t, Token2022ProgramID.String(), *record.ProgramID)
}

func TestParseSystemTransfer(t *testing.T) {
	from := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	to := solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
	accountKeys := []solana.PublicKey{from, to, SystemProgramID}

	instruction := solana.CompiledInstruction{
		ProgramIDIndex: 2,
		Accounts:       []uint16{0, 1},
		Data:           systemTransferInstructionData(1_500_000_000), // 1.5 SOL
	}

	lamports, sender, receiver, err := parseSystemTransfer(instruction, accountKeys)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), lamports)
	assert.Equal(t, from.String(), sender)
	assert.Equal(t, to.String(), receiver)
}

func TestParseSystemTransfer_RejectsOtherInstructions(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 1) // CreateAccount, not Transfer

	instruction := solana.CompiledInstruction{
		Accounts: []uint16{0, 1},
		Data:     data,
	}

	_, _, _, err := parseSystemTransfer(instruction, nil)
	assert.Error(t, err)
}

func TestParseSystemTransfer_ShortData(t *testing.T) {
	instruction := solana.CompiledInstruction{Data: []byte{2, 0}}
	_, _, _, err := parseSystemTransfer(instruction, nil)
	assert.Error(t, err)
}

func TestTokenDeltas(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	pre := 10.0
	post := 35.5
	drained := 4.0
	zero := 0.0

	meta := &rpc.TransactionMeta{
		PreTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 1, Mint: mint, UiTokenAmount: &rpc.UiTokenAmount{UiAmount: &pre}},
			{AccountIndex: 2, Mint: mint, UiTokenAmount: &rpc.UiTokenAmount{UiAmount: &drained}},
		},
		PostTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 1, Mint: mint, UiTokenAmount: &rpc.UiTokenAmount{UiAmount: &post}},
			{AccountIndex: 2, Mint: mint, UiTokenAmount: &rpc.UiTokenAmount{UiAmount: &zero}},
		},
	}

	deltas := tokenDeltas(meta)

	// Only the balance increase is reported; the drained account is not.
	require.Len(t, deltas, 1)
	assert.Equal(t, mint.String(), deltas[0].Mint)
	assert.InDelta(t, 25.5, deltas[0].Amount, 1e-9)
}
