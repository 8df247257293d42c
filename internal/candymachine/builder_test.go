// internal/candymachine/builder_test.go
package candymachine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testMintKey создаёт новую пару ключей для mint-аккаунта
func testMintKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func testRequest(t *testing.T) PurchaseRequest {
	return PurchaseRequest{
		Config:          testSaleConfig(),
		Buyer:           testKey(9),
		Treasury:        testTreasury,
		Mint:            testMintKey(t),
		RecentBlockhash: solana.Hash(testKey(7)),
	}
}

func programIDs(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	ids := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, inst := range tx.Message.Instructions {
		id, err := tx.Message.Program(inst.ProgramIDIndex)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestBuilderTransferScheme(t *testing.T) {
	req := testRequest(t)
	built, err := NewBuilder(zap.NewNop()).Build(req)
	require.NoError(t, err)

	assert.Equal(t, req.Mint.PublicKey(), built.Mint)
	require.Len(t, built.EphemeralSigners, 1)
	assert.Equal(t, req.Mint, built.EphemeralSigners[0])

	assert.Equal(t, []solana.PublicKey{
		solana.SystemProgramID,
		solana.TokenProgramID,
		solana.SPLAssociatedTokenAccountProgramID,
		solana.TokenProgramID,
		solana.SystemProgramID,
		CandyMachineProgramID,
	}, programIDs(t, built.Tx))

	// плательщик – покупатель
	assert.Equal(t, req.Buyer, built.Tx.Message.AccountKeys[0])
	assert.Equal(t, req.RecentBlockhash, built.Tx.Message.RecentBlockhash)

	last := built.Tx.Message.Instructions[len(built.Tx.Message.Instructions)-1]
	assert.True(t, bytes.Equal(MintNFTDiscriminator, last.Data))
	require.Len(t, last.Accounts, 14)
	accounts, err := last.ResolveInstructionAccounts(&built.Tx.Message)
	require.NoError(t, err)
	assert.Equal(t, testConfigAddr, accounts[0].PublicKey)
	assert.Equal(t, testCandyMachine, accounts[1].PublicKey)
	assert.Equal(t, req.Buyer, accounts[2].PublicKey)
	assert.Equal(t, testTreasury, accounts[3].PublicKey)
	assert.Equal(t, req.Mint.PublicKey(), accounts[5].PublicKey)
}

func TestBuilderProgramSchemeOmitsTransfer(t *testing.T) {
	req := testRequest(t)
	req.Config.PaymentScheme = PaymentProgram
	req.Config.PriceLamports = 0

	built, err := NewBuilder(zap.NewNop()).Build(req)
	require.NoError(t, err)

	ids := programIDs(t, built.Tx)
	require.Len(t, ids, 5)
	assert.Equal(t, CandyMachineProgramID, ids[4])
}

func TestBuilderSignerSet(t *testing.T) {
	req := testRequest(t)
	built, err := NewBuilder(zap.NewNop()).Build(req)
	require.NoError(t, err)

	signers := built.Tx.Message.Signers()
	assert.ElementsMatch(t, []solana.PublicKey{req.Buyer, req.Mint.PublicKey()}, []solana.PublicKey(signers))
}

func TestBuilderIsDeterministic(t *testing.T) {
	req := testRequest(t)
	b := NewBuilder(zap.NewNop())

	first, err := b.Build(req)
	require.NoError(t, err)
	second, err := b.Build(req)
	require.NoError(t, err)

	firstBytes, err := first.Tx.Message.MarshalBinary()
	require.NoError(t, err)
	secondBytes, err := second.Tx.Message.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, firstBytes, secondBytes)
}

func TestBuilderRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PurchaseRequest)
		field  string
	}{
		{"zero buyer", func(r *PurchaseRequest) { r.Buyer = solana.PublicKey{} }, "buyer"},
		{"zero treasury", func(r *PurchaseRequest) { r.Treasury = solana.PublicKey{} }, "treasury"},
		{"zero candy machine", func(r *PurchaseRequest) { r.Config.CandyMachine = solana.PublicKey{} }, "candy_machine"},
		{"zero config", func(r *PurchaseRequest) { r.Config.Config = solana.PublicKey{} }, "config"},
		{"missing mint key", func(r *PurchaseRequest) { r.Mint = nil }, "mint"},
		{"zero blockhash", func(r *PurchaseRequest) { r.RecentBlockhash = solana.Hash{} }, "recent_blockhash"},
		{"zero price", func(r *PurchaseRequest) { r.Config.PriceLamports = 0 }, "price"},
		{"unknown scheme", func(r *PurchaseRequest) { r.Config.PaymentScheme = "barter" }, "payment_scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest(t)
			tt.mutate(&req)

			_, err := NewBuilder(zap.NewNop()).Build(req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBuild))

			var buildErr *BuildError
			require.ErrorAs(t, err, &buildErr)
			assert.Equal(t, tt.field, buildErr.Field)
		})
	}
}

func TestFindMasterEditionAddressDiffersFromMetadata(t *testing.T) {
	mint := testKey(11)
	metadata, err := FindMetadataAddress(mint)
	require.NoError(t, err)
	edition, err := FindMasterEditionAddress(mint)
	require.NoError(t, err)
	assert.NotEqual(t, metadata, edition)
}
