// internal/candymachine/mocks_test.go
package candymachine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain"
)

// MockLedgerClient реализует интерфейс blockchain.LedgerClient
type MockLedgerClient struct {
	mock.Mock
}

func (m *MockLedgerClient) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*blockchain.AccountInfo, error) {
	args := m.Called(ctx, pubkey)
	info, _ := args.Get(0).(*blockchain.AccountInfo)
	return info, args.Error(1)
}

func (m *MockLedgerClient) GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	args := m.Called(ctx, pubkey)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockLedgerClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *MockLedgerClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *MockLedgerClient) GetSignatureStatus(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) (*blockchain.SignatureStatus, error) {
	args := m.Called(ctx, sig, commitment)
	status, _ := args.Get(0).(*blockchain.SignatureStatus)
	return status, args.Error(1)
}

var (
	testCandyMachine = testKey(1)
	testConfigAddr   = testKey(2)
	testTreasury     = testKey(3)
	testAuthority    = testKey(4)
)

// testKey возвращает детерминированный ключ из повторяющегося байта
func testKey(b byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, solana.PublicKeyLength))
}

func testSaleConfig() SaleConfig {
	return SaleConfig{
		CandyMachine:   testCandyMachine,
		Config:         testConfigAddr,
		Treasury:       testTreasury,
		GoLive:         time.Unix(1_640_000_000, 0),
		ConfirmTimeout: 30 * time.Second,
		PriceLamports:  DefaultPriceLamports,
	}.WithDefaults()
}

// candyMachineAccountData кодирует аккаунт с заданными счётчиками
func candyMachineAccountData(t *testing.T, available, redeemed uint64, goLive *int64) []byte {
	t.Helper()
	data, err := EncodeCandyMachine(&CandyMachineAccount{
		Authority: testAuthority,
		Wallet:    testTreasury,
		Config:    testConfigAddr,
		Data: CandyMachineData{
			UUID:           "8Y9Ljm",
			Price:          DefaultPriceLamports,
			ItemsAvailable: available,
			GoLiveDate:     goLive,
		},
		ItemsRedeemed: redeemed,
		Bump:          254,
	})
	require.NoError(t, err)
	return data
}

func int64Ptr(v int64) *int64 { return &v }
