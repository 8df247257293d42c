// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// AccountInfo is the subset of an on-chain account the sale module reads.
type AccountInfo struct {
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// SignatureStatus is the ledger's view of a submitted transaction.
type SignatureStatus struct {
	Slot               uint64
	ConfirmationStatus rpc.ConfirmationStatusType
	// Confirmed reports whether ConfirmationStatus reached the commitment
	// the caller asked for.
	Confirmed bool
	// Err is the raw error payload, nil when the transaction succeeded.
	Err interface{}
}

// LedgerClient определяет узкий контракт с блокчейном, которым пользуется модуль продажи.
type LedgerClient interface {
	// Получить аккаунт. (nil, nil) если аккаунт не существует.
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*AccountInfo, error)
	// Получить баланс в лампортах.
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	// Получить последний blockhash.
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	// Отправить подписанную транзакцию.
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// Получить статус подписи. (nil, nil) если статус ещё неизвестен.
	GetSignatureStatus(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) (*SignatureStatus, error)
}

// CommitmentReached reports whether a status observed at level status
// satisfies the requested commitment.
func CommitmentReached(status rpc.ConfirmationStatusType, requested rpc.CommitmentType) bool {
	return statusRank(status) >= commitmentRank(requested)
}

func statusRank(status rpc.ConfirmationStatusType) int {
	switch status {
	case rpc.ConfirmationStatusProcessed:
		return 1
	case rpc.ConfirmationStatusConfirmed:
		return 2
	case rpc.ConfirmationStatusFinalized:
		return 3
	default:
		return 0
	}
}

func commitmentRank(commitment rpc.CommitmentType) int {
	switch commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentRecent:
		return 1
	case rpc.CommitmentConfirmed, rpc.CommitmentSingleGossip, rpc.CommitmentSingle:
		return 2
	case rpc.CommitmentFinalized, rpc.CommitmentMax, rpc.CommitmentRoot:
		return 3
	default:
		return 2
	}
}

// NormalizeCommitment maps deprecated commitment names onto the current ones.
func NormalizeCommitment(commitment rpc.CommitmentType) rpc.CommitmentType {
	switch commitmentRank(commitment) {
	case 1:
		return rpc.CommitmentProcessed
	case 3:
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}
