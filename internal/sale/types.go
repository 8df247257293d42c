// internal/sale/types.go
package sale

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/candy-mint/internal/candymachine"
)

// Wallet is the buyer's signing capability. The session never owns its
// lifecycle.
type Wallet interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// StateReader reads sale state from the ledger.
type StateReader interface {
	Read(ctx context.Context, candyMachine solana.PublicKey) (candymachine.SaleState, error)
}

// TxBuilder builds unsigned purchase transactions.
type TxBuilder interface {
	Build(req candymachine.PurchaseRequest) (*candymachine.UnsignedTransaction, error)
}

// Confirmer submits a signed transaction and waits for its outcome.
type Confirmer interface {
	Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	Confirm(ctx context.Context, sig solana.Signature, timeout time.Duration, commitment rpc.CommitmentType) (transaction.Outcome, error)
}

// Phase of the session state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRefreshing
	PhaseReady
	PhasePurchasing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRefreshing:
		return "refreshing"
	case PhaseReady:
		return "ready"
	case PhasePurchasing:
		return "purchasing"
	default:
		return "unknown"
	}
}

// AttemptStatus tracks one purchase attempt.
type AttemptStatus int

const (
	AttemptBuilding AttemptStatus = iota
	AttemptAwaitingSignature
	AttemptSubmitted
	AttemptConfirmed
	AttemptFailed
	AttemptTimedOut
)

func (s AttemptStatus) String() string {
	switch s {
	case AttemptBuilding:
		return "building"
	case AttemptAwaitingSignature:
		return "awaiting_signature"
	case AttemptSubmitted:
		return "submitted"
	case AttemptConfirmed:
		return "confirmed"
	case AttemptFailed:
		return "failed"
	case AttemptTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s AttemptStatus) Terminal() bool {
	return s == AttemptConfirmed || s == AttemptFailed || s == AttemptTimedOut
}

// PurchaseAttempt is one user-initiated purchase.
type PurchaseAttempt struct {
	ID        string
	Buyer     solana.PublicKey
	Status    AttemptStatus
	Signature *solana.Signature
	Mint      *solana.PublicKey
	Failure   *candymachine.FailureKind
	// Cancelled is set when a wallet switch or Close abandoned the attempt.
	Cancelled  bool
	StartedAt  time.Time
	FinishedAt time.Time
}

func (a *PurchaseAttempt) clone() *PurchaseAttempt {
	if a == nil {
		return nil
	}
	out := *a
	if a.Signature != nil {
		sig := *a.Signature
		out.Signature = &sig
	}
	if a.Mint != nil {
		mint := *a.Mint
		out.Mint = &mint
	}
	if a.Failure != nil {
		kind := *a.Failure
		out.Failure = &kind
	}
	return &out
}

// Severity of an alert.
type Severity int

const (
	SeveritySuccess Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeveritySuccess {
		return "success"
	}
	return "error"
}

// AlertState is the single user-visible notification. Each terminal
// transition overwrites it.
type AlertState struct {
	Visible  bool
	Message  string
	Severity Severity
}

const (
	MessageMintSucceeded = "Congratulations! Mint succeeded!"
	MessageReadFailed    = "Could not load sale state. Please try again."
)

// Balance of the bound wallet.
type Balance struct {
	Lamports  uint64
	Known     bool
	UpdatedAt time.Time
}

// SOL returns the balance in SOL.
func (b Balance) SOL() decimal.Decimal {
	return LamportsToSOL(b.Lamports)
}

// LamportsToSOL converts lamports to SOL without rounding.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Shift(-9)
}

// View is a read-only snapshot of the session for rendering.
type View struct {
	Phase         Phase
	WalletBound   bool
	WalletAddress solana.PublicKey
	State         *candymachine.SaleState
	Active        bool
	SoldOut       bool
	BuildFault    bool
	CanPurchase   bool
	// GoLive is the effective go-live time, zero when unknown.
	GoLive time.Time
	// CountdownRemaining is zero once active.
	CountdownRemaining time.Duration
	PriceLamports      uint64
	Balance            Balance
	Alert              AlertState
	LastAttempt        *PurchaseAttempt
}
