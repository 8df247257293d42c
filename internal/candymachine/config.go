// =============================
// File: internal/candymachine/config.go
// =============================
package candymachine

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// Known candy machine addresses
var (
	// Program ID of the candy machine v1 program
	CandyMachineProgramID = solana.MustPublicKeyFromBase58("cndyAnrLdpjq1Ssp1z8xxDsB8dxe7u4HL5Nxi2K5WXZ")
)

// Custom error codes raised by the candy machine program.
const (
	ErrCodeNotEnoughSOL      = 0x135 // 309
	ErrCodeCandyMachineEmpty = 0x137 // 311
	ErrCodeNotLiveYet        = 0x138 // 312
)

const (
	// MintAccountSize is the size of an SPL mint account.
	MintAccountSize = token.MINT_SIZE
	// MintRentExemptLamports is the rent-exempt minimum for MintAccountSize bytes.
	MintRentExemptLamports uint64 = 1_461_600

	DefaultConfirmTimeout = 30 * time.Second
	// DefaultPriceLamports is 0.15 SOL.
	DefaultPriceLamports uint64 = 150_000_000
)

// PaymentScheme selects how the buyer pays the treasury.
type PaymentScheme string

const (
	// PaymentTransfer adds an explicit system transfer buyer -> treasury.
	PaymentTransfer PaymentScheme = "transfer"
	// PaymentProgram leaves payment to the candy machine program itself.
	PaymentProgram PaymentScheme = "program"
)

// SaleConfig holds the sale parameters. Loaded once, never mutated.
type SaleConfig struct {
	CandyMachine solana.PublicKey
	Config       solana.PublicKey
	Treasury     solana.PublicKey
	// GoLive is used when the account carries no go-live date.
	GoLive         time.Time
	ConfirmTimeout time.Duration

	PriceLamports uint64
	ProgramID     solana.PublicKey
	Commitment    rpc.CommitmentType
	PaymentScheme PaymentScheme
}

// WithDefaults fills zero optional fields.
func (c SaleConfig) WithDefaults() SaleConfig {
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = DefaultConfirmTimeout
	}
	if c.ProgramID.IsZero() {
		c.ProgramID = CandyMachineProgramID
	}
	if c.Commitment == "" {
		c.Commitment = rpc.CommitmentConfirmed
	}
	if c.PaymentScheme == "" {
		c.PaymentScheme = PaymentTransfer
	}
	return c
}

// Validate checks that every required field is set.
func (c SaleConfig) Validate() error {
	if c.CandyMachine.IsZero() {
		return fmt.Errorf("candy machine address is required")
	}
	if c.Config.IsZero() {
		return fmt.Errorf("candy machine config address is required")
	}
	if c.Treasury.IsZero() {
		return fmt.Errorf("treasury address is required")
	}
	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("confirm timeout must be positive, got %s", c.ConfirmTimeout)
	}
	switch c.PaymentScheme {
	case PaymentTransfer:
		if c.PriceLamports == 0 {
			return fmt.Errorf("price is required for payment scheme %q", c.PaymentScheme)
		}
	case PaymentProgram:
	default:
		return fmt.Errorf("unknown payment scheme %q", c.PaymentScheme)
	}
	return nil
}
