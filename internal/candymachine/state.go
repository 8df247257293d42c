// =============================================
// File: internal/candymachine/state.go
// =============================================
package candymachine

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain"
)

// SaleState is one consistent snapshot of the sale contract.
type SaleState struct {
	Exists         bool
	ItemsAvailable uint64
	ItemsRedeemed  uint64
	ItemsRemaining uint64
	GoLiveDate     time.Time
	// Active is GoLiveDate <= now at the time of the read.
	Active bool
	ReadAt time.Time

	Authority     solana.PublicKey
	Wallet        solana.PublicKey
	Config        solana.PublicKey
	TokenMint     *solana.PublicKey
	PriceLamports uint64
	UUID          string
}

// SoldOut is derived from ItemsRemaining so the two can never disagree.
func (s SaleState) SoldOut() bool {
	return s.ItemsRemaining == 0
}

// StateReader читает и декодирует аккаунт candy machine. Без кэша.
type StateReader struct {
	client    blockchain.LedgerClient
	programID solana.PublicKey
	goLive    time.Time
	now       func() time.Time
	logger    *zap.Logger
}

// ReaderOption настраивает StateReader.
type ReaderOption func(*StateReader)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) ReaderOption {
	return func(r *StateReader) {
		r.now = now
	}
}

func NewStateReader(client blockchain.LedgerClient, cfg SaleConfig, logger *zap.Logger, opts ...ReaderOption) *StateReader {
	cfg = cfg.WithDefaults()
	r := &StateReader{
		client:    client,
		programID: cfg.ProgramID,
		goLive:    cfg.GoLive,
		now:       time.Now,
		logger:    logger.Named("cm-reader"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read fetches the candy machine account and derives a SaleState.
// A missing account is not an error: the sale is reported sold out and
// inactive until the account appears.
func (r *StateReader) Read(ctx context.Context, candyMachine solana.PublicKey) (SaleState, error) {
	info, err := r.client.GetAccountInfo(ctx, candyMachine)
	if err != nil {
		return SaleState{}, &ReadError{Address: candyMachine, Reason: "fetch account", Err: err}
	}

	readAt := r.now()
	if info == nil {
		r.logger.Debug("Candy machine account not found", zap.String("address", candyMachine.String()))
		return SaleState{Exists: false, ReadAt: readAt}, nil
	}

	if !info.Owner.Equals(r.programID) {
		return SaleState{}, &ReadError{
			Address: candyMachine,
			Reason:  fmt.Sprintf("incorrect owner: expected %s, got %s", r.programID, info.Owner),
		}
	}

	account, err := DecodeCandyMachine(info.Data)
	if err != nil {
		return SaleState{}, &ReadError{Address: candyMachine, Reason: "decode account", Err: err}
	}

	state := r.stateFromAccount(account, readAt)
	r.logger.Debug("Candy machine state read",
		zap.String("address", candyMachine.String()),
		zap.Uint64("items_available", state.ItemsAvailable),
		zap.Uint64("items_redeemed", state.ItemsRedeemed),
		zap.Time("go_live", state.GoLiveDate),
		zap.Bool("active", state.Active))

	return state, nil
}

func (r *StateReader) stateFromAccount(account *CandyMachineAccount, readAt time.Time) SaleState {
	var remaining uint64
	if account.Data.ItemsAvailable > account.ItemsRedeemed {
		remaining = account.Data.ItemsAvailable - account.ItemsRedeemed
	}

	goLive := r.goLive
	if account.Data.GoLiveDate != nil {
		goLive = time.Unix(*account.Data.GoLiveDate, 0)
	}

	return SaleState{
		Exists:         true,
		ItemsAvailable: account.Data.ItemsAvailable,
		ItemsRedeemed:  account.ItemsRedeemed,
		ItemsRemaining: remaining,
		GoLiveDate:     goLive,
		Active:         !goLive.IsZero() && !readAt.Before(goLive),
		ReadAt:         readAt,
		Authority:      account.Authority,
		Wallet:         account.Wallet,
		Config:         account.Config,
		TokenMint:      account.TokenMint,
		PriceLamports:  account.Data.Price,
		UUID:           account.Data.UUID,
	}
}
