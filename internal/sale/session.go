// internal/sale/session.go
package sale

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain"
	"github.com/rovshanmuradov/candy-mint/internal/candymachine"
	"github.com/rovshanmuradov/candy-mint/internal/events"
)

// SessionConfig contains the collaborators of a sale session.
type SessionConfig struct {
	Sale    candymachine.SaleConfig // неизменяемые параметры продажи
	Ledger  blockchain.LedgerClient // баланс и blockhash
	Reader  StateReader
	Builder TxBuilder
	Watcher Confirmer
	Bus     *events.Bus // может быть nil
	Metrics *Metrics    // может быть nil
	Logger  *zap.Logger

	Clock      func() time.Time
	NewMintKey func() (solana.PrivateKey, error)
}

// Session drives one buyer's interaction with the sale.
//
// Phases: Idle → Refreshing → Ready → Purchasing → Ready. Two latches
// survive refreshes: active never returns to false, and sold-out is only
// cleared by an explicit Refresh that shows remaining supply.
type Session struct {
	cfg    SessionConfig
	logger *zap.Logger

	mu             sync.Mutex
	phase          Phase
	wallet         Wallet
	walletGen      uint64
	state          *candymachine.SaleState
	active         bool
	soldOut        bool
	buildFault     bool
	alert          AlertState
	balance        Balance
	attempt        *PurchaseAttempt
	refreshSeq     uint64
	purchaseCancel context.CancelFunc
	closed         bool
}

// NewSession creates an idle session with no wallet bound.
func NewSession(cfg SessionConfig) *Session {
	cfg.Sale = cfg.Sale.WithDefaults()
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewMintKey == nil {
		cfg.NewMintKey = solana.NewRandomPrivateKey
	}

	return &Session{
		cfg:    cfg,
		logger: cfg.Logger.Named("sale-session"),
		phase:  PhaseIdle,
	}
}

// BindWallet cancels any purchase in flight, binds w and loads sale state
// and balance for it. A failed balance read is not an error.
func (s *Session) BindWallet(ctx context.Context, w Wallet) error {
	if w == nil {
		return ErrNoWallet
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.cancelPurchaseLocked()
	s.wallet = w
	s.walletGen++
	s.state = nil
	s.attempt = nil
	s.balance = Balance{}
	gen := s.walletGen
	s.publishLocked(&events.WalletEvent{
		BaseEvent:     events.NewBase(events.WalletBound),
		WalletAddress: w.PublicKey().String(),
	})
	s.mu.Unlock()

	s.logger.Info("Wallet bound", zap.String("wallet", w.PublicKey().String()))

	var g errgroup.Group
	g.Go(func() error {
		return s.refresh(ctx, true)
	})
	g.Go(func() error {
		s.readBalance(ctx, gen, w.PublicKey())
		return nil
	})
	return g.Wait()
}

// UnbindWallet cancels any purchase in flight and returns to Idle.
func (s *Session) UnbindWallet() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wallet == nil {
		return
	}
	addr := s.wallet.PublicKey().String()

	s.cancelPurchaseLocked()
	s.wallet = nil
	s.walletGen++
	s.state = nil
	s.attempt = nil
	s.balance = Balance{}
	s.setPhaseLocked(PhaseIdle)
	s.publishLocked(&events.WalletEvent{
		BaseEvent:     events.NewBase(events.WalletUnbound),
		WalletAddress: addr,
	})
	s.logger.Info("Wallet unbound", zap.String("wallet", addr))
}

// Refresh re-reads the sale state on the user's request. It is the only
// operation that can clear the sold-out latch.
func (s *Session) Refresh(ctx context.Context) error {
	return s.refresh(ctx, true)
}

// Sync re-reads the sale state in the background. Errors are logged but
// not shown, and the sold-out latch is left alone.
func (s *Session) Sync(ctx context.Context) error {
	return s.refresh(ctx, false)
}

func (s *Session) refresh(ctx context.Context, explicit bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.wallet == nil {
		s.mu.Unlock()
		return ErrNoWallet
	}
	s.refreshSeq++
	seq, gen := s.refreshSeq, s.walletGen
	// Фоновое чтение при загруженном состоянии не снимает Ready.
	if s.phase != PhasePurchasing && (explicit || s.state == nil) {
		s.setPhaseLocked(PhaseRefreshing)
	}
	s.mu.Unlock()

	state, err := s.cfg.Reader.Read(ctx, s.cfg.Sale.CandyMachine)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Результат устарел: начато более позднее чтение или сменился кошелёк.
	if seq != s.refreshSeq || gen != s.walletGen || s.closed {
		s.logger.Debug("Discarding stale sale state read", zap.Uint64("seq", seq))
		return nil
	}

	if err != nil {
		s.cfg.Metrics.trackRefresh("error")
		s.logger.Warn("Failed to read sale state", zap.Error(err), zap.Bool("explicit", explicit))
		if s.phase != PhasePurchasing {
			if s.state == nil {
				s.setPhaseLocked(PhaseIdle)
			} else {
				s.setPhaseLocked(PhaseReady)
			}
		}
		if explicit {
			s.setAlertLocked(MessageReadFailed, SeverityError)
		}
		return err
	}

	s.cfg.Metrics.trackRefresh("ok")
	s.applyStateLocked(state, explicit)
	if s.phase != PhasePurchasing {
		s.setPhaseLocked(PhaseReady)
	}
	return nil
}

func (s *Session) applyStateLocked(state candymachine.SaleState, explicit bool) {
	s.state = &state

	if state.Active {
		s.active = true
	}
	s.observeClockLocked()

	switch {
	case !state.Exists:
		// Машина ещё не развёрнута: защёлку не трогаем.
	case state.SoldOut():
		s.soldOut = true
	case explicit && s.soldOut:
		s.logger.Info("Sold-out latch cleared by refresh",
			zap.Uint64("items_remaining", state.ItemsRemaining))
		s.soldOut = false
	}

	s.logger.Debug("Sale state updated",
		zap.Bool("exists", state.Exists),
		zap.Uint64("items_available", state.ItemsAvailable),
		zap.Uint64("items_remaining", state.ItemsRemaining),
		zap.Time("go_live", state.GoLiveDate),
		zap.Bool("active", s.active),
		zap.Bool("sold_out", s.soldOut))

	s.publishLocked(&events.SaleStateReadEvent{
		BaseEvent:      events.NewBase(events.SaleStateRead),
		Exists:         state.Exists,
		ItemsAvailable: state.ItemsAvailable,
		ItemsRemaining: state.ItemsRemaining,
		GoLive:         state.GoLiveDate,
		Active:         s.active,
		SoldOut:        s.soldOut,
	})
}

// CountdownComplete latches active once the clock has reached go-live.
// It reports whether the sale is active. The local clock may be skewed
// against the ledger; the program still rejects an early mint with 312.
func (s *Session) CountdownComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observeClockLocked()
	return s.active
}

func (s *Session) observeClockLocked() {
	if s.active {
		return
	}
	goLive := s.goLiveLocked()
	if goLive.IsZero() {
		return
	}
	if !s.cfg.Clock().Before(goLive) {
		s.active = true
		s.logger.Info("Sale is live", zap.Time("go_live", goLive))
	}
}

func (s *Session) goLiveLocked() time.Time {
	if s.state != nil && !s.state.GoLiveDate.IsZero() {
		return s.state.GoLiveDate
	}
	return s.cfg.Sale.GoLive
}

// DismissAlert hides the current alert.
func (s *Session) DismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alert.Visible {
		return
	}
	s.alert.Visible = false
	s.publishLocked(&events.AlertChangedEvent{
		BaseEvent: events.NewBase(events.AlertChanged),
		Visible:   false,
		Message:   s.alert.Message,
		Severity:  s.alert.Severity.String(),
	})
}

// Close cancels any purchase in flight. Further operations return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cancelPurchaseLocked()
	s.closed = true
	s.setPhaseLocked(PhaseIdle)
}

// Snapshot returns a copy of the session state for rendering.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observeClockLocked()

	v := View{
		Phase:         s.phase,
		WalletBound:   s.wallet != nil,
		Active:        s.active,
		SoldOut:       s.soldOutLocked(),
		BuildFault:    s.buildFault,
		GoLive:        s.goLiveLocked(),
		PriceLamports: s.cfg.Sale.PriceLamports,
		Balance:       s.balance,
		Alert:         s.alert,
		LastAttempt:   s.attempt.clone(),
	}
	if s.wallet != nil {
		v.WalletAddress = s.wallet.PublicKey()
	}
	if s.state != nil {
		state := *s.state
		v.State = &state
		if state.PriceLamports > 0 {
			v.PriceLamports = state.PriceLamports
		}
	}
	if !s.active && !v.GoLive.IsZero() {
		v.CountdownRemaining = v.GoLive.Sub(s.cfg.Clock())
	}
	v.CanPurchase = s.admitLocked() == nil
	return v
}

func (s *Session) soldOutLocked() bool {
	return s.soldOut || (s.state != nil && s.state.SoldOut())
}

// readBalance is best-effort: on failure the previous balance stays.
func (s *Session) readBalance(ctx context.Context, gen uint64, owner solana.PublicKey) {
	lamports, err := s.cfg.Ledger.GetBalance(ctx, owner)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("Failed to read wallet balance",
				zap.String("wallet", owner.String()), zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.walletGen {
		return
	}

	old := s.balance
	s.balance = Balance{Lamports: lamports, Known: true, UpdatedAt: s.cfg.Clock()}
	if old.Known && old.Lamports == lamports {
		return
	}
	s.logger.Debug("Wallet balance updated",
		zap.String("wallet", owner.String()),
		zap.String("sol", s.balance.SOL().String()))
	s.publishLocked(&events.BalanceChangedEvent{
		BaseEvent:     events.NewBase(events.BalanceChanged),
		WalletAddress: owner.String(),
		OldBalance:    old.Lamports,
		NewBalance:    lamports,
	})
}

// cancelPurchaseLocked cancels the purchase in flight. The cancelled
// attempt no longer owns the phase, so Purchasing drops back to Idle here.
func (s *Session) cancelPurchaseLocked() {
	if s.purchaseCancel == nil {
		return
	}
	s.purchaseCancel()
	s.purchaseCancel = nil
	s.cfg.Metrics.setInFlight(false)
	if s.phase == PhasePurchasing {
		s.setPhaseLocked(PhaseIdle)
	}
}

func (s *Session) setPhaseLocked(phase Phase) {
	if s.phase == phase {
		return
	}
	from := s.phase
	s.phase = phase
	s.publishLocked(&events.PhaseChangedEvent{
		BaseEvent: events.NewBase(events.PhaseChanged),
		From:      from.String(),
		To:        phase.String(),
	})
}

func (s *Session) setAlertLocked(message string, severity Severity) {
	s.alert = AlertState{Visible: true, Message: message, Severity: severity}
	s.publishLocked(&events.AlertChangedEvent{
		BaseEvent: events.NewBase(events.AlertChanged),
		Visible:   true,
		Message:   message,
		Severity:  severity.String(),
	})
}

// publishLocked never blocks: Bus.Publish drops on a full buffer.
func (s *Session) publishLocked(event events.Event) {
	if s.cfg.Bus == nil {
		return
	}
	if err := s.cfg.Bus.Publish(event); err != nil {
		s.logger.Debug("Event not published",
			zap.String("event_type", string(event.Type())), zap.Error(err))
	}
}
