// internal/sale/purchase.go
package sale

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/candy-mint/internal/candymachine"
	"github.com/rovshanmuradov/candy-mint/internal/events"
	loggerpkg "github.com/rovshanmuradov/candy-mint/internal/utils/logger"
)

// RequestPurchase runs one purchase: build, sign, submit and confirm.
// Only one purchase may be in flight. Local rejections return before any
// ledger call. On completion the sale state and balance are re-read unless
// the attempt was cancelled. The returned attempt is a copy; err is nil
// only for a confirmed mint.
func (s *Session) RequestPurchase(ctx context.Context) (*PurchaseAttempt, error) {
	s.mu.Lock()
	if err := s.admitLocked(); err != nil {
		s.mu.Unlock()
		s.cfg.Metrics.trackRejection(rejectionReason(err))
		s.logger.Debug("Purchase rejected", zap.Error(err))
		return nil, err
	}

	pctx, cancel := context.WithCancel(ctx)
	attempt := &PurchaseAttempt{
		ID:        uuid.New().String(),
		Buyer:     s.wallet.PublicKey(),
		Status:    AttemptBuilding,
		StartedAt: s.cfg.Clock(),
	}
	s.attempt = attempt
	s.purchaseCancel = cancel
	w, gen := s.wallet, s.walletGen
	s.setPhaseLocked(PhasePurchasing)
	s.cfg.Metrics.setInFlight(true)
	s.publishLocked(s.purchaseEvent(events.PurchaseStarted, attempt, nil))
	s.mu.Unlock()
	defer cancel()

	p := &purchase{
		session: s,
		attempt: attempt,
		gen:     gen,
		wallet:  w,
		logger: loggerpkg.WithOperation(s.logger, "purchase").With(
			zap.String("attempt_id", attempt.ID),
			zap.String("wallet", attempt.Buyer.String())),
	}

	err := p.run(pctx)
	cancelled := p.finish(pctx, err)

	if !cancelled {
		// Остаток мог измениться независимо от исхода.
		if rerr := s.refresh(ctx, false); rerr != nil && !errors.Is(rerr, ErrClosed) {
			p.logger.Debug("Post-purchase refresh failed", zap.Error(rerr))
		}
		s.readBalance(ctx, gen, attempt.Buyer)
	}

	s.mu.Lock()
	out := attempt.clone()
	s.mu.Unlock()

	if cancelled {
		return out, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(pctx))
	}
	return out, err
}

// admitLocked is the local rejection check, in order of precedence.
func (s *Session) admitLocked() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.wallet == nil:
		return ErrNoWallet
	case s.purchaseCancel != nil:
		return ErrPurchaseInFlight
	case s.buildFault:
		return ErrBuildFault
	case s.phase != PhaseReady || s.state == nil:
		return ErrNotReady
	case s.soldOutLocked():
		return ErrSoldOut
	}
	s.observeClockLocked()
	if !s.active {
		return ErrNotLive
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, ErrNoWallet):
		return "no_wallet"
	case errors.Is(err, ErrPurchaseInFlight):
		return "in_flight"
	case errors.Is(err, ErrBuildFault):
		return "build_fault"
	case errors.Is(err, ErrSoldOut):
		return "sold_out"
	case errors.Is(err, ErrNotLive):
		return "not_live"
	default:
		return "not_ready"
	}
}

// purchase carries one attempt through its steps. Attempt fields are only
// written under the session mutex.
type purchase struct {
	session *Session
	attempt *PurchaseAttempt
	gen     uint64
	wallet  Wallet
	logger  *zap.Logger

	outcome *transaction.Outcome
}

func (p *purchase) run(ctx context.Context) error {
	s := p.session
	sale := s.cfg.Sale

	blockhash, err := s.cfg.Ledger.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	mintKey, err := s.cfg.NewMintKey()
	if err != nil {
		return fmt.Errorf("failed to generate mint keypair: %w", err)
	}

	unsigned, err := s.cfg.Builder.Build(candymachine.PurchaseRequest{
		Config:          sale,
		Buyer:           p.attempt.Buyer,
		Treasury:        sale.Treasury,
		Mint:            mintKey,
		RecentBlockhash: blockhash,
	})
	if err != nil {
		return err
	}
	tx := unsigned.Tx
	mint := unsigned.Mint

	p.update(func(a *PurchaseAttempt) {
		a.Mint = &mint
		a.Status = AttemptAwaitingSignature
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.wallet.SignTransaction(ctx, tx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &SigningError{Err: err}
	}

	if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range unsigned.EphemeralSigners {
			if unsigned.EphemeralSigners[i].PublicKey().Equals(key) {
				return &unsigned.EphemeralSigners[i]
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to sign with mint keypair: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sig, err := s.cfg.Watcher.Submit(ctx, tx)
	if err != nil {
		return err
	}
	p.update(func(a *PurchaseAttempt) {
		a.Signature = &sig
		a.Status = AttemptSubmitted
	})
	p.logger.Info("Purchase submitted", zap.String("signature", sig.String()))

	outcome, err := s.cfg.Watcher.Confirm(ctx, sig, sale.ConfirmTimeout, sale.Commitment)
	if err != nil {
		return err
	}
	p.outcome = &outcome
	return outcome.Err()
}

// update applies fn under the session lock.
func (p *purchase) update(fn func(a *PurchaseAttempt)) {
	p.session.mu.Lock()
	defer p.session.mu.Unlock()
	fn(p.attempt)
}

// finish records the terminal state of the attempt and reports whether it
// was cancelled. A cancelled attempt leaves no alert and no phase change.
func (p *purchase) finish(ctx context.Context, err error) bool {
	s := p.session
	s.mu.Lock()
	defer s.mu.Unlock()

	a := p.attempt
	a.FinishedAt = s.cfg.Clock()
	elapsed := a.FinishedAt.Sub(a.StartedAt)
	current := s.attempt == a && s.walletGen == p.gen && !s.closed

	if current {
		s.purchaseCancel = nil
		s.cfg.Metrics.setInFlight(false)
	}

	if ctx.Err() != nil {
		a.Cancelled = true
		a.Status = AttemptFailed
		if current {
			s.setPhaseLocked(PhaseReady)
		}
		s.cfg.Metrics.trackPurchase("cancelled", elapsed)
		p.logger.Info("Purchase cancelled")
		s.publishLocked(s.purchaseEvent(events.PurchaseCancelled, a, nil))
		return true
	}

	var (
		message  string
		severity = SeverityError
	)

	switch {
	case err == nil:
		a.Status = AttemptConfirmed
		message, severity = MessageMintSucceeded, SeveritySuccess
		s.cfg.Metrics.trackPurchase("success", elapsed)
		p.logger.Info("Mint confirmed",
			zap.String("signature", a.Signature.String()),
			zap.String("mint", a.Mint.String()),
			zap.Duration("elapsed", elapsed))

	case errors.Is(err, ErrSigning):
		// Отказ подписи: без алерта.
		a.Status = AttemptFailed
		s.cfg.Metrics.trackPurchase("signing_rejected", elapsed)
		p.logger.Info("Purchase not signed", zap.Error(err))

	case errors.Is(err, candymachine.ErrBuild):
		a.Status = AttemptFailed
		s.buildFault = true
		kind := candymachine.FailureUnknown
		a.Failure = &kind
		message = kind.Message()
		s.cfg.Metrics.trackPurchase("build_fault", elapsed)
		p.logger.Error("Purchase transaction could not be built; purchases disabled", zap.Error(err))

	default:
		kind := candymachine.Classify(err)
		a.Failure = &kind
		a.Status = AttemptFailed
		if p.outcome != nil && p.outcome.Kind == transaction.OutcomeTimeout {
			a.Status = AttemptTimedOut
		}
		if kind == candymachine.FailureSoldOut {
			s.soldOut = true
		}
		message = kind.Message()
		s.cfg.Metrics.trackPurchase(kind.String(), elapsed)
		fields := []zap.Field{zap.String("failure_kind", kind.String()), zap.Error(err)}
		if a.Signature != nil {
			fields = append(fields, zap.String("signature", a.Signature.String()))
		}
		p.logger.Warn("Purchase failed", fields...)
	}

	if current {
		if message != "" {
			s.setAlertLocked(message, severity)
		}
		s.setPhaseLocked(PhaseReady)
	}

	eventType := events.PurchaseCompleted
	if err != nil {
		eventType = events.PurchaseFailed
	}
	s.publishLocked(s.purchaseEvent(eventType, a, err))
	return false
}

func (s *Session) purchaseEvent(eventType events.EventType, a *PurchaseAttempt, err error) *events.PurchaseEvent {
	e := &events.PurchaseEvent{
		BaseEvent:     events.NewBase(eventType),
		AttemptID:     a.ID,
		WalletAddress: a.Buyer.String(),
		Error:         err,
	}
	if a.Signature != nil {
		e.Signature = a.Signature.String()
	}
	if a.Mint != nil {
		e.Mint = a.Mint.String()
	}
	if a.Failure != nil {
		e.FailureKind = a.Failure.String()
		e.Message = a.Failure.Message()
	} else if err == nil && eventType == events.PurchaseCompleted {
		e.Message = MessageMintSucceeded
	}
	return e
}
