// internal/blockchain/solbc/transaction/watcher.go
package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain"
	"github.com/rovshanmuradov/candy-mint/internal/blockchain/solbc"
)

// Watcher отправляет транзакции и ждёт их терминального статуса.
type Watcher struct {
	client  blockchain.LedgerClient
	logger  *zap.Logger
	config  Config
	metrics *Metrics
}

func NewWatcher(client blockchain.LedgerClient, logger *zap.Logger, config Config, metrics *Metrics) *Watcher {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.MaxStatusRetries == 0 {
		config.MaxStatusRetries = DefaultMaxStatusRetries
	}
	if config.StatusRetryDelay <= 0 {
		config.StatusRetryDelay = DefaultStatusRetryDelay
	}
	return &Watcher{
		client:  client,
		logger:  logger.Named("tx-watcher"),
		config:  config,
		metrics: metrics,
	}
}

// Submit отправляет подписанную транзакцию ровно один раз. Повторная отправка
// может привести к двойной покупке, поэтому ретраев здесь нет.
func (w *Watcher) Submit(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := w.client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	w.logger.Debug("Transaction submitted", zap.String("signature", sig.String()))
	return sig, nil
}

// Confirm polls the signature status until it reaches commitment, lands with
// an error payload, or timeout passes. Cancelling ctx stops polling and
// returns ctx.Err(). A status query that keeps failing past the retry budget
// yields ErrStatusUnavailable.
func (w *Watcher) Confirm(
	ctx context.Context,
	sig solana.Signature,
	timeout time.Duration,
	commitment rpc.CommitmentType,
) (Outcome, error) {
	start := time.Now()
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	logger := w.logger.With(zap.String("signature", sig.String()))
	polls := 0

	for {
		status, err := w.queryStatus(pollCtx, sig, commitment)
		polls++
		w.metrics.trackPoll()

		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			if pollCtx.Err() != nil {
				return w.timeout(logger, sig, start, polls), nil
			}
			logger.Warn("Status query exhausted retries", zap.Int("polls", polls), zap.Error(err))
			return Outcome{}, fmt.Errorf("%w: %w", ErrStatusUnavailable, err)
		}

		if status != nil {
			if status.Err != nil {
				code, ok := solbc.CustomCodeFromPayload(status.Err)
				if !ok {
					code = solbc.NoErrorCode
				}
				outcome := Outcome{
					Kind:      OutcomeProgramError,
					Signature: sig,
					Code:      code,
					Payload:   status.Err,
					Slot:      status.Slot,
					Polls:     polls,
					Elapsed:   time.Since(start),
				}
				logger.Info("Transaction landed with error",
					zap.Int("code", code),
					zap.String("payload", solbc.DescribePayload(status.Err)))
				w.metrics.trackOutcome(outcome.Kind.String(), outcome.Elapsed)
				return outcome, nil
			}
			if status.Confirmed {
				outcome := Outcome{
					Kind:      OutcomeSuccess,
					Signature: sig,
					Code:      solbc.NoErrorCode,
					Slot:      status.Slot,
					Polls:     polls,
					Elapsed:   time.Since(start),
				}
				logger.Info("Transaction confirmed",
					zap.Uint64("slot", status.Slot),
					zap.String("status", string(status.ConfirmationStatus)),
					zap.Duration("elapsed", outcome.Elapsed))
				w.metrics.trackOutcome(outcome.Kind.String(), outcome.Elapsed)
				return outcome, nil
			}
		}

		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			return w.timeout(logger, sig, start, polls), nil
		case <-ticker.C:
		}
	}
}

// Await is Submit followed by Confirm.
func (w *Watcher) Await(
	ctx context.Context,
	tx *solana.Transaction,
	timeout time.Duration,
	commitment rpc.CommitmentType,
) (Outcome, error) {
	sig, err := w.Submit(ctx, tx)
	if err != nil {
		return Outcome{}, err
	}
	return w.Confirm(ctx, sig, timeout, commitment)
}

func (w *Watcher) queryStatus(
	ctx context.Context,
	sig solana.Signature,
	commitment rpc.CommitmentType,
) (*blockchain.SignatureStatus, error) {
	operation := func() (*blockchain.SignatureStatus, error) {
		status, err := w.client.GetSignatureStatus(ctx, sig, commitment)
		if err != nil && ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return status, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(w.config.StatusRetryDelay)),
		backoff.WithMaxTries(w.config.MaxStatusRetries),
		backoff.WithNotify(func(err error, next time.Duration) {
			w.logger.Debug("Retrying signature status",
				zap.String("signature", sig.String()),
				zap.Duration("next", next),
				zap.Error(err))
		}),
	)
}

func (w *Watcher) timeout(logger *zap.Logger, sig solana.Signature, start time.Time, polls int) Outcome {
	outcome := Outcome{
		Kind:      OutcomeTimeout,
		Signature: sig,
		Code:      solbc.NoErrorCode,
		Polls:     polls,
		Elapsed:   time.Since(start),
	}
	logger.Warn("Confirmation timed out",
		zap.Int("polls", polls),
		zap.Duration("elapsed", outcome.Elapsed))
	w.metrics.trackOutcome(outcome.Kind.String(), outcome.Elapsed)
	return outcome
}
