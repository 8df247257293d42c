// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain/solbc"
)

var (
	// ErrConfirmationTimeout means the deadline passed before the ledger
	// reported a terminal status. The transaction may still land.
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
	// ErrStatusUnavailable is returned when the status query kept failing
	// after the bounded number of retries.
	ErrStatusUnavailable = errors.New("signature status unavailable")
)

const (
	DefaultPollInterval     = 500 * time.Millisecond
	DefaultMaxStatusRetries = 3
	DefaultStatusRetryDelay = 200 * time.Millisecond
)

// Config controls the polling behaviour of Watcher.
type Config struct {
	PollInterval     time.Duration
	MaxStatusRetries uint
	StatusRetryDelay time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		PollInterval:     DefaultPollInterval,
		MaxStatusRetries: DefaultMaxStatusRetries,
		StatusRetryDelay: DefaultStatusRetryDelay,
	}
}

// OutcomeKind is the terminal state of a watched transaction.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeProgramError
	OutcomeTimeout
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeProgramError:
		return "program_error"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is what Confirm resolves to.
type Outcome struct {
	Kind      OutcomeKind
	Signature solana.Signature
	// Code is the custom program error code, solbc.NoErrorCode when the
	// payload carried none or the outcome is not a program error.
	Code    int
	Payload interface{}
	Slot    uint64
	Polls   int
	Elapsed time.Duration
}

// Err converts a non-success outcome into an error suitable for
// classification. Success yields nil.
func (o Outcome) Err() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeProgramError:
		return &ProgramError{Code: o.Code, Payload: o.Payload}
	case OutcomeTimeout:
		return fmt.Errorf("%w after %s (signature %s)", ErrConfirmationTimeout, o.Elapsed.Round(time.Millisecond), o.Signature)
	default:
		return fmt.Errorf("unexpected outcome %d", o.Kind)
	}
}

// ProgramError is a transaction that landed with an error payload.
type ProgramError struct {
	Code    int
	Payload interface{}
}

func (e *ProgramError) Error() string {
	if e.Code != solbc.NoErrorCode {
		return fmt.Sprintf("transaction failed: custom program error: 0x%x", e.Code)
	}
	return "transaction failed: " + solbc.DescribePayload(e.Payload)
}

// ErrorCode exposes the structured code to solbc.ErrorAnalyzer.
func (e *ProgramError) ErrorCode() int {
	return e.Code
}
