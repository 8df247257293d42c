// internal/candymachine/classify.go
package candymachine

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain/solbc"
	"github.com/rovshanmuradov/candy-mint/internal/blockchain/solbc/transaction"
)

// FailureKind is the user-facing class of a failed purchase.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureSoldOut
	FailureNotLiveYet
	FailureInsufficientFunds
	// FailureAmbiguous: the transaction may or may not have landed.
	FailureAmbiguous
)

func (k FailureKind) String() string {
	switch k {
	case FailureSoldOut:
		return "sold_out"
	case FailureNotLiveYet:
		return "not_live_yet"
	case FailureInsufficientFunds:
		return "insufficient_funds"
	case FailureAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Message returns the text shown to the buyer.
func (k FailureKind) Message() string {
	switch k {
	case FailureSoldOut:
		return "SOLD OUT!"
	case FailureNotLiveYet:
		return "Minting period hasn't started yet."
	case FailureInsufficientFunds:
		return "Insufficient funds to mint. Please fund your wallet."
	case FailureAmbiguous:
		return "Mint status unknown. Please check your wallet before trying again."
	default:
		return "Minting failed! Please try again!"
	}
}

var analyzer = solbc.NewErrorAnalyzer(zap.NewNop())

// Classify maps any purchase error to a FailureKind. Total and deterministic;
// the first matching rule wins.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	if code, ok := analyzer.CustomCode(err); ok {
		switch code {
		case ErrCodeCandyMachineEmpty:
			return FailureSoldOut
		case ErrCodeNotLiveYet:
			return FailureNotLiveYet
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "0x137"):
		return FailureSoldOut
	case strings.Contains(msg, "0x138"):
		return FailureNotLiveYet
	case strings.Contains(msg, "0x135"):
		return FailureInsufficientFunds
	}

	// Статус неизвестен после отправки: транзакция могла пройти.
	if errors.Is(err, transaction.ErrConfirmationTimeout) || errors.Is(err, transaction.ErrStatusUnavailable) {
		return FailureAmbiguous
	}
	return FailureUnknown
}
