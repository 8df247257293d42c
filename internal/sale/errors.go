// internal/sale/errors.go
package sale

import (
	"errors"
	"fmt"
)

// Local rejections: RequestPurchase returns these without touching the ledger.
var (
	ErrNoWallet         = errors.New("no wallet bound")
	ErrPurchaseInFlight = errors.New("purchase already in flight")
	ErrNotReady         = errors.New("session not ready")
	ErrSoldOut          = errors.New("sale is sold out")
	ErrNotLive          = errors.New("sale is not live yet")
	ErrBuildFault       = errors.New("purchases disabled after a build fault")
	ErrClosed           = errors.New("session closed")
)

var (
	// ErrSigning marks a wallet that refused or failed to sign.
	ErrSigning = errors.New("signing failed")
	// ErrCancelled is returned for an attempt abandoned by a wallet switch or Close.
	ErrCancelled = errors.New("purchase cancelled")
)

// SigningError wraps the wallet's refusal.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign purchase: %v", e.Err)
}

func (e *SigningError) Unwrap() []error {
	return []error{ErrSigning, e.Err}
}
