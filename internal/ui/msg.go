package ui

import (
	"time"

	"github.com/rovshanmuradov/candy-mint/internal/events"
	"github.com/rovshanmuradov/candy-mint/internal/sale"
)

// Tea message types for UI communication

// BusEventMsg wraps a session event delivered through the event bus
type BusEventMsg struct {
	Event events.Event
}

// clockTickMsg drives the countdown and alert auto-hide
type clockTickMsg time.Time

// syncTickMsg triggers a background re-read of the sale state
type syncTickMsg struct{}

// walletBoundMsg is the result of binding a wallet
type walletBoundMsg struct {
	index int
	err   error
}

// refreshDoneMsg is the result of an explicit refresh or a background sync
type refreshDoneMsg struct {
	explicit bool
	err      error
}

// purchaseDoneMsg is the result of a purchase attempt
type purchaseDoneMsg struct {
	attempt *sale.PurchaseAttempt
	err     error
}
