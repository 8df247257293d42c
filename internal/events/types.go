// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// AllEvents subscribes a handler to every event type.
	AllEvents EventType = "*"

	// Session events
	WalletBound    EventType = "wallet.bound"
	WalletUnbound  EventType = "wallet.unbound"
	PhaseChanged   EventType = "session.phase_changed"
	SaleStateRead  EventType = "sale.state_read"
	AlertChanged   EventType = "session.alert_changed"
	BalanceChanged EventType = "balance.changed"

	// Purchase events
	PurchaseStarted   EventType = "purchase.started"
	PurchaseSubmitted EventType = "purchase.submitted"
	PurchaseCompleted EventType = "purchase.completed"
	PurchaseFailed    EventType = "purchase.failed"
	PurchaseCancelled EventType = "purchase.cancelled"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// NewBase stamps an event with the current time.
func NewBase(eventType EventType) BaseEvent {
	return BaseEvent{EventType: eventType, EventTime: time.Now()}
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// WalletEvent is emitted on wallet connect and disconnect.
type WalletEvent struct {
	BaseEvent
	WalletAddress string
}

// PhaseChangedEvent is emitted on every session phase transition.
type PhaseChangedEvent struct {
	BaseEvent
	From string
	To   string
}

// SaleStateReadEvent is emitted when a refresh result is accepted.
type SaleStateReadEvent struct {
	BaseEvent
	Exists         bool
	ItemsAvailable uint64
	ItemsRemaining uint64
	GoLive         time.Time
	Active         bool
	SoldOut        bool
}

// AlertChangedEvent is emitted when the alert is set or dismissed.
type AlertChangedEvent struct {
	BaseEvent
	Visible  bool
	Message  string
	Severity string
}

// BalanceChangedEvent is emitted when wallet balance changes.
type BalanceChangedEvent struct {
	BaseEvent
	WalletAddress string
	OldBalance    uint64
	NewBalance    uint64
}

// PurchaseEvent covers the lifecycle of one purchase attempt. Fields that
// do not apply to a given type are left empty.
type PurchaseEvent struct {
	BaseEvent
	AttemptID     string
	WalletAddress string
	Signature     string
	Mint          string
	FailureKind   string
	Message       string
	Error         error
}
