package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/candy-mint/internal/events"
)

func TestUpdateSenderNonBlocking(t *testing.T) {
	msgChan := make(chan tea.Msg, 10) // Small buffer to test blocking
	sender := NewUpdateSender(msgChan, zap.NewNop())
	defer sender.Close()

	for i := 0; i < 10; i++ {
		sender.SendUpdate(syncTickMsg{})
	}

	// These should be dropped without blocking
	start := time.Now()
	for i := 0; i < 100; i++ {
		sender.SendUpdate(syncTickMsg{})
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	sent, dropped := sender.GetStats()
	assert.Equal(t, uint64(10), sent)
	assert.Equal(t, uint64(100), dropped)
}

func TestUpdateSenderConcurrent(t *testing.T) {
	msgChan := make(chan tea.Msg, 100)
	sender := NewUpdateSender(msgChan, zap.NewNop())
	defer sender.Close()

	var wg sync.WaitGroup
	numGoroutines := 10
	messagesPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < messagesPerGoroutine; j++ {
				sender.SendUpdate(syncTickMsg{})
			}
		}()
	}
	wg.Wait()

	sent, dropped := sender.GetStats()
	assert.Equal(t, uint64(numGoroutines*messagesPerGoroutine), sent+dropped)
}

func TestUpdateSenderForwardsBusEvents(t *testing.T) {
	bus := events.NewBus(zap.NewNop(), 16)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	sender := NewUpdateSender(make(chan tea.Msg, 4), zap.NewNop())
	defer sender.Close()
	sub := sender.Forward(bus)
	defer sub.Unsubscribe()

	require.NoError(t, bus.Publish(&events.AlertChangedEvent{
		BaseEvent: events.NewBase(events.AlertChanged),
		Visible:   true,
		Message:   "SOLD OUT!",
	}))

	msg := listenUpdates(sender.Updates())()
	busMsg, ok := msg.(BusEventMsg)
	require.True(t, ok)
	assert.Equal(t, events.AlertChanged, busMsg.Event.Type())
}
