// internal/sale/fakes_test.go
package sale

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/candy-mint/internal/blockchain"
	"github.com/rovshanmuradov/candy-mint/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/candy-mint/internal/candymachine"
	"github.com/rovshanmuradov/candy-mint/internal/events"
	"github.com/rovshanmuradov/candy-mint/internal/wallet"
)

var errUnexpectedCall = errors.New("unexpected ledger call")

func testKey(b byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{b}, solana.PublicKeyLength))
}

func mustKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

// fakeLedger отдаёт балансы и blockhash; остальные вызовы не ожидаются
type fakeLedger struct {
	mu             sync.Mutex
	balances       map[solana.PublicKey]uint64
	balanceErr     error
	balanceCalls   map[solana.PublicKey]int
	blockhashCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances:     make(map[solana.PublicKey]uint64),
		balanceCalls: make(map[solana.PublicKey]int),
	}
}

func (l *fakeLedger) GetAccountInfo(context.Context, solana.PublicKey) (*blockchain.AccountInfo, error) {
	return nil, errUnexpectedCall
}

func (l *fakeLedger) GetBalance(_ context.Context, owner solana.PublicKey) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balanceCalls[owner]++
	if l.balanceErr != nil {
		return 0, l.balanceErr
	}
	return l.balances[owner], nil
}

func (l *fakeLedger) GetLatestBlockhash(context.Context) (solana.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blockhashCalls++
	return solana.HashFromBytes(bytes.Repeat([]byte{9}, 32)), nil
}

func (l *fakeLedger) SendTransaction(context.Context, *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{}, errUnexpectedCall
}

func (l *fakeLedger) GetSignatureStatus(context.Context, solana.Signature, rpc.CommitmentType) (*blockchain.SignatureStatus, error) {
	return nil, errUnexpectedCall
}

func (l *fakeLedger) setBalance(owner solana.PublicKey, lamports uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[owner] = lamports
}

func (l *fakeLedger) balanceReads(owner solana.PublicKey) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceCalls[owner]
}

func (l *fakeLedger) blockhashReads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.blockhashCalls
}

// readStep is one scripted reader response. A non-nil gate holds the read
// until it is closed.
type readStep struct {
	state   candymachine.SaleState
	err     error
	gate    chan struct{}
	entered chan struct{}
}

type fakeReader struct {
	mu       sync.Mutex
	steps    []readStep
	fallback candymachine.SaleState
	calls    int
}

func (r *fakeReader) Read(ctx context.Context, _ solana.PublicKey) (candymachine.SaleState, error) {
	r.mu.Lock()
	r.calls++
	step := readStep{state: r.fallback}
	if len(r.steps) > 0 {
		step = r.steps[0]
		r.steps = r.steps[1:]
	}
	r.mu.Unlock()

	if step.entered != nil {
		close(step.entered)
	}
	if step.gate != nil {
		select {
		case <-step.gate:
		case <-ctx.Done():
			return candymachine.SaleState{}, ctx.Err()
		}
	}
	return step.state, step.err
}

func (r *fakeReader) set(state candymachine.SaleState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = state
}

func (r *fakeReader) push(steps ...readStep) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, steps...)
}

func (r *fakeReader) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// fakeConfirmer stands in for transaction.Watcher.
type fakeConfirmer struct {
	mu         sync.Mutex
	submitErr  error
	outcome    transaction.Outcome
	confirmErr error
	block      bool
	release    chan struct{}
	confirming chan struct{}
	submits    int
	confirms   int
}

func (c *fakeConfirmer) Submit(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submits++
	if c.submitErr != nil {
		return solana.Signature{}, c.submitErr
	}
	if err := tx.VerifySignatures(); err != nil {
		return solana.Signature{}, err
	}
	return tx.Signatures[0], nil
}

func (c *fakeConfirmer) Confirm(ctx context.Context, sig solana.Signature, _ time.Duration, _ rpc.CommitmentType) (transaction.Outcome, error) {
	c.mu.Lock()
	c.confirms++
	entered := c.confirming
	c.confirming = nil
	block, release := c.block, c.release
	out, err := c.outcome, c.confirmErr
	c.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block {
		select {
		case <-release:
		case <-ctx.Done():
			return transaction.Outcome{}, ctx.Err()
		}
	}
	out.Signature = sig
	return out, err
}

func (c *fakeConfirmer) counts() (submits, confirms int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submits, c.confirms
}

// holdConfirm makes the next Confirm block; the returned channel closes
// once Confirm is entered.
func (c *fakeConfirmer) holdConfirm() (entered chan struct{}, release chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.block = true
	c.release = make(chan struct{})
	c.confirming = make(chan struct{})
	return c.confirming, c.release
}

// stubWallet signs with key unless err is set.
type stubWallet struct {
	key solana.PrivateKey
	err error
}

func (w *stubWallet) PublicKey() solana.PublicKey { return w.key.PublicKey() }

func (w *stubWallet) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	if w.err != nil {
		return w.err
	}
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	})
	return err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	session   *Session
	ledger    *fakeLedger
	reader    *fakeReader
	confirmer *fakeConfirmer
	clock     *fakeClock
	bus       *events.Bus
	registry  *prometheus.Registry
	metrics   *Metrics
	buyer     *wallet.Wallet
}

var testNow = time.Date(2021, 9, 1, 12, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, opts ...func(*SessionConfig)) *harness {
	t.Helper()

	buyer, err := wallet.NewWallet(mustKey(t).String())
	require.NoError(t, err)

	h := &harness{
		ledger:    newFakeLedger(),
		reader:    &fakeReader{},
		confirmer: &fakeConfirmer{},
		clock:     &fakeClock{now: testNow},
		bus:       events.NewBus(zap.NewNop(), 256),
		registry:  prometheus.NewRegistry(),
		buyer:     buyer,
	}
	h.metrics = NewMetrics(h.registry)
	h.reader.set(liveState(5))
	h.ledger.setBalance(buyer.PublicKey(), 2_000_000_000)
	t.Cleanup(func() { _ = h.bus.Shutdown(context.Background()) })

	cfg := SessionConfig{
		Sale: candymachine.SaleConfig{
			CandyMachine:   testKey(1),
			Config:         testKey(2),
			Treasury:       testKey(3),
			GoLive:         testNow.Add(-time.Hour),
			ConfirmTimeout: 30 * time.Second,
			PriceLamports:  candymachine.DefaultPriceLamports,
		},
		Ledger:  h.ledger,
		Reader:  h.reader,
		Builder: candymachine.NewBuilder(zap.NewNop()),
		Watcher: h.confirmer,
		Bus:     h.bus,
		Metrics: h.metrics,
		Logger:  zap.NewNop(),
		Clock:   h.clock.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	h.session = NewSession(cfg)
	return h
}

// bind binds the harness buyer and expects the initial read to succeed.
func (h *harness) bind(t *testing.T) {
	t.Helper()
	require.NoError(t, h.session.BindWallet(context.Background(), h.buyer))
	require.Equal(t, PhaseReady, h.session.Snapshot().Phase)
}

func liveState(remaining uint64) candymachine.SaleState {
	return candymachine.SaleState{
		Exists:         true,
		ItemsAvailable: 10,
		ItemsRedeemed:  10 - remaining,
		ItemsRemaining: remaining,
		GoLiveDate:     testNow.Add(-time.Hour),
		Active:         true,
		ReadAt:         testNow,
		PriceLamports:  candymachine.DefaultPriceLamports,
	}
}

func pendingState(goLive time.Time) candymachine.SaleState {
	state := liveState(5)
	state.GoLiveDate = goLive
	state.Active = false
	return state
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting")
	}
}
