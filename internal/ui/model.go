package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/candy-mint/internal/sale"
	"github.com/rovshanmuradov/candy-mint/internal/ui/component"
	"github.com/rovshanmuradov/candy-mint/internal/ui/style"
)

// DefaultAlertTimeout hides an alert that was not dismissed.
const DefaultAlertTimeout = 6 * time.Second

// Session is the part of sale.Session the screen drives.
type Session interface {
	Snapshot() sale.View
	BindWallet(ctx context.Context, w sale.Wallet) error
	Refresh(ctx context.Context) error
	Sync(ctx context.Context) error
	RequestPurchase(ctx context.Context) (*sale.PurchaseAttempt, error)
	CountdownComplete() bool
	DismissAlert()
}

// Wallet is a signing wallet with a display name.
type Wallet interface {
	sale.Wallet
	Name() string
}

// Options configures the mint screen.
type Options struct {
	Network         string
	RefreshInterval time.Duration // 0 disables background sync
	AlertTimeout    time.Duration
	Updates         <-chan tea.Msg
	Logger          *zap.Logger
}

// Model is the bubbletea model of the mint screen.
type Model struct {
	ctx     context.Context
	session Session
	wallets []Wallet
	current int
	opts    Options
	logger  *zap.Logger

	keys    KeyMap
	styles  style.Styles
	spinner spinner.Model
	header  *component.StatusHeader
	help    *component.HelpBar

	view       sale.View
	binding    bool
	purchasing bool
	alertAt    time.Time
	lastAlert  sale.AlertState
	width      int
	height     int
}

// NewModel creates the mint screen. ctx bounds every session call.
func NewModel(ctx context.Context, session Session, wallets []Wallet, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.AlertTimeout <= 0 {
		opts.AlertTimeout = DefaultAlertTimeout
	}

	styles := style.DefaultStyles()
	keys := DefaultKeyMap()
	keys.SwitchWallet.SetEnabled(len(wallets) > 1)

	return &Model{
		ctx:     ctx,
		session: session,
		wallets: wallets,
		opts:    opts,
		logger:  opts.Logger.Named("ui"),
		keys:    keys,
		styles:  styles,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Spinner)),
		header:  component.NewStatusHeader(opts.Network),
		help:    component.NewHelpBar().SetKeyBindings(keys.ShortHelp()),
		view:    session.Snapshot(),
	}
}

// Init binds the first wallet and starts the timers.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		clockTick(),
		listenUpdates(m.opts.Updates),
	}
	if len(m.wallets) > 0 {
		m.binding = true
		cmds = append(cmds, m.bindWallet(0))
	}
	if m.opts.RefreshInterval > 0 {
		cmds = append(cmds, syncTick(m.opts.RefreshInterval))
	}
	return tea.Batch(cmds...)
}

// Update handles key presses, timers and session results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		m.help.SetWidth(msg.Width)

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case clockTickMsg:
		m.session.CountdownComplete()
		if m.alertExpired(time.Time(msg)) {
			m.session.DismissAlert()
		}
		cmds = append(cmds, clockTick())

	case syncTickMsg:
		if len(m.wallets) > 0 && !m.binding {
			cmds = append(cmds, m.sync())
		}
		cmds = append(cmds, syncTick(m.opts.RefreshInterval))

	case walletBoundMsg:
		if msg.index == m.current {
			m.binding = false
		}
		if msg.err != nil {
			m.logger.Warn("Wallet bind finished with error", zap.Error(msg.err))
		}

	case refreshDoneMsg:
		if msg.err != nil && msg.explicit {
			m.logger.Warn("Refresh failed", zap.Error(msg.err))
		}

	case purchaseDoneMsg:
		m.purchasing = false
		if msg.err != nil && !errors.Is(msg.err, sale.ErrCancelled) {
			m.logger.Info("Purchase finished", zap.Error(msg.err))
		}

	case BusEventMsg:
		cmds = append(cmds, listenUpdates(m.opts.Updates))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.syncView()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit

	case key.Matches(msg, m.keys.Dismiss):
		m.session.DismissAlert()

	case key.Matches(msg, m.keys.Refresh):
		if len(m.wallets) > 0 {
			return m.refresh()
		}

	case key.Matches(msg, m.keys.SwitchWallet):
		if len(m.wallets) > 1 {
			m.current = (m.current + 1) % len(m.wallets)
			m.binding = true
			m.purchasing = false
			return m.bindWallet(m.current)
		}

	case key.Matches(msg, m.keys.Mint):
		if m.purchasing || !m.session.Snapshot().CanPurchase {
			return nil
		}
		m.purchasing = true
		return m.purchase()
	}
	return nil
}

// syncView copies the session snapshot and tracks when the alert changed.
func (m *Model) syncView() {
	m.view = m.session.Snapshot()
	if m.view.Alert != m.lastAlert {
		m.lastAlert = m.view.Alert
		m.alertAt = time.Now()
	}

	if m.view.WalletBound {
		name := ""
		if m.current < len(m.wallets) {
			name = m.wallets[m.current].Name()
		}
		m.header.SetWallet(name, m.view.WalletAddress.String())
	} else {
		m.header.SetWallet("", "")
	}
	m.header.SetBalance(m.view.Balance.SOL(), m.view.Balance.Known)
}

func (m *Model) alertExpired(now time.Time) bool {
	return m.view.Alert.Visible && !m.alertAt.IsZero() && now.Sub(m.alertAt) >= m.opts.AlertTimeout
}

func (m *Model) bindWallet(index int) tea.Cmd {
	w := m.wallets[index]
	return func() tea.Msg {
		return walletBoundMsg{index: index, err: m.session.BindWallet(m.ctx, w)}
	}
}

func (m *Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{explicit: true, err: m.session.Refresh(m.ctx)}
	}
}

func (m *Model) sync() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.session.Sync(m.ctx)}
	}
}

func (m *Model) purchase() tea.Cmd {
	return func() tea.Msg {
		attempt, err := m.session.RequestPurchase(m.ctx)
		return purchaseDoneMsg{attempt: attempt, err: err}
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func syncTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return syncTickMsg{}
	})
}

// View renders the mint screen
func (m *Model) View() string {
	v := m.view
	s := m.styles

	var b strings.Builder
	b.WriteString(m.header.View())
	b.WriteString("\n")

	b.WriteString(s.Label.Render("Mint Price: "))
	b.WriteString(s.Value.Render(sale.LamportsToSOL(v.PriceLamports).String() + " SOL"))
	b.WriteString("\n")

	b.WriteString(s.Label.Render("Remaining: "))
	if v.State != nil && v.State.Exists {
		b.WriteString(s.Value.Render(fmt.Sprintf("%d / %d", v.State.ItemsRemaining, v.State.ItemsAvailable)))
	} else if v.State != nil {
		b.WriteString(s.Muted.Render("candy machine not found"))
	} else {
		b.WriteString(s.Muted.Render("-"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderButton())
	b.WriteString("\n")

	if v.Alert.Visible {
		alertStyle := s.AlertError
		if v.Alert.Severity == sale.SeveritySuccess {
			alertStyle = s.AlertOK
		}
		b.WriteString(alertStyle.Render(v.Alert.Message))
		b.WriteString("\n")
	}
	if v.BuildFault {
		b.WriteString(s.Muted.Render("Purchases are disabled until the configuration is fixed."))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View())
	return s.Container.Render(b.String())
}

// renderButton mirrors the mint button states: connect, sold out,
// countdown, minting or mint.
func (m *Model) renderButton() string {
	v := m.view
	s := m.styles

	switch {
	case !v.WalletBound:
		if len(m.wallets) == 0 {
			return s.ButtonOff.Render("NO WALLET CONFIGURED")
		}
		return s.ButtonOff.Render(m.spinner.View() + " Connecting wallet")
	case v.Phase == sale.PhaseRefreshing && v.State == nil:
		return s.ButtonOff.Render(m.spinner.View() + " Loading")
	case v.SoldOut:
		return s.SoldOut.Render("SOLD OUT")
	case v.Phase == sale.PhasePurchasing || m.purchasing:
		return s.Button.Render(m.spinner.View() + " Minting")
	case !v.Active:
		if v.GoLive.IsZero() {
			return s.ButtonOff.Render("Sale date unknown")
		}
		return s.Countdown.Render(component.FormatCountdown(v.CountdownRemaining))
	case v.CanPurchase:
		return s.Button.Render("MINT")
	default:
		return s.ButtonOff.Render("MINT")
	}
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, model *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(model, opts...)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

var _ Session = (*sale.Session)(nil)
