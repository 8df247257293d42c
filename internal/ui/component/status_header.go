package component

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/candy-mint/internal/ui/style"
	"github.com/rovshanmuradov/candy-mint/internal/wallet"
)

// StatusHeader shows the bound wallet, its balance and the network
type StatusHeader struct {
	wallet       string
	walletName   string
	network      string
	balance      decimal.Decimal
	balanceKnown bool
	style        StatusHeaderStyle
	width        int
}

// StatusHeaderStyle contains all styling for the status header
type StatusHeaderStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	wallet    lipgloss.Style
	network   lipgloss.Style
	balance   lipgloss.Style
	muted     lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader(network string) *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		network: network,
		style: StatusHeaderStyle{
			container: lipgloss.NewStyle().
				Foreground(palette.Text).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 2).
				MarginBottom(1),

			title: lipgloss.NewStyle().
				Foreground(palette.Primary).
				Bold(true),

			wallet: lipgloss.NewStyle().
				Foreground(palette.TextSecondary),

			network: lipgloss.NewStyle().
				Foreground(palette.Info),

			balance: lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true),

			muted: lipgloss.NewStyle().
				Foreground(palette.TextMuted),
		},
	}
}

// SetWallet updates the wallet display. An empty address means no wallet.
func (sh *StatusHeader) SetWallet(name, address string) {
	sh.walletName = name
	sh.wallet = address
}

// SetBalance updates the balance display
func (sh *StatusHeader) SetBalance(sol decimal.Decimal, known bool) {
	sh.balance = sol
	sh.balanceKnown = known
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	if width > 4 {
		sh.style.container = sh.style.container.Width(width - 4)
	}
}

// View renders the status header
func (sh *StatusHeader) View() string {
	title := sh.style.title.Render("Candy Machine Mint")
	network := sh.style.network.Render(sh.network)

	var walletText, balanceText string
	if sh.wallet == "" {
		walletText = sh.style.muted.Render("Wallet: not connected")
	} else {
		label := wallet.ShortenAddress(sh.wallet, 4)
		if sh.walletName != "" && sh.walletName != label {
			label = sh.walletName + " (" + label + ")"
		}
		walletText = sh.style.wallet.Render("Wallet: " + label)
		if sh.balanceKnown {
			balanceText = sh.style.balance.Render(fmt.Sprintf("Balance: %s SOL", sh.balance.StringFixed(4)))
		} else {
			balanceText = sh.style.muted.Render("Balance: ...")
		}
	}

	parts := []string{title, " | ", network, " | ", walletText}
	if balanceText != "" {
		parts = append(parts, " | ", balanceText)
	}

	return sh.style.container.Render(lipgloss.JoinHorizontal(lipgloss.Left, parts...))
}
