package style

import "github.com/charmbracelet/lipgloss"

var (
	// Primary colors
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Mint button
	Yellow  = lipgloss.Color("#FFB500") // Countdown / warnings
	Green   = lipgloss.Color("#2AFFAA") // Success
	Red     = lipgloss.Color("#FF5555") // Errors / sold out
	Blue    = lipgloss.Color("#3B82F6") // Info

	// Base colors
	Base03 = lipgloss.Color("#1B1D23") // Background
	Base02 = lipgloss.Color("#262831") // Darker background
	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,
	}
}

// Styles used by the mint screen.
type Styles struct {
	Container  lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	Button     lipgloss.Style
	ButtonOff  lipgloss.Style
	SoldOut    lipgloss.Style
	Countdown  lipgloss.Style
	AlertOK    lipgloss.Style
	AlertError lipgloss.Style
	Muted      lipgloss.Style
	Spinner    lipgloss.Style
}

// DefaultStyles builds the styles from the default palette
func DefaultStyles() Styles {
	p := DefaultPalette()

	button := lipgloss.NewStyle().
		Padding(0, 4).
		Bold(true).
		Border(lipgloss.RoundedBorder())

	alert := lipgloss.NewStyle().
		Padding(0, 2).
		MarginTop(1).
		Border(lipgloss.NormalBorder(), false, false, false, true)

	return Styles{
		Container: lipgloss.NewStyle().Padding(1, 2),
		Label:     lipgloss.NewStyle().Foreground(p.TextMuted),
		Value:     lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		Button: button.
			Foreground(p.Text).
			BorderForeground(p.Secondary),
		ButtonOff: button.
			Foreground(p.TextMuted).
			BorderForeground(p.TextMuted),
		SoldOut: button.
			Foreground(p.Error).
			BorderForeground(p.Error),
		Countdown: button.
			Foreground(p.Warning).
			BorderForeground(p.Warning),
		AlertOK:    alert.Foreground(p.Success).BorderForeground(p.Success),
		AlertError: alert.Foreground(p.Error).BorderForeground(p.Error),
		Muted:      lipgloss.NewStyle().Foreground(p.TextMuted),
		Spinner:    lipgloss.NewStyle().Foreground(p.Primary),
	}
}
