// Package style centralizes the color palette and shared lipgloss styles.
package style

import "github.com/charmbracelet/lipgloss"

var (
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent / buttons
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Success
	Red     = lipgloss.Color("#FF5555") // Errors
	Blue    = lipgloss.Color("#3B82F6") // Info

	Base03 = lipgloss.Color("#1B1D23") // Background
	Base02 = lipgloss.Color("#262831") // Darker background
	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides centralized color management. The shared styles below are
// built from it, so swapping the palette restyles every screen.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background lipgloss.Color
	Surface    lipgloss.Color
	Text       lipgloss.Color
	TextMuted  lipgloss.Color
}

// DefaultPalette returns the default color palette.
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background: Base03,
		Surface:    Base02,
		Text:       Base2,
		TextMuted:  Base01,
	}
}

var palette = DefaultPalette()

// Shared styles used across screens.
var (
	Title = lipgloss.NewStyle().
		Foreground(palette.Primary).
		Bold(true).
		Margin(1, 0)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(palette.Primary).
		Padding(1, 3)

	Label = lipgloss.NewStyle().
		Foreground(palette.TextMuted)

	Value = lipgloss.NewStyle().
		Foreground(palette.Text)

	WarnText = lipgloss.NewStyle().
			Foreground(palette.Warning)

	ErrorText = lipgloss.NewStyle().
			Foreground(palette.Error)

	SuccessText = lipgloss.NewStyle().
			Foreground(palette.Success)

	InfoText = lipgloss.NewStyle().
			Foreground(palette.Info)

	ButtonActive = lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Secondary).
			Padding(0, 3).
			Bold(true)

	ButtonDisabled = lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Background(palette.Surface).
			Padding(0, 3)

	HelpBar = lipgloss.NewStyle().
		Foreground(palette.TextMuted).
		Margin(1, 0)
)
