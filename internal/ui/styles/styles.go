// Package styles contains Lip Gloss style definitions.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
)

// Color tokens. Adaptive pairs keep the UI readable on light terminals.
var (
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1A1A2E", Dark: "#EAEAEA"}
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#4A4A68", Dark: "#B8B8C8"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#8A8AA0", Dark: "#6C6C80"}
	BorderDefaultColor   = lipgloss.AdaptiveColor{Light: "#C8C8D8", Dark: "#3A3A50"}
	BorderFocusedColor   = lipgloss.AdaptiveColor{Light: "#5A54C8", Dark: "#8B85FF"}
	TitleColor           = lipgloss.AdaptiveColor{Light: "#5A54C8", Dark: "#8B85FF"}
	ErrorColor           = lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF8787"}
	SuccessColor         = lipgloss.AdaptiveColor{Light: "#1E8449", Dark: "#73F59F"}
	WarningColor         = lipgloss.AdaptiveColor{Light: "#B9770E", Dark: "#F5D773"}
	AmountColor          = lipgloss.AdaptiveColor{Light: "#1E8449", Dark: "#A8E6B8"}
)

// Shared styles.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TitleColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextDescriptionColor).
			Padding(0, 1)

	SelectionIndicatorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(BorderFocusedColor)
)

// PanelStyle returns the bordered container style for a panel, switching
// the border color when the panel has focus.
func PanelStyle(focused bool) lipgloss.Style {
	color := BorderDefaultColor
	if focused {
		color = BorderFocusedColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1)
}

// Truncate shortens s to fit maxWidth terminal cells, appending an
// ellipsis when it had to cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// PadRight pads s with spaces to exactly width terminal cells,
// truncating when too long.
func PadRight(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// PadLeft right-aligns s within width terminal cells.
func PadLeft(s string, width int) string {
	return runewidth.FillLeft(Truncate(s, width), width)
}

// FormatMoney renders a decimal amount with the currency symbol and two
// fractional digits.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + symbol + amount.Neg().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}

// Divider renders a horizontal rule of the given width.
func Divider(width int) string {
	if width < 1 {
		return ""
	}
	return MutedStyle.Render(strings.Repeat("─", width))
}
