package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/johan-st/shopdash/internal/shop"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#3B82F6") // Blue
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	bgColor        = lipgloss.Color("#1F2937") // Dark gray
	selectedBg     = lipgloss.Color("#374151")
)

// Pane styles
var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.
				BorderForeground(primaryColor)

	paneHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

var (
	dimItemStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true)
)

// Table styles
var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	tableRuleStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	tableSelectedRowStyle = lipgloss.NewStyle().
				Background(selectedBg).
				Foreground(textColor)

	pageCurrentStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)
)

// Status bar styles
var (
	statusBarStyle = lipgloss.NewStyle().
			Background(bgColor).
			Foreground(textColor).
			Padding(0, 1)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)
)

// Access level badges
var (
	adminBadge = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(lipgloss.Color("#FFF")).
			Padding(0, 1).
			Bold(true)

	readWriteBadge = lipgloss.NewStyle().
			Background(secondaryColor).
			Foreground(lipgloss.Color("#FFF")).
			Padding(0, 1)

	readOnlyBadge = lipgloss.NewStyle().
			Background(accentColor).
			Foreground(lipgloss.Color("#000")).
			Padding(0, 1)

	noBadge = lipgloss.NewStyle().
		Background(errorColor).
		Foreground(lipgloss.Color("#FFF")).
		Padding(0, 1)
)

// Search and form input styles
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	fieldErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(primaryColor).
			Padding(0, 2)

	buttonDisabledStyle = buttonStyle.
				Background(mutedColor)
)

// Overlays
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	sheetStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(primaryColor).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(secondaryColor).
			Padding(0, 1)

	toastErrorStyle = toastStyle.
			Background(errorColor)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	statValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 2).
			Width(22)
)

// statusStyles colours order statuses.
var statusStyles = map[string]lipgloss.Style{
	shop.StatusPending:    lipgloss.NewStyle().Foreground(accentColor),
	shop.StatusProcessing: lipgloss.NewStyle().Foreground(primaryColor),
	shop.StatusShipped:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5CF6")),
	shop.StatusDelivered:  lipgloss.NewStyle().Foreground(secondaryColor),
	shop.StatusCancelled:  lipgloss.NewStyle().Foreground(errorColor),
	"Active":              lipgloss.NewStyle().Foreground(secondaryColor),
	"Inactive":            lipgloss.NewStyle().Foreground(mutedColor),
}
