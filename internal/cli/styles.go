// Package cli renders atlas results for the terminal.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

// Palette.
var (
	OceanColor  = lipgloss.Color("#4A90D9")
	ParkColor   = lipgloss.Color("#6BBF59")
	SandColor   = lipgloss.Color("#F2C14E")
	BrickColor  = lipgloss.Color("#D9534F")
	MistColor   = lipgloss.Color("#8FA9BF")
	ContourGray = lipgloss.Color("#6B6B6B")
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(OceanColor).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(ParkColor)
	WarningStyle = lipgloss.NewStyle().Foreground(SandColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(BrickColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(MistColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(ContourGray)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(OceanColor)

	// BoxStyle frames the detection summary.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ContourGray).
			Padding(1, 2)
)

// Icons.
const (
	SuccessIcon  = "✓"
	ErrorIcon    = "✗"
	WarningIcon  = "⚠️"
	InfoIcon     = "ℹ️"
	AtlasIcon    = "🗺️"
	HomeIcon     = "🏠"
	WorkIcon     = "💼"
	VacationIcon = "🏖️"
)

var roleStyles = map[model.Role]lipgloss.Style{
	model.RoleHome:     lipgloss.NewStyle().Bold(true).Foreground(ParkColor),
	model.RoleWork:     lipgloss.NewStyle().Bold(true).Foreground(OceanColor),
	model.RoleVacation: lipgloss.NewStyle().Bold(true).Foreground(SandColor),
}

var roleIcons = map[model.Role]string{
	model.RoleHome:     HomeIcon,
	model.RoleWork:     WorkIcon,
	model.RoleVacation: VacationIcon,
}

// RoleStyle returns the style used for a role's label. Unknown roles are
// rendered bold.
func RoleStyle(role model.Role) lipgloss.Style {
	if s, ok := roleStyles[role]; ok {
		return s
	}
	return BoldStyle
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle prefixes title with the atlas icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(AtlasIcon + " " + title)
}

// RenderBox draws a titled frame around content.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
