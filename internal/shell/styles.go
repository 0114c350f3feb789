package shell

import "github.com/charmbracelet/lipgloss"

const (
	sidebarWidth          = 28
	sidebarCollapsedWidth = 6
)

var (
	colorBrand   = lipgloss.Color("#0EA5E9")
	colorAccent  = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
	colorBright  = lipgloss.Color("#F9FAFB")
	colorSurface = lipgloss.Color("#1F2937")

	brandStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true).
			MarginBottom(1)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(colorMuted).
			PaddingRight(1)

	navItemStyle = lipgloss.NewStyle().
			Foreground(colorBright)

	navActiveStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	navCursorStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	userCardStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(colorBright)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorBright).
			Bold(true)

	pillStyle = lipgloss.NewStyle().
			Foreground(colorSurface).
			Background(colorAccent).
			Padding(0, 1)

	topbarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorMuted).
			MarginBottom(1)

	contentStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	contentFocusStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(colorAccent)

	errorCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Foreground(colorError).
			Padding(0, 1)

	formBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBrand).
			Padding(1, 2)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorSurface).
			Background(colorBrand).
			Padding(0, 2)

	buttonBusyStyle = lipgloss.NewStyle().
			Foreground(colorBright).
			Background(colorMuted).
			Padding(0, 2)

	formErrorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	toastStyle = lipgloss.NewStyle().
			Foreground(colorSurface).
			Background(colorBright).
			Padding(0, 1)
)
