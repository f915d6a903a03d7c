package tui

import "github.com/charmbracelet/lipgloss"

// Palette: teal for headlines, amber for the selection and warnings.
var (
	colorHeadline = lipgloss.AdaptiveColor{Light: "#0E7C7B", Dark: "#2EC4B6"}
	colorBody     = lipgloss.AdaptiveColor{Light: "#3D3D3D", Dark: "#B8B8B8"}
	colorDim      = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}
	colorBorder   = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorFocus    = lipgloss.AdaptiveColor{Light: "#0E7C7B", Dark: "#2EC4B6"}
	colorTabBg    = lipgloss.AdaptiveColor{Light: "#EEEEEE", Dark: "#1F2933"}
	colorStatusBg = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#111827"}
	colorGreen    = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}

	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorHeadline).PaddingLeft(1)
	headerDateStyle = lipgloss.NewStyle().Foreground(colorDim).Align(lipgloss.Right)

	paneStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder)
	paneActiveStyle = paneStyle.BorderForeground(colorFocus)

	listPaneStyle          = paneStyle
	listPaneActiveStyle    = paneActiveStyle
	previewPaneStyle       = paneStyle
	previewPaneActiveStyle = paneActiveStyle

	itemTitleStyle    = lipgloss.NewStyle().Foreground(colorHeadline)
	itemSelectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	itemSourceStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	itemTimeStyle     = lipgloss.NewStyle().Foreground(colorDim)

	previewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorHeadline).MarginBottom(1)
	previewSourceStyle = lipgloss.NewStyle().Foreground(colorGreen).MarginBottom(1)
	previewBodyStyle   = lipgloss.NewStyle().Foreground(colorBody)
	previewLinkStyle   = lipgloss.NewStyle().Foreground(colorDim).Italic(true).MarginTop(1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorFocus).
			Padding(0, 1).
			Bold(true)
	tabInactiveStyle  = lipgloss.NewStyle().Foreground(colorBody).Background(colorTabBg).Padding(0, 1)
	tabSeparatorStyle = lipgloss.NewStyle().Foreground(colorDim).Background(colorTabBg)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorStatusBg).
			Foreground(colorBody).
			PaddingLeft(1).
			PaddingRight(1)

	spinnerStyle      = lipgloss.NewStyle().Foreground(colorAccent)
	searchPromptStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	helpDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	helpCardStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(1, 3)
)
