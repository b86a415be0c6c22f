package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/bookmarks/internal/render"
)

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorTick      = lipgloss.Color("127") // Magenta, the axis color
)

// CanvasStyles maps render roles to terminal styles.
var CanvasStyles = map[render.Style]lipgloss.Style{
	render.StyleTick:         lipgloss.NewStyle().Foreground(colorTick),
	render.StyleTickLabel:    lipgloss.NewStyle().Foreground(colorTick),
	render.StyleSingle:       lipgloss.NewStyle().Foreground(colorPrimary),
	render.StyleGroup:        lipgloss.NewStyle().Foreground(colorHighlight),
	render.StyleClusterLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
}

// TitleBar style for the top line.
var TitleBar = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// TitleRange style for the visible time range in the title bar.
var TitleRange = lipgloss.NewStyle().
	Foreground(colorSecondary)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// StatusBusy style for the job indicator.
var StatusBusy = lipgloss.NewStyle().
	Foreground(colorSuccess)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// HelpStyle for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

// PromptBar style for the count prompt.
var PromptBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("240")).
	Padding(0, 1)

// PromptLabel style for the prompt label.
var PromptLabel = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// PromptError style for rejected input.
var PromptError = lipgloss.NewStyle().
	Foreground(lipgloss.Color("203"))

// TooltipBox style for the hover summary.
var TooltipBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// DebugPanel style for the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorHighlight).
	Padding(1, 2)

// DebugHeaderStyle for section headers in the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)
