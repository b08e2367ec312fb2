package tui

import "github.com/charmbracelet/lipgloss"

// ─── Colors ─────────────────────────────────────────────────────────────────

var (
	colorOrange  = lipgloss.Color("#F28C28") // primary accent
	colorGreen   = lipgloss.Color("78")
	colorYellow  = lipgloss.Color("220")
	colorRed     = lipgloss.Color("196")
	colorMagenta = lipgloss.Color("213")
	colorGray    = lipgloss.Color("242")
	colorDimGray = lipgloss.Color("238")
	colorWhite   = lipgloss.Color("255")
)

// ─── Header ─────────────────────────────────────────────────────────────────

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorWhite)

var versionStyle = lipgloss.NewStyle().
	Foreground(colorGray)

// ─── Hint Bar ───────────────────────────────────────────────────────────────

var hintBarStyle = lipgloss.NewStyle().
	Foreground(colorGray)

var hintKeyStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	Bold(true)

// ─── Transcript ─────────────────────────────────────────────────────────────

var userPromptStyle = lipgloss.NewStyle().
	Foreground(colorOrange).
	Bold(true)

var statusStyle = lipgloss.NewStyle().
	Foreground(colorYellow)

var successMsgStyle = lipgloss.NewStyle().
	Foreground(colorGreen)

var errorMsgStyle = lipgloss.NewStyle().
	Foreground(colorRed)

var warnMsgStyle = lipgloss.NewStyle().
	Foreground(colorYellow)

var dimStyle = lipgloss.NewStyle().
	Foreground(colorGray)

var separatorStyle = lipgloss.NewStyle().
	Foreground(colorDimGray)

// ─── Results panel ──────────────────────────────────────────────────────────

var resultsHeaderStyle = lipgloss.NewStyle().
	Foreground(colorMagenta).
	Bold(true)

var resultLabelStyle = lipgloss.NewStyle().
	Foreground(colorWhite).
	Bold(true)

var resultCursorStyle = lipgloss.NewStyle().
	Foreground(colorOrange).
	Bold(true)

var resultDetailStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	PaddingLeft(4)
