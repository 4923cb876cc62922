// Package styles holds the lipgloss palettes and layout constants for
// the chat TUI. Two palettes back the theme toggle.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout constants
const (
	// Sidebar
	SidebarWidth = 28

	// Textarea
	MinTextareaHeight = 3
	MaxTextareaHeight = 8

	// Layout
	HeaderHeight      = 2
	InputBorderHeight = 2
	MinViewportHeight = 1

	// Truncation
	TruncateLength = 26
	TruncateSuffix = "…"
)

// Theme selects a palette.
type Theme int

const (
	ThemeDark Theme = iota
	ThemeLight
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

type palette struct {
	primary   lipgloss.Color
	accent    lipgloss.Color
	text      lipgloss.Color
	dim       lipgloss.Color
	errorText lipgloss.Color
	userBg    lipgloss.Color
	aiBg      lipgloss.Color
	border    lipgloss.Color
	chroma    string
}

var palettes = map[Theme]palette{
	ThemeDark: {
		primary:   lipgloss.Color("#7C3AED"),
		accent:    lipgloss.Color("#06B6D4"),
		text:      lipgloss.Color("#F9FAFB"),
		dim:       lipgloss.Color("#6B7280"),
		errorText: lipgloss.Color("#EF4444"),
		userBg:    lipgloss.Color("#4C1D95"),
		aiBg:      lipgloss.Color("#1F2937"),
		border:    lipgloss.Color("#4B5563"),
		chroma:    "monokai",
	},
	ThemeLight: {
		primary:   lipgloss.Color("#6D28D9"),
		accent:    lipgloss.Color("#0E7490"),
		text:      lipgloss.Color("#111827"),
		dim:       lipgloss.Color("#9CA3AF"),
		errorText: lipgloss.Color("#B91C1C"),
		userBg:    lipgloss.Color("#DDD6FE"),
		aiBg:      lipgloss.Color("#E5E7EB"),
		border:    lipgloss.Color("#D1D5DB"),
		chroma:    "github",
	},
}

// Styles is the set of lipgloss styles for one theme.
type Styles struct {
	Title          lipgloss.Style
	Sidebar        lipgloss.Style
	SidebarItem    lipgloss.Style
	SidebarCurrent lipgloss.Style
	SidebarPending lipgloss.Style

	UserMessage  lipgloss.Style
	AIMessage    lipgloss.Style
	ErrorMessage lipgloss.Style

	Heading lipgloss.Style
	Bold    lipgloss.Style
	Link    lipgloss.Style

	CodeBlock    lipgloss.Style
	CodeLanguage lipgloss.Style

	FileChip   lipgloss.Style
	Timestamp  lipgloss.Style
	EmptyState lipgloss.Style
	Thinking   lipgloss.Style
	Help       lipgloss.Style
	TextArea   lipgloss.Style
	PromptMode lipgloss.Style

	// ChromaStyle names the syntax highlighting style for this theme.
	ChromaStyle string
}

// New builds the styles for a theme.
func New(theme Theme) Styles {
	p := palettes[theme]
	return Styles{
		Title: lipgloss.NewStyle().Foreground(p.text).Background(p.primary).Bold(true).Padding(0, 1),

		Sidebar:        lipgloss.NewStyle().Width(SidebarWidth).BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(p.border).PaddingRight(1),
		SidebarItem:    lipgloss.NewStyle().Foreground(p.dim).Padding(0, 1),
		SidebarCurrent: lipgloss.NewStyle().Foreground(p.text).Background(p.primary).Bold(true).Padding(0, 1),
		SidebarPending: lipgloss.NewStyle().Foreground(p.accent).Padding(0, 1),

		UserMessage:  lipgloss.NewStyle().Foreground(p.text).Background(p.userBg).Padding(0, 1),
		AIMessage:    lipgloss.NewStyle().Foreground(p.text).Background(p.aiBg).Padding(0, 1),
		ErrorMessage: lipgloss.NewStyle().Foreground(p.errorText).Bold(true),

		Heading: lipgloss.NewStyle().Foreground(p.primary).Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Link:    lipgloss.NewStyle().Foreground(p.accent).Underline(true),

		CodeBlock:    lipgloss.NewStyle().Foreground(p.text).Background(lipgloss.Color("#111111")).Padding(0, 1),
		CodeLanguage: lipgloss.NewStyle().Foreground(p.dim).Italic(true),

		FileChip:   lipgloss.NewStyle().Foreground(p.accent).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
		Timestamp:  lipgloss.NewStyle().Foreground(p.dim),
		EmptyState: lipgloss.NewStyle().Foreground(p.dim).Italic(true),
		Thinking:   lipgloss.NewStyle().Foreground(p.accent),
		Help:       lipgloss.NewStyle().Foreground(p.dim),
		TextArea:   lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(p.border),
		PromptMode: lipgloss.NewStyle().Foreground(p.accent).Bold(true),

		ChromaStyle: p.chroma,
	}
}

// Truncate shortens a string for sidebar display.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + TruncateSuffix
}
