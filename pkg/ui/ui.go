// Package ui holds the colour scheme and styles shared by solo's terminal output.
package ui

import (
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
)

// GetFangScheme returns the same light/dark-aware color scheme fang uses.
func GetFangScheme() fang.ColorScheme {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)
	return fang.DefaultColorScheme(lipgloss.LightDark(isDark))
}

// Styles are the styles used when rendering registry snapshots.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Type      lipgloss.Style
	Live      lipgloss.Style
	Destroyed lipgloss.Style
	Pending   lipgloss.Style
	Note      lipgloss.Style
}

// NewStyles builds Styles. With color disabled every style renders plain text.
func NewStyles(colorEnabled bool) Styles {
	styles := Styles{
		Title:     lipgloss.NewStyle().Bold(colorEnabled),
		Header:    lipgloss.NewStyle().Bold(colorEnabled),
		Type:      lipgloss.NewStyle(),
		Live:      lipgloss.NewStyle(),
		Destroyed: lipgloss.NewStyle(),
		Pending:   lipgloss.NewStyle(),
		Note:      lipgloss.NewStyle(),
	}
	if !colorEnabled {
		return styles
	}

	cs := GetFangScheme()
	styles.Title = styles.Title.Foreground(cs.QuotedString)
	styles.Header = styles.Header.Foreground(cs.Base).Faint(true)
	styles.Type = styles.Type.Foreground(cs.Program)
	styles.Live = styles.Live.Foreground(cs.Flag)
	styles.Destroyed = styles.Destroyed.Foreground(cs.Base).Strikethrough(true)
	styles.Pending = styles.Pending.Foreground(cs.Base).Faint(true)
	styles.Note = styles.Note.Foreground(cs.QuotedString).Italic(true)

	return styles
}
