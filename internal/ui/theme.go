package ui

import (
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mytasks/internal/storage"
	"mytasks/internal/tasks"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func parseTheme(v string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(v))) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	}
	return "", false
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// loadTheme prefers the persisted choice over the configured default.
func loadTheme(prefs storage.KV, key string, fallback string) Theme {
	def, ok := parseTheme(fallback)
	if !ok {
		def = ThemeLight
	}
	if prefs == nil {
		return def
	}
	v, ok, err := prefs.Get(key)
	if err != nil {
		log.Printf("ui: read theme: %v", err)
		return def
	}
	if !ok {
		return def
	}
	if t, ok := parseTheme(v); ok {
		return t
	}
	return def
}

type styles struct {
	title    lipgloss.Style
	task     lipgloss.Style
	selected lipgloss.Style
	dimmed   lipgloss.Style
	state    map[tasks.State]lipgloss.Style
	status   lipgloss.Style
	help     lipgloss.Style
}

func newStyles(t Theme) styles {
	fg, dim, accent := lipgloss.Color("235"), lipgloss.Color("245"), lipgloss.Color("27")
	done, doing, notDone := lipgloss.Color("28"), lipgloss.Color("166"), lipgloss.Color("27")
	if t == ThemeDark {
		fg, dim, accent = lipgloss.Color("252"), lipgloss.Color("243"), lipgloss.Color("75")
		done, doing, notDone = lipgloss.Color("114"), lipgloss.Color("215"), lipgloss.Color("75")
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(fg),
		task:     lipgloss.NewStyle().Bold(true).Foreground(fg),
		selected: lipgloss.NewStyle().Bold(true).Foreground(accent),
		dimmed:   lipgloss.NewStyle().Foreground(dim),
		state: map[tasks.State]lipgloss.Style{
			tasks.StateDone:    lipgloss.NewStyle().Foreground(done),
			tasks.StateDoing:   lipgloss.NewStyle().Foreground(doing),
			tasks.StateNotDone: lipgloss.NewStyle().Foreground(notDone),
		},
		status: lipgloss.NewStyle().Foreground(accent),
		help:   lipgloss.NewStyle().Faint(true),
	}
}

func (s styles) stateStyle(st tasks.State) lipgloss.Style {
	if style, ok := s.state[st]; ok {
		return style
	}
	return s.dimmed
}
