package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// PageStats is the summary shown at the bottom of the page
type PageStats struct {
	Endpoint    string
	Items       int
	Submitted   int
	Failed      int
	Loading     bool
	LastRefresh time.Time
}

// StatusBar renders PageStats and the key help on one line
type StatusBar struct {
	stats      PageStats
	width      int
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
}

func NewStatusBar() *StatusBar {
	return &StatusBar{
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
	}
}

func (s *StatusBar) SetSize(width int) {
	s.width = width
}

func (s *StatusBar) UpdateStats(stats PageStats) {
	s.stats = stats
}

func (s *StatusBar) View() string {
	state := "idle"
	if s.stats.Loading {
		state = "submitting"
	}
	refreshed := "never"
	if !s.stats.LastRefresh.IsZero() {
		refreshed = s.stats.LastRefresh.Format("15:04:05")
	}

	fields := []struct {
		label string
		value string
	}{
		{"API", s.stats.Endpoint},
		{"Items", fmt.Sprintf("%d", s.stats.Items)},
		{"Sent", fmt.Sprintf("%d (%d failed)", s.stats.Submitted, s.stats.Failed)},
		{"State", state},
		{"Refreshed", refreshed},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		parts = append(parts, s.labelStyle.Render(f.label+":")+" "+s.valueStyle.Render(f.value))
	}

	line := strings.Join(parts, "  ")
	help := helpStyle.Render("enter submit • ctrl+r refresh • pgup/pgdn scroll • esc quit")
	style := lipgloss.NewStyle()
	if s.width > 0 {
		style = style.Width(s.width)
	}
	return style.Render(line + "\n" + help)
}
