package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds watch-loop counters for display.
type Stats struct {
	Refreshes  int64
	Profitable int
	Errors     int64
	LastUpdate time.Time
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// Stats returns the current statistics.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	errorsDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	if s.stats.Errors > 0 {
		errorsDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	}

	updated := "never"
	if !s.stats.LastUpdate.IsZero() {
		updated = s.stats.LastUpdate.Format("15:04:05")
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Refreshes: %s  │  Profitable now: %s  │  Errors: %s  │  Updated: %s",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Refreshes)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Profitable)),
			errorsDisplay,
			valueStyle.Render(updated),
		)
}
