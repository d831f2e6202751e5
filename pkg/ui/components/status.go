package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SourceStatus describes the snapshot the rows were computed from.
type SourceStatus struct {
	Pairs     int
	Prices    int
	Currency  string
	FetchedAt time.Time
}

// StatusComponent renders snapshot status.
type StatusComponent struct {
	status SourceStatus
	known  bool
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{}
}

// Update replaces the snapshot status.
func (s *StatusComponent) Update(status SourceStatus) {
	s.status = status
	s.known = true
}

// View renders the status component. An empty side of the snapshot means
// that source was unavailable on the last refresh.
func (s *StatusComponent) View() string {
	if !s.known {
		return "Waiting for market data..."
	}

	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	down := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	render := func(name string, n int) string {
		if n == 0 {
			return down.Render(fmt.Sprintf("○ %s: unavailable", name))
		}
		return ok.Render(fmt.Sprintf("● %s: %d", name, n))
	}

	return fmt.Sprintf("├─ %s  %s  (%s, fetched %s)",
		render("pairs", s.status.Pairs),
		render("prices", s.status.Prices),
		s.status.Currency,
		s.status.FetchedAt.Format("15:04:05"),
	)
}
