package view

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finsight/internal/insight"
)

const dbTimeout = 5 * time.Second

// BackMsg returns the program to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Format(time.DateOnly)
}

var (
	faint  = lipgloss.NewStyle().Faint(true)
	active = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	panel  = lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))
)

var severityColors = map[insight.Severity]lipgloss.Color{
	insight.SeverityCritical: lipgloss.Color("196"),
	insight.SeverityHigh:     lipgloss.Color("208"),
	insight.SeverityMedium:   lipgloss.Color("220"),
	insight.SeverityLow:      lipgloss.Color("244"),
}

func severityBadge(s insight.Severity) string {
	return lipgloss.NewStyle().Bold(true).Foreground(severityColors[s]).Render(fmt.Sprintf("%-8s", s))
}

// scoreColor goes from red to green across the 0-100 range.
func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 75:
		return lipgloss.Color("42")
	case score >= 50:
		return lipgloss.Color("220")
	case score >= 25:
		return lipgloss.Color("208")
	default:
		return lipgloss.Color("196")
	}
}
