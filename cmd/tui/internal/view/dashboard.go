package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finsight/internal/health"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
	"github.com/MrJamesThe3rd/finsight/internal/task"
)

// Generator raises insights for a user.
type Generator interface {
	Generate(ctx context.Context, userID string) ([]*insight.Insight, error)
}

type dashboardState int

const (
	dashboardBrowse dashboardState = iota
	dashboardNotes
)

// DashboardModel shows the latest health score and the user's active insights.
type DashboardModel struct {
	userID   string
	health   *health.Calculator
	insights *insight.Service
	tasks    *task.Service
	signals  Generator

	state  dashboardState
	list   list.Model
	form   *huh.Form
	action insight.Status

	score   *health.Snapshot
	loading bool
	status  string
}

type insightItem struct {
	in *insight.Insight
}

func (i insightItem) Title() string {
	return severityBadge(i.in.Severity) + " " + i.in.Title
}

func (i insightItem) Description() string { return i.in.Explanation }
func (i insightItem) FilterValue() string { return i.in.Title }

func NewDashboardModel(userID string, h *health.Calculator, ins *insight.Service, tasks *task.Service, signals Generator) DashboardModel {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Active insights"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return DashboardModel{
		userID:   userID,
		health:   h,
		insights: ins,
		tasks:    tasks,
		signals:  signals,
		list:     l,
		loading:  true,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	if m.state == dashboardNotes {
		return "Enter: confirm | Esc: cancel"
	}

	return "r: resolve | d: dismiss | t: create task | g: regenerate | h: recalculate score | Esc: back"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.score = msg.score

		items := make([]list.Item, len(msg.insights))
		for i, in := range msg.insights {
			items[i] = insightItem{in: in}
		}

		return m, m.list.SetItems(items)

	case dashboardActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.status

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-12)
		return m, nil
	}

	if m.state == dashboardNotes {
		return m.updateNotes(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.loading {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m.askNotes(insight.StatusResolved)
		case "d":
			return m.askNotes(insight.StatusDismissed)
		case "t":
			return m, m.createTaskCmd()
		case "g":
			m.loading = true
			m.status = "Running detection..."

			return m, m.generateCmd()
		case "h":
			m.loading = true
			return m, m.recalculateCmd()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m DashboardModel) selected() *insight.Insight {
	item, ok := m.list.SelectedItem().(insightItem)
	if !ok {
		return nil
	}

	return item.in
}

func (m DashboardModel) askNotes(action insight.Status) (tea.Model, tea.Cmd) {
	if m.selected() == nil {
		return m, nil
	}

	m.action = action
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("notes").
				Title(fmt.Sprintf("Notes (%s)", action)).
				Placeholder("optional").
				CharLimit(500),
		),
	).WithWidth(50).WithShowHelp(false)
	m.state = dashboardNotes

	return m, m.form.Init()
}

func (m DashboardModel) updateNotes(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = dashboardBrowse
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	notes := strings.TrimSpace(m.form.GetString("notes"))

	m.state = dashboardBrowse
	m.form = nil

	return m, m.resolveCmd(m.selected(), m.action, notes)
}

func (m DashboardModel) View() string {
	if m.loading && m.score == nil && len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, m.scoreView(), m.list.View())

	if m.state == dashboardNotes && m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel.Width(54).Render(m.form.View()))
	}

	if m.status != "" {
		content = faint.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n" + faint.Render(m.ShortHelp()))
}

func (m DashboardModel) scoreView() string {
	if m.score == nil {
		return panel.Render("No health score yet. Press h to calculate.")
	}

	s := m.score
	score := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(s.Score)).Render(fmt.Sprintf("%d", s.Score))

	return panel.Render(fmt.Sprintf(
		"Health score %s  %s, %s\n\nSavings %.0f  Budgets %.0f  Income %.0f  Expenses %.0f  Goals %.0f",
		score, active.Render(string(s.HealthState)), s.TrendDirection,
		s.Components.SavingsRate, s.Components.BudgetAdherence, s.Components.IncomeStability,
		s.Components.ExpenseVolatility, s.Components.GoalProgress,
	))
}

// Messages

type dashboardLoadedMsg struct {
	score    *health.Snapshot
	insights []*insight.Insight
	err      error
}

type dashboardActionMsg struct {
	status string
	err    error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		snapshots, err := m.health.History(ctx, m.userID, 1)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		insights, err := m.insights.List(ctx, insight.ListFilter{UserID: m.userID, Status: new(insight.StatusActive)})
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		msg := dashboardLoadedMsg{insights: insights}
		if len(snapshots) > 0 {
			msg.score = snapshots[0]
		}

		return msg
	}
}

func (m DashboardModel) resolveCmd(in *insight.Insight, action insight.Status, notes string) tea.Cmd {
	if in == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.insights.Resolve(ctx, m.userID, in.ID, action, notes); err != nil {
			return dashboardActionMsg{err: err}
		}

		return dashboardActionMsg{status: fmt.Sprintf("%q marked %s.", in.Title, action)}
	}
}

func (m DashboardModel) createTaskCmd() tea.Cmd {
	in := m.selected()
	if in == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		t, err := m.tasks.CreateFromInsight(ctx, m.userID, in.ID, task.FromInsightParams{})
		if err != nil {
			return dashboardActionMsg{err: err}
		}

		return dashboardActionMsg{status: fmt.Sprintf("Created %s task %q.", t.Priority, t.Title)}
	}
}

func (m DashboardModel) generateCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		raised, err := m.signals.Generate(ctx, m.userID)
		if err != nil {
			return dashboardActionMsg{err: err}
		}

		return dashboardActionMsg{status: fmt.Sprintf("Detection finished, %d insight(s) current.", len(raised))}
	}
}

func (m DashboardModel) recalculateCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		result, err := m.health.Calculate(ctx, m.userID)
		if err != nil {
			return dashboardActionMsg{err: fmt.Errorf("calculating health score: %w", err)}
		}

		return dashboardActionMsg{status: fmt.Sprintf("Health score is %d.", result.Score)}
	}
}
