package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finsight/internal/task"
)

var statusFilters = []*task.Status{
	nil,
	new(task.StatusOpen),
	new(task.StatusInProgress),
	new(task.StatusCompleted),
}

// TasksModel lists the user's tasks, most urgent first.
type TasksModel struct {
	userID string
	svc    *task.Service

	table     table.Model
	tasks     []*task.Task
	stats     *task.Statistics
	filterIdx int

	loading bool
	status  string
	err     error
}

func NewTasksModel(userID string, svc *task.Service) TasksModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Priority", Width: 9},
			{Title: "Status", Width: 12},
			{Title: "Type", Width: 18},
			{Title: "Due", Width: 11},
			{Title: "Title", Width: 50},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return TasksModel{userID: userID, svc: svc, table: t, loading: true}
}

func (m TasksModel) Title() string { return "Tasks" }

func (m TasksModel) ShortHelp() string {
	return "s: status filter | p: start | c: complete | x: dismiss | r: refresh | Esc: back"
}

func (m TasksModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m TasksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}

		m.tasks = msg.tasks
		m.stats = msg.stats
		m.refreshTable()

		return m, nil

	case taskUpdatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("%q is now %s.", msg.task.Title, msg.task.Status)

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.filterIdx = (m.filterIdx + 1) % len(statusFilters)
			return m, m.loadCmd()
		case "p":
			return m, m.setStatusCmd(task.StatusInProgress)
		case "c":
			return m, m.setStatusCmd(task.StatusCompleted)
		case "x":
			return m, m.setStatusCmd(task.StatusDismissed)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m TasksModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading tasks...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	filter := "All"
	if f := statusFilters[m.filterIdx]; f != nil {
		filter = string(*f)
	}

	header := fmt.Sprintf("Filter: [s] Status: %s", active.Render(filter))
	if m.stats != nil {
		header += faint.Render(fmt.Sprintf("   open %d | in progress %d | completed %d | overdue %d",
			m.stats.Open, m.stats.InProgress, m.stats.Completed, m.stats.Overdue))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
		faint.Render(m.ShortHelp()),
	)

	if m.status != "" {
		content = faint.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *TasksModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.tasks))
	for _, t := range m.tasks {
		rows = append(rows, table.Row{
			string(t.Priority),
			string(t.Status),
			string(t.Type),
			FormatDate(t.DueDate),
			t.Title,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type tasksLoadedMsg struct {
	tasks []*task.Task
	stats *task.Statistics
	err   error
}

type taskUpdatedMsg struct {
	task *task.Task
	err  error
}

func (m TasksModel) loadCmd() tea.Cmd {
	filter := task.ListFilter{UserID: m.userID, Status: statusFilters[m.filterIdx]}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tasks, err := m.svc.List(ctx, filter)
		if err != nil {
			return tasksLoadedMsg{err: err}
		}

		stats, err := m.svc.Statistics(ctx, m.userID)
		if err != nil {
			return tasksLoadedMsg{err: err}
		}

		return tasksLoadedMsg{tasks: tasks, stats: stats}
	}
}

func (m TasksModel) setStatusCmd(status task.Status) tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.tasks) {
		return nil
	}

	id := m.tasks[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		t, err := m.svc.UpdateStatus(ctx, m.userID, id, status, "")

		return taskUpdatedMsg{task: t, err: err}
	}
}
