package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finsight/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/finsight/internal/config"
	"github.com/MrJamesThe3rd/finsight/internal/database"
	"github.com/MrJamesThe3rd/finsight/internal/health"
	healthStore "github.com/MrJamesThe3rd/finsight/internal/health/store"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
	insightStore "github.com/MrJamesThe3rd/finsight/internal/insight/store"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/finsight/internal/ledger/store"
	"github.com/MrJamesThe3rd/finsight/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/finsight/internal/matching/store"
	"github.com/MrJamesThe3rd/finsight/internal/signal"
	"github.com/MrJamesThe3rd/finsight/internal/task"
	taskStore "github.com/MrJamesThe3rd/finsight/internal/task/store"
)

type model struct {
	userID string

	healthCalculator *health.Calculator
	insightService   *insight.Service
	taskService      *task.Service
	ledgerService    *ledger.Service
	importService    *importer.Service
	matchingService  *matching.Service
	signalEngine     *signal.Engine

	currentView View

	dashboardView view.DashboardModel
	tasksView     view.TasksModel
	importView    view.ImportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewDashboard View = 1
	ViewTasks     View = 2
	ViewImport    View = 3
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	entries := ledgerStore.New(db)
	insightSvc := insight.NewService(insightStore.New(db))

	// The terminal runs locally as the configured demo user.
	userID := cfg.Auth.DemoUserID

	return model{
		userID:           userID,
		healthCalculator: health.NewCalculator(entries, healthStore.New(db)),
		insightService:   insightSvc,
		taskService:      task.NewService(taskStore.New(db), insightSvc),
		ledgerService:    ledger.NewService(entries),
		importService:    importer.NewService(),
		matchingService:  matching.NewService(matchingStore.New(db)),
		signalEngine:     signal.NewEngine(entries, insightSvc),
		currentView:      ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.userID, m.healthCalculator, m.insightService, m.taskService, m.signalEngine)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewTasks
				m.tasksView = view.NewTasksModel(m.userID, m.taskService)

				return m, m.tasksView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.userID, m.ledgerService, m.importService, m.matchingService)

				return m, m.importView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewTasks:
		var newModel tea.Model
		newModel, cmd = m.tasksView.Update(msg)
		m.tasksView = newModel.(view.TasksModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Finsight\n\n" +
				"1. Dashboard\n" +
				"2. Tasks\n" +
				"3. Import Statement\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewTasks:
		return m.tasksView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
