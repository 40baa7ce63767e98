package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	"github.com/MrJamesThe3rd/finsight/internal/matching"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateForm importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

// ImportModel loads a bank export into the ledger. Rows already in the ledger are skipped.
type ImportModel struct {
	userID   string
	ledger   *ledger.Service
	importer *importer.Service
	rules    *matching.Service

	state      importState
	form       *huh.Form
	filePicker filepicker.Model

	bank    importer.Bank
	account uuid.UUID

	status string
	err    error
}

func NewImportModel(userID string, ledgerSvc *ledger.Service, impSvc *importer.Service, rules *matching.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	m := ImportModel{
		userID:     userID,
		ledger:     ledgerSvc,
		importer:   impSvc,
		rules:      rules,
		filePicker: fp,
	}
	m.form = m.buildForm()

	return m
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) buildForm() *huh.Form {
	options := make([]huh.Option[string], 0)
	for _, b := range m.importer.Banks() {
		options = append(options, huh.NewOption(string(b), string(b)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("bank").
				Title("Bank").
				Options(options...),
			huh.NewInput().
				Key("account").
				Title("Account ID").
				Placeholder("00000000-0000-0000-0000-000000000000").
				Validate(func(s string) error {
					if _, err := uuid.Parse(s); err != nil {
						return fmt.Errorf("account must be a UUID")
					}

					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d entries (%d categorized by rules), skipped %d already in the ledger.",
			msg.imported, msg.categorized, msg.skipped)

		return m, nil
	}

	switch m.state {
	case importStateForm:
		return m.updateForm(msg)
	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = importStateImporting
			m.status = fmt.Sprintf("Importing from %s...", path)

			return m, m.importCmd(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m ImportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.bank = importer.Bank(m.form.GetString("bank"))
	m.account = uuid.MustParse(m.form.GetString("account"))
	m.state = importStateFilePick

	return m, m.filePicker.Init()
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateResult:
		m.state = importStateForm
		m.err = nil
		m.status = ""
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.Title() + "\n\n" + m.form.View())
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", m.bank, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		color := lipgloss.Color("46")
		if m.err != nil {
			color = lipgloss.Color("196")
		}

		return lipgloss.NewStyle().Padding(2).Render(
			lipgloss.NewStyle().Foreground(color).Render(m.status) + "\n\n(Esc to go back)",
		)
	}

	return ""
}

// Messages

type importResultMsg struct {
	imported    int
	skipped     int
	categorized int
	err         error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	bank, account := m.bank, m.account

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		params, err := m.importer.Parse(bank, account, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		categorized, err := m.rules.Categorize(ctx, m.userID, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		result, err := m.ledger.Import(ctx, m.userID, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{imported: len(result.Imported), skipped: len(result.Skipped), categorized: categorized}
	}
}
