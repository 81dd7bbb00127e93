package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finlink/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/finlink/internal/app"
	"github.com/MrJamesThe3rd/finlink/internal/config"
)

type model struct {
	app     *app.App
	session view.Session

	currentView View
	width       int
	height      int

	loginView        view.LoginModel
	accountsView     view.AccountsModel
	transactionsView view.TransactionsModel
	spendingView     view.SpendingModel
	importView       view.ImportModel
	exportView       view.ExportModel
}

type View int

const (
	ViewLogin        View = 0
	ViewMenu         View = 1
	ViewAccounts     View = 2
	ViewTransactions View = 3
	ViewSpending     View = 4
	ViewImport       View = 5
	ViewExport       View = 6
)

func initialModel(a *app.App) model {
	return model{
		app:         a,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(a.Users, !a.Config.IsProduction()),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

// sized forwards the last known window size so a freshly built view lays
// itself out immediately.
func (m model) sized(v tea.Model) tea.Model {
	if m.width == 0 {
		return v
	}

	updated, _ := v.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})

	return updated
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.LoggedInMsg:
		m.session = view.Session{App: m.app, User: msg.User}
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewAccounts:
		var newModel tea.Model
		newModel, cmd = m.accountsView.Update(msg)
		m.accountsView = newModel.(view.AccountsModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.transactionsView.Update(msg)
		m.transactionsView = newModel.(view.TransactionsModel)
	case ViewSpending:
		var newModel tea.Model
		newModel, cmd = m.spendingView.Update(msg)
		m.spendingView = newModel.(view.SpendingModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewAccounts
		m.accountsView = m.sized(view.NewAccountsModel(m.session)).(view.AccountsModel)

		return m, m.accountsView.Init()
	case "2":
		m.currentView = ViewTransactions
		m.transactionsView = m.sized(view.NewTransactionsModel(m.session)).(view.TransactionsModel)

		return m, m.transactionsView.Init()
	case "3":
		m.currentView = ViewSpending
		m.spendingView = view.NewSpendingModel(m.session)

		return m, m.spendingView.Init()
	case "4":
		m.currentView = ViewImport
		m.importView = m.sized(view.NewImportModel(m.session)).(view.ImportModel)

		return m, m.importView.Init()
	case "5":
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.session)

		return m, m.exportView.Init()
	}

	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("%s\nSigned in as %s\n\n", m.app.Config.App.Name, m.session.User.Email) +
				"1. Accounts\n" +
				"2. Transactions\n" +
				"3. Monthly Spending\n" +
				"4. Preview Statement\n" +
				"5. Export Transactions\n\n" +
				"q. Quit",
		)
	case ViewAccounts:
		return m.accountsView.View()
	case ViewTransactions:
		return m.transactionsView.View()
	case ViewSpending:
		return m.spendingView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start services", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		a.Close()
		os.Exit(1)
	}
}
