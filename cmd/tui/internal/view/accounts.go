package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/format"
)

type AccountsModel struct {
	CommonModel
	session Session

	table    table.Model
	accounts []finance.Account
	loading  bool
	err      error
	status   string
}

func NewAccountsModel(s Session) AccountsModel {
	columns := []table.Column{
		{Title: "Institution", Width: 20},
		{Title: "Account", Width: 24},
		{Title: "Type", Width: 14},
		{Title: "Mask", Width: 6},
		{Title: "Balance", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(st)

	return AccountsModel{session: s, table: t, loading: true}
}

func (m AccountsModel) Title() string { return "Accounts" }

func (m AccountsModel) ShortHelp() string {
	return "Esc: back | r: refresh | x: unlink bank of selected account"
}

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.accounts = msg.accounts
		m.refreshTable()

		return m, nil

	case unlinkResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error unlinking: %v", msg.err)
			return m, nil
		}

		m.status = "Bank unlinked."
		m.loading = true

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 14)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "x":
			return m, m.unlinkCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.accounts))
	for _, a := range m.accounts {
		rows = append(rows, table.Row{
			format.Truncate(a.InstitutionName, 20),
			format.Truncate(a.Name, 24),
			format.Capitalize(strings.TrimSpace(a.Type + " " + a.Subtype)),
			a.Mask,
			FormatAmount(a.Balances.Current, a.Balances.ISOCurrencyCode),
		})
	}

	m.table.SetRows(rows)
}

func (m AccountsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading accounts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if len(m.accounts) == 0 {
		return lipgloss.NewStyle().Padding(2).Render("No connected accounts.\n\n(Esc to go back)")
	}

	totals := fmt.Sprintf(
		"Net worth: %s | Assets: %s | Debt: %s | Accounts: %d",
		activeStyle(format.USD(finance.NetWorth(m.accounts))),
		format.USD(finance.TotalAssets(m.accounts)),
		format.USD(finance.TotalDebt(m.accounts)),
		len(m.accounts),
	)

	groups := finance.GroupByInstitution(m.accounts)
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = fmt.Sprintf("%s (%d)", g.Institution, len(g.Accounts))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(totals),
		faintStyle.Render("Banks: "+strings.Join(names, ", ")),
		tableView,
	)

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

type loadAccountsMsg struct {
	accounts []finance.Account
	err      error
}

func (m AccountsModel) loadCmd() tea.Cmd {
	ledger, userID := m.session.App.Ledger, m.session.User.ID

	return func() tea.Msg {
		ctx, cancel := ServiceCtx()
		defer cancel()

		accounts, err := ledger.Accounts(ctx, userID)

		return loadAccountsMsg{accounts: accounts, err: err}
	}
}

type unlinkResultMsg struct {
	err error
}

func (m AccountsModel) unlinkCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.accounts) {
		return nil
	}

	accountID := m.accounts[idx].AccountID
	ledger, userID := m.session.App.Ledger, m.session.User.ID

	return func() tea.Msg {
		ctx, cancel := ServiceCtx()
		defer cancel()

		return unlinkResultMsg{err: ledger.RemoveAccount(ctx, userID, accountID)}
	}
}
