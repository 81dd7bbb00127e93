package view

import (
	stdcmp "cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/format"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
)

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateEditing
)

// txItem wraps a transaction to implement list.Item. index points into
// TransactionsModel.txs so local edits survive refiltering.
type txItem struct {
	tx    finance.Transaction
	index int
}

func (i txItem) Title() string {
	category := faintStyle.Render(fmt.Sprintf("[%s]", i.tx.Category))

	name := i.tx.Name
	if i.tx.Pending {
		name += " (pending)"
	}

	return fmt.Sprintf("%s  %12s  %s  %s",
		FormatDate(i.tx.Date), FormatAmount(i.tx.Amount, i.tx.ISOCurrencyCode), category, name)
}

func (i txItem) Description() string {
	parts := []string{i.tx.AccountName, i.tx.InstitutionName}
	if i.tx.MerchantName != "" && i.tx.MerchantName != i.tx.Name {
		parts = append(parts, i.tx.MerchantName)
	}

	return strings.Join(parts, " | ")
}

func (i txItem) FilterValue() string {
	return strings.Join([]string{i.tx.Name, i.tx.Description, i.tx.MerchantName}, " ")
}

type TransactionsModel struct {
	CommonModel
	session Session

	state           txState
	timeframePicker TimeframePicker
	list            list.Model
	form            *huh.Form
	txs             []finance.Transaction
	editIndex       int

	period      ledger.Range
	categoryIdx int
	loading     bool
	status      string
}

func NewTransactionsModel(s Session) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		session:         s,
		timeframePicker: NewTimeframePicker(TimeframeThisWeek),
		list:            l,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateList:
		return "Esc: back | Enter: edit category | /: search | c: category filter"
	case txStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.period = msg.Range
		m.loading = true
		m.state = txStateList

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.txs = msg.txs
		m.categoryIdx = 0
		m.refreshListItems()

		m.status = ""
		if len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case ruleSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Category changed locally; rule not saved: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Saved rule %q -> %s.", msg.pattern, msg.category)

		return m, nil

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-10)
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}

			m.state = txStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		case "enter":
			return m.startEditing()
		case "c":
			m.categoryIdx = (m.categoryIdx + 1) % (len(finance.Categories(m.txs)) + 1)
			m.refreshListItems()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

// categoryFilter is the category selected with "c"; empty shows all.
func (m TransactionsModel) categoryFilter() string {
	categories := finance.Categories(m.txs)
	if m.categoryIdx == 0 || m.categoryIdx > len(categories) {
		return ""
	}

	return categories[m.categoryIdx-1]
}

func (m TransactionsModel) startEditing() (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(txItem)
	if !ok {
		return m, nil
	}

	m.editIndex = selected.index

	category := selected.tx.Category
	remember := false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("category").
				Title("Category").
				Value(&category).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("category cannot be empty")
					}
					return nil
				}),

			huh.NewConfirm().
				Key("remember").
				Title("Apply to similar transactions from now on?").
				Affirmative("Yes").
				Negative("No").
				Value(&remember),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = txStateEditing

	return m, m.form.Init()
}

func (m TransactionsModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = txStateList
			m.form = nil

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	// Edits stay in this view; only a remembered rule is stored.
	tx := &m.txs[m.editIndex]
	tx.Category = strings.TrimSpace(m.form.GetString("category"))
	remember := m.form.GetBool("remember")

	m.state = txStateList
	m.status = "Category updated."
	m.form = nil
	m.refreshListItems()

	if !remember {
		return m, nil
	}

	return m, m.saveRuleCmd(stdcmp.Or(tx.MerchantName, tx.Name), tx.Category)
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = faintStyle.Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.summaryView() + "\n" + m.list.View())

	case txStateEditing:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.txInfoView() + "\n" + m.form.View())
	}

	return ""
}

func (m TransactionsModel) summaryView() string {
	visible := finance.FilterTransactions(m.txs, finance.Filter{Category: m.categoryFilter()})
	cf := finance.SummarizeCashflow(visible)

	category := "All"
	if c := m.categoryFilter(); c != "" {
		category = c
	}

	lines := []string{
		fmt.Sprintf("%s to %s | [c] Category: %s",
			m.period.Start.Format("Jan 2, 2006"), m.period.End.Format("Jan 2, 2006"), activeStyle(category)),
		fmt.Sprintf("Income: %s | Expenses: %s | Net: %s",
			successStyle.Render(format.USD(cf.TotalIncome)),
			errorStyle.Render(format.USD(cf.TotalExpenses)),
			format.USD(cf.NetCashflow)),
	}

	totals := finance.CategoryTotals(visible)
	slices.SortStableFunc(totals, func(a, b finance.CategoryTotal) int {
		return stdcmp.Compare(b.Total, a.Total)
	})

	top := make([]string, 0, 3)
	for _, t := range totals[:min(3, len(totals))] {
		top = append(top, fmt.Sprintf("%s %s", t.Category, format.USD(t.Total)))
	}

	if len(top) > 0 {
		lines = append(lines, faintStyle.Render("Top spending: "+strings.Join(top, ", ")))
	}

	return strings.Join(lines, "\n")
}

func (m TransactionsModel) txInfoView() string {
	if m.editIndex < 0 || m.editIndex >= len(m.txs) {
		return ""
	}

	tx := m.txs[m.editIndex]

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"Date: %s  |  Amount: %s  |  Account: %s\nName: %s",
			FormatDate(tx.Date),
			FormatAmount(tx.Amount, tx.ISOCurrencyCode),
			tx.AccountName,
			tx.Name,
		))
}

func (m *TransactionsModel) refreshListItems() {
	category := m.categoryFilter()

	items := make([]list.Item, 0, len(m.txs))
	for i, tx := range m.txs {
		if category != "" && tx.Category != category {
			continue
		}

		items = append(items, txItem{tx: tx, index: i})
	}

	m.list.SetItems(items)
}

// Messages

type loadTxsMsg struct {
	txs []finance.Transaction
	err error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	l, userID, period := m.session.App.Ledger, m.session.User.ID, m.period

	return func() tea.Msg {
		ctx, cancel := ServiceCtx()
		defer cancel()

		txs, err := l.Transactions(ctx, userID, period)

		return loadTxsMsg{txs: txs, err: err}
	}
}

type ruleSavedMsg struct {
	pattern  string
	category string
	err      error
}

func (m TransactionsModel) saveRuleCmd(pattern, category string) tea.Cmd {
	rules, userID := m.session.App.Rules, m.session.User.ID

	return func() tea.Msg {
		ctx, cancel := ServiceCtx()
		defer cancel()

		_, err := rules.AddRule(ctx, userID, pattern, category)

		return ruleSavedMsg{pattern: pattern, category: category, err: err}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 2 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()
	if index == m.Index() {
		title = accentStyle.Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", faintStyle.Render(i.Description()))
}
