package view

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/format"
	"github.com/MrJamesThe3rd/finlink/internal/importer"
)

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStatePreview
	importStateResult
)

// ImportModel previews a CSV statement with the user's category rules
// applied. Nothing is stored.
type ImportModel struct {
	CommonModel
	session Session

	state      importState
	filePicker filepicker.Model
	preview    *importer.Preview
	list       list.Model

	status string
	err    error
}

func NewImportModel(s Session) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	l := list.New([]list.Item{}, txItemDelegate{}, 80, 20)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	return ImportModel{session: s, filePicker: fp, list: l}
}

func (m ImportModel) Title() string { return "Preview Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStatePreview {
		return "Esc: back | /: search"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.list.FilterState() != list.Filtering {
			return m.handleEsc()
		}

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.preview = msg.preview
		m.state = importStatePreview

		items := make([]list.Item, len(msg.preview.Transactions))
		for i, tx := range msg.preview.Transactions {
			items[i] = txItem{tx: tx, index: i}
		}

		m.list.Title = fmt.Sprintf("%s (%s, %s)", msg.name, msg.preview.Profile, msg.preview.Charset)
		m.list.SetItems(items)

		return m, nil

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-10)
	}

	switch m.state {
	case importStatePreview:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)

		return m, cmd
	case importStateFilePick:
	default:
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""
		m.preview = nil

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a CSV statement to preview:\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStatePreview:
		s := m.preview.Summary
		header := fmt.Sprintf("%d transactions | Income: %s | Expenses: %s | Net: %s",
			s.TotalTransactions,
			successStyle.Render(format.USD(s.TotalIncome)),
			errorStyle.Render(format.USD(s.TotalExpenses)),
			format.USD(s.NetCashflow),
		)

		return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" + m.list.View())
	case importStateResult:
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

// Messages

type importResultMsg struct {
	name    string
	preview *importer.Preview
	err     error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	a, userID := m.session.App, m.session.User.ID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		preview, err := a.Importer.Preview(f, "")
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := ServiceCtx()
		defer cancel()

		txs, err := a.Rules.Apply(ctx, userID, preview.Transactions)
		if err != nil {
			return importResultMsg{err: err}
		}

		preview.Transactions = txs
		preview.Categories = finance.CategoryTotals(txs)

		return importResultMsg{name: filepath.Base(path), preview: preview}
	}
}
