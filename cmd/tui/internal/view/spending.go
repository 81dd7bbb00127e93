package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/format"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
)

const barWidth = 40

var monthOptions = []int{3, ledger.DefaultMonths, 12}

type SpendingModel struct {
	CommonModel
	session Session

	monthsIdx int
	points    []finance.MonthlySpendingPoint
	loading   bool
	err       error
}

func NewSpendingModel(s Session) SpendingModel {
	return SpendingModel{session: s, monthsIdx: 1, loading: true}
}

func (m SpendingModel) Title() string { return "Monthly Spending" }

func (m SpendingModel) ShortHelp() string { return "Esc: back | m: change period" }

func (m SpendingModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SpendingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSpendingMsg:
		m.loading = false
		m.err = msg.err
		m.points = msg.points

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "m":
			m.monthsIdx = (m.monthsIdx + 1) % len(monthOptions)
			m.loading = true

			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m SpendingModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading spending...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Spending over the last %s months [m]",
		activeStyle(fmt.Sprint(monthOptions[m.monthsIdx])))

	return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" + SpendingBars(m.points, barWidth))
}

// SpendingBars draws one horizontal bar per month scaled to the largest month.
func SpendingBars(points []finance.MonthlySpendingPoint, width int) string {
	peak := 0.0
	for _, p := range points {
		peak = max(peak, p.TotalSpent)
	}

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	var sb strings.Builder

	for _, p := range points {
		n := 0
		if peak > 0 {
			n = int(p.TotalSpent / peak * float64(width))
		}

		if n == 0 && p.TotalSpent > 0 {
			n = 1
		}

		fmt.Fprintf(&sb, "%-9s %s%s %s\n",
			format.Truncate(p.Month, 9),
			bar.Render(strings.Repeat("█", n)),
			strings.Repeat(" ", width-n),
			format.USD(p.TotalSpent),
		)
	}

	return sb.String()
}

type loadSpendingMsg struct {
	points []finance.MonthlySpendingPoint
	err    error
}

func (m SpendingModel) loadCmd() tea.Cmd {
	l, userID, months := m.session.App.Ledger, m.session.User.ID, monthOptions[m.monthsIdx]

	return func() tea.Msg {
		ctx, cancel := ServiceCtx()
		defer cancel()

		points, err := l.MonthlySpending(ctx, userID, months)

		return loadSpendingMsg{points: points, err: err}
	}
}
