package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finlink/internal/app"
	"github.com/MrJamesThe3rd/finlink/internal/user"
)

type CommonModel struct {
	Width  int
	Height int
}

// Session is the signed-in user together with the services every screen uses.
type Session struct {
	App  *app.App
	User *user.User
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func activeStyle(s string) string {
	return accentStyle.Render(s)
}
