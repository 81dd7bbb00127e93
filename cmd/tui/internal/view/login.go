package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finlink/internal/user"
)

const (
	modeSignIn   = "signin"
	modeRegister = "register"
)

// LoggedInMsg carries the authenticated user back to the menu.
type LoggedInMsg struct {
	User *user.User
}

type LoginModel struct {
	CommonModel
	users *user.Service

	form       *huh.Form
	err        error
	submitting bool

	mode     string
	email    string
	password string
}

// NewLoginModel builds the sign-in form. prefill fills in the demo credentials.
func NewLoginModel(users *user.Service, prefill bool) LoginModel {
	m := LoginModel{users: users, mode: modeSignIn}
	if prefill {
		m.email = user.DemoEmail
		m.password = user.DemoPassword
	}

	m.form = m.buildForm()

	return m
}

func (m *LoginModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("mode").
				Title("Welcome").
				Options(
					huh.NewOption("Sign in", modeSignIn),
					huh.NewOption("Create account", modeRegister),
				).
				Value(&m.mode),

			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return errors.New("enter a valid email")
					}
					return nil
				}),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("password is required")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m LoginModel) Title() string { return "Sign In" }

func (m LoginModel) ShortHelp() string { return "Enter: next | ctrl+c: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		m.submitting = false

		if result.err != nil {
			m.err = result.err
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		u := result.User

		return m, func() tea.Msg { return LoggedInMsg{User: u} }
	}

	if m.submitting {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.submitting = true

	return m, m.submitCmd()
}

func (m LoginModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("Finlink")

	errStr := ""
	if m.err != nil {
		errStr = "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render(header + "\n\n" + m.form.View() + errStr)
}

type loginResultMsg struct {
	User *user.User
	err  error
}

func (m LoginModel) submitCmd() tea.Cmd {
	// The form works on its own copy of the bound fields; read results back by key.
	mode := m.form.GetString("mode")
	email := m.form.GetString("email")
	password := m.form.GetString("password")
	users := m.users

	return func() tea.Msg {
		ctx, cancel := ServiceCtx()
		defer cancel()

		if mode == modeRegister {
			u, err := users.Register(ctx, user.RegisterParams{Email: email, Password: password})
			return loginResultMsg{User: u, err: err}
		}

		u, err := users.Login(ctx, email, password)

		return loginResultMsg{User: u, err: err}
	}
}
