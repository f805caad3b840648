package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nileshdj/pavti/internal/user"
)

// LoginDoneMsg carries the operator who signed in. Everything they create
// or edit afterwards is attributed to this account.
type LoginDoneMsg struct {
	User *user.User
}

type loginResultMsg struct {
	user *user.User
	err  error
}

type LoginModel struct {
	CommonModel
	userService *user.Service

	form *huh.Form
	err  error

	email    string
	password string
}

func NewLoginModel(userSvc *user.Service) LoginModel {
	m := LoginModel{userService: userSvc}
	m.form = m.newForm()

	return m
}

func (m LoginModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("email cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Sign In" }
func (m LoginModel) ShortHelp() string { return "Enter: submit | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		if result.err != nil {
			m.err = result.err
			m.email = ""
			m.password = ""
			m.form = m.newForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoginDoneMsg{User: result.user} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	email := m.form.GetString("email")
	password := m.form.GetString("password")

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, u, err := m.userService.Login(ctx, email, password)

		return loginResultMsg{user: u, err: err}
	}
}

func (m LoginModel) View() string {
	body := m.form.View()

	if m.err != nil {
		body = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + body
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(50).
		Render("Pavti Admin\n\n" + body)
}
