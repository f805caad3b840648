package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nileshdj/pavti/internal/user"
)

type usersState int

const (
	usersStateBrowse usersState = iota
	usersStateAdd
)

type loadUsersMsg struct {
	users []*user.User
	err   error
}

type userChangedMsg struct {
	status string
	err    error
}

type UsersModel struct {
	CommonModel
	userService *user.Service

	state usersState
	table table.Model
	users []*user.User
	form  *huh.Form

	loading bool
	err     error
	status  string

	formUsername string
	formEmail    string
	formPassword string
}

func NewUsersModel(userSvc *user.Service) UsersModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Username", Width: 20},
		{Title: "Email", Width: 32},
		{Title: "Created", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return UsersModel{
		userService: userSvc,
		table:       t,
	}
}

func (m UsersModel) Title() string { return "Users" }
func (m UsersModel) ShortHelp() string {
	if m.state == usersStateAdd {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | a: add | x: delete | r: refresh"
}

func (m UsersModel) Init() tea.Cmd {
	return m.loadUsersCmd()
}

func (m UsersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadUsersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.users = msg.users
		m.refreshTable()
		return m, nil

	case userChangedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		m.state = usersStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadUsersCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case usersStateBrowse:
		return m.updateBrowse(msg)
	case usersStateAdd:
		return m.updateAdd(msg)
	}

	return m, nil
}

func (m UsersModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadUsersCmd()
		case "a":
			return m.enterAddMode()
		case "x":
			return m.deleteSelected()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m UsersModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formUsername = ""
	m.formEmail = ""
	m.formPassword = ""

	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("required")
		}
		return nil
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("username").Title("Username").Value(&m.formUsername).Validate(required),
			huh.NewInput().Key("email").Title("Email").Value(&m.formEmail).Validate(required),
			huh.NewInput().Key("password").Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword).Validate(required),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = usersStateAdd
	m.table.Blur()
	return m, m.form.Init()
}

func (m UsersModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = usersStateBrowse
			m.form = nil
			m.table.Focus()
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

	username := m.form.GetString("username")
	email := m.form.GetString("email")
	password := m.form.GetString("password")

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.userService.Create(ctx, username, email, password)

		return userChangedMsg{status: "User added", err: err}
	}
}

// deleteSelected removes the account; their receipts stay behind with the
// filled_by reference cleared by the store.
func (m UsersModel) deleteSelected() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.users) {
		return m, nil
	}

	id := m.users[idx].ID

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return userChangedMsg{status: "User deleted", err: m.userService.Delete(ctx, id)}
	}
}

func (m UsersModel) loadUsersCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		us, err := m.userService.List(ctx)

		return loadUsersMsg{users: us, err: err}
	}
}

func (m *UsersModel) refreshTable() {
	rows := make([]table.Row, len(m.users))
	for i, u := range m.users {
		rows[i] = table.Row{
			fmt.Sprintf("%d", u.ID),
			u.Username,
			u.Email,
			FormatDate(u.CreatedAt),
		}
	}

	m.table.SetRows(rows)
}

func (m UsersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading users...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView
	if m.status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(m.status),
			tableView,
		)
	}

	if m.state == usersStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Add User\n\n" + m.form.View())

		return lipgloss.JoinHorizontal(lipgloss.Top, content, "  ", panel)
	}

	return content
}
