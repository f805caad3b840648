package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/nileshdj/pavti/cmd/tui/internal/view"
	"github.com/nileshdj/pavti/internal/config"
	"github.com/nileshdj/pavti/internal/database"
	"github.com/nileshdj/pavti/internal/media"
	"github.com/nileshdj/pavti/internal/receipt"
	receiptStore "github.com/nileshdj/pavti/internal/receipt/store"
	"github.com/nileshdj/pavti/internal/user"
	userStore "github.com/nileshdj/pavti/internal/user/store"
)

type View int

const (
	ViewLogin    View = 0
	ViewMenu     View = 1
	ViewReceipts View = 2
	ViewEntry    View = 3
	ViewUsers    View = 4
)

type model struct {
	receiptService *receipt.Service
	userService    *user.Service
	mediaStore     *media.Store

	currentView View
	operator    *user.User

	loginView    view.LoginModel
	receiptsView view.ReceiptsModel
	entryView    view.EntryModel
	usersView    view.UsersModel
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	mediaStore, err := media.NewStore(cfg.Media.Dir)
	if err != nil {
		slog.Error("failed to open media directory", "error", err)
		os.Exit(1)
	}

	receiptSvc := receipt.NewService(receiptStore.New(db))
	userSvc := user.NewService(userStore.New(db))

	return model{
		receiptService: receiptSvc,
		userService:    userSvc,
		mediaStore:     mediaStore,
		currentView:    ViewLogin,
		loginView:      view.NewLoginModel(userSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewReceipts
				m.receiptsView = view.NewReceiptsModel(m.receiptService, m.operator.ID)

				return m, m.receiptsView.Init()
			case "2":
				m.currentView = ViewEntry
				m.entryView = view.NewEntryModel(m.receiptService, m.mediaStore, m.operator.ID)

				return m, m.entryView.Init()
			case "3":
				m.currentView = ViewUsers
				m.usersView = view.NewUsersModel(m.userService)

				return m, m.usersView.Init()
			}
		}
	case view.LoginDoneMsg:
		m.operator = msg.User
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewReceipts:
		var newModel tea.Model
		newModel, cmd = m.receiptsView.Update(msg)
		m.receiptsView = newModel.(view.ReceiptsModel)
	case ViewEntry:
		var newModel tea.Model
		newModel, cmd = m.entryView.Update(msg)
		m.entryView = newModel.(view.EntryModel)
	case ViewUsers:
		var newModel tea.Model
		newModel, cmd = m.usersView.Update(msg)
		m.usersView = newModel.(view.UsersModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Pavti Admin (%s)\n\n", m.operator.Username) +
				"1. Browse Receipts\n" +
				"2. New Receipt\n" +
				"3. Manage Users\n\n" +
				"q. Quit",
		)
	case ViewReceipts:
		return m.receiptsView.View()
	case ViewEntry:
		return m.entryView.View()
	case ViewUsers:
		return m.usersView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run program", "error", err)
		os.Exit(1)
	}
}
