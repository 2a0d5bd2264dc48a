package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/detroitcommons/commons/cmd/tui/internal/view"
	"github.com/detroitcommons/commons/internal/analysis"
	"github.com/detroitcommons/commons/internal/category"
	categoryStore "github.com/detroitcommons/commons/internal/category/store"
	"github.com/detroitcommons/commons/internal/config"
	"github.com/detroitcommons/commons/internal/database"
	"github.com/detroitcommons/commons/internal/expense"
	expenseStore "github.com/detroitcommons/commons/internal/expense/store"
	"github.com/detroitcommons/commons/internal/member"
	memberStore "github.com/detroitcommons/commons/internal/member/store"
	"github.com/detroitcommons/commons/internal/notify"
	"github.com/detroitcommons/commons/internal/storage"
)

type model struct {
	expenseService  *expense.Service
	categoryService *category.Service
	reviewer        string

	currentView View

	reviewView view.ReviewModel
	browseView view.BrowseModel
}

type View int

const (
	ViewMenu   View = 0
	ViewReview View = 1
	ViewBrowse View = 2
)

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

	mailer, err := notify.New(
		cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password,
		cfg.Mail.From, cfg.Mail.AdminAddr,
	)
	if err != nil {
		slog.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}

	uploader := storage.New(cfg.Storage.BaseURL, cfg.Storage.PublicBaseURL, cfg.Storage.Token)
	analyzer := analysis.New(cfg.Analysis.BaseURL, cfg.Analysis.APIKey, cfg.Analysis.Model, cfg.Analysis.Timeout)

	memberSvc := member.NewService(memberStore.New(db))
	expSvc := expense.NewService(expenseStore.New(db), memberSvc, uploader, analyzer, mailer)
	catSvc := category.NewService(categoryStore.New(db))

	reviewer := cfg.Mail.AdminAddr

	return model{
		expenseService:  expSvc,
		categoryService: catSvc,
		reviewer:        reviewer,
		currentView:     ViewMenu,
		reviewView:      view.NewReviewModel(expSvc, catSvc, reviewer),
		browseView:      view.NewBrowseModel(expSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.expenseService, m.categoryService, m.reviewer)

				return m, m.reviewView.Init()
			case "2":
				m.currentView = ViewBrowse
				m.browseView = view.NewBrowseModel(m.expenseService)

				return m, m.browseView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewBrowse:
		var newModel tea.Model
		newModel, cmd = m.browseView.Update(msg)
		m.browseView = newModel.(view.BrowseModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Detroit Commons Treasury\n\n" +
				"1. Review Pending Expenses\n" +
				"2. Browse Expenses & Record Payouts\n\n" +
				"q. Quit",
		)
	case ViewReview:
		return m.reviewView.View()
	case ViewBrowse:
		return m.browseView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
