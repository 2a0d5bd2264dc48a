package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/detroitcommons/commons/internal/analysis"
	"github.com/detroitcommons/commons/internal/category"
	categoryStore "github.com/detroitcommons/commons/internal/category/store"
	"github.com/detroitcommons/commons/internal/config"
	"github.com/detroitcommons/commons/internal/database"
	"github.com/detroitcommons/commons/internal/expense"
	expenseStore "github.com/detroitcommons/commons/internal/expense/store"
	commonsHttp "github.com/detroitcommons/commons/internal/http"
	categoryHandler "github.com/detroitcommons/commons/internal/http/category"
	expenseHandler "github.com/detroitcommons/commons/internal/http/expense"
	"github.com/detroitcommons/commons/internal/http/middleware"
	memberHandler "github.com/detroitcommons/commons/internal/http/member"
	"github.com/detroitcommons/commons/internal/member"
	memberStore "github.com/detroitcommons/commons/internal/member/store"
	"github.com/detroitcommons/commons/internal/notify"
	"github.com/detroitcommons/commons/internal/storage"
)

func main() {
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
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
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

	var (
		uploader = storage.New(cfg.Storage.BaseURL, cfg.Storage.PublicBaseURL, cfg.Storage.Token)
		analyzer = analysis.New(cfg.Analysis.BaseURL, cfg.Analysis.APIKey, cfg.Analysis.Model, cfg.Analysis.Timeout)
	)

	var (
		memberService   = member.NewService(memberStore.New(db))
		expenseService  = expense.NewService(expenseStore.New(db), memberService, uploader, analyzer, mailer)
		categoryService = category.NewService(categoryStore.New(db))
	)

	adminAuth := middleware.AdminAuth(cfg.Admin.JWTSecret)

	var (
		expenseH  = expenseHandler.NewHandler(expenseService, adminAuth)
		memberH   = memberHandler.NewHandler(memberService)
		categoryH = categoryHandler.NewHandler(categoryService)
	)

	router := commonsHttp.New(expenseH, memberH, categoryH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
