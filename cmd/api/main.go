package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/nileshdj/pavti/internal/config"
	"github.com/nileshdj/pavti/internal/database"
	pavtiHttp "github.com/nileshdj/pavti/internal/http"
	authHandler "github.com/nileshdj/pavti/internal/http/auth"
	receiptHandler "github.com/nileshdj/pavti/internal/http/receipt"
	"github.com/nileshdj/pavti/internal/media"
	"github.com/nileshdj/pavti/internal/receipt"
	receiptStore "github.com/nileshdj/pavti/internal/receipt/store"
	"github.com/nileshdj/pavti/internal/user"
	userStore "github.com/nileshdj/pavti/internal/user/store"
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

	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	mediaStore, err := media.NewStore(cfg.Media.Dir)
	if err != nil {
		slog.Error("failed to prepare media directory", "error", err)
		os.Exit(1)
	}

	var (
		receiptService = receipt.NewService(receiptStore.New(db))
		userService    = user.NewService(userStore.New(db))
	)

	var (
		receiptsH = receiptHandler.NewHandler(receiptService, mediaStore)
		loginH    = authHandler.NewHandler(userService)
	)

	router := pavtiHttp.New(receiptsH, loginH, userService, pavtiHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenRead:       cfg.Auth.OpenRead,
		MediaDir:       cfg.Media.Dir,
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "addr", addr, "open_read", cfg.Auth.OpenRead)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
