package mockapi

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/venuebook/internal/logging"
	"github.com/dmitrijs2005/venuebook/internal/mockapi/config"
	"github.com/dmitrijs2005/venuebook/internal/mockapi/users"
	"golang.org/x/crypto/bcrypt"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *Server
}

func NewApp(cfg *config.Config) *App {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)})
	logger := logging.NewSlogLogger(slog.New(handler))

	us := users.NewService(bcrypt.DefaultCost)

	return &App{
		config: cfg,
		logger: logger,
		server: NewServer(cfg, logger, us),
	}
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, or until ctx ends.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
		return err
	}
	app.logger.Info(ctx, "Stopped")
	return nil
}
