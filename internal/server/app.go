// Package server wires the Secret Santa components together and runs the
// HTTP and gRPC transports until the process is signalled to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/secretsanta/internal/clock"
	"github.com/dmitrijs2005/secretsanta/internal/logging"
	"github.com/dmitrijs2005/secretsanta/internal/server/archive"
	"github.com/dmitrijs2005/secretsanta/internal/server/config"
	"github.com/dmitrijs2005/secretsanta/internal/server/legacy"
	"github.com/dmitrijs2005/secretsanta/internal/server/notify"
	"github.com/dmitrijs2005/secretsanta/internal/server/participants"
	"github.com/dmitrijs2005/secretsanta/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secretsanta/internal/server/services"

	gs "github.com/dmitrijs2005/secretsanta/internal/server/grpc"
	hs "github.com/dmitrijs2005/secretsanta/internal/server/http"
)

// drainMargin is waited on top of the notification timeout for running
// draws to be finalized after the transports have stopped.
const drainMargin = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	clock       clock.Clock
	repos       repomanager.RepositoryManager
	userService *services.UserService
	listService *services.ListService
	drawService *services.DrawService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewDefault(c.Debug)
	clk := clock.NewSystem()

	repos, err := openRepositories(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, clock: clk, repos: repos}

	if c.ImportFile != "" {
		if err := app.importLegacy(ctx); err != nil {
			_ = repos.Close()
			return nil, err
		}
	}

	var sender notify.Sender
	if c.SendGridAPIKey != "" {
		sender = notify.NewSendGridSender(c.SendGridAPIKey, c.MailFrom, c.MailFromName)
	} else {
		logger.Warn(ctx, "no SendGrid API key configured, notifications are only logged")
		sender = notify.NewLogSender(logger)
	}
	dispatcher := notify.NewBatchDispatcher(sender, c.NotificationTimeout, c.NotificationConcurrency, logger)

	var arc archive.Archive = archive.Nop{}
	if c.S3Bucket != "" {
		s3a, err := archive.NewS3Archive(ctx, archive.S3Options{
			Region:       c.S3Region,
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		arc = s3a
	}

	registry := participants.NewRegistry(c.RejectDuplicateEmails)
	locks := services.NewListLocks()
	templates := notify.Templates{SuggestedValue: c.SuggestedGiftValue}

	app.userService = services.NewUserService(repos, c, clk, logger)
	app.listService = services.NewListService(repos, app.userService, registry, locks, clk, logger)
	app.drawService = services.NewDrawService(repos, app.userService, registry, dispatcher, templates, locks, clk, logger,
		services.WithArchive(arc))

	return app, nil
}

// openRepositories uses PostgreSQL when a DSN is configured and the
// in-memory store otherwise.
func openRepositories(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, using in-memory storage")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	pm, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := pm.RunMigrations(ctx); err != nil {
		_ = pm.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return pm, nil
}

func (app *App) importLegacy(ctx context.Context) error {
	f, err := os.Open(app.config.ImportFile)
	if err != nil {
		return fmt.Errorf("legacy import: %w", err)
	}
	defer f.Close()

	res, err := legacy.Import(ctx, f, app.repos.Lists(), app.clock.Now())
	if err != nil {
		return fmt.Errorf("legacy import: %w", err)
	}

	app.logger.Info(ctx, "legacy data imported", "file", app.config.ImportFile,
		"imported", res.Imported, "skipped", len(res.Skipped))
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddress, app.logger, app.userService, app.listService,
		app.drawService, app.clock, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := hs.NewHandler(app.userService, app.listService, app.drawService, app.logger)
	s := hs.NewServer(app.config.HTTPAddress, h, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves both transports until ctx is done, a signal arrives or one of
// the servers fails, then releases the storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.waitForDraws(ctx)

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}

// waitForDraws keeps storage open until draws that outlived their request
// have been finalized. HTTP shutdown gives up on slow handlers, while their
// draws keep dispatching on a detached context.
func (app *App) waitForDraws(ctx context.Context) {
	timeout := app.config.NotificationTimeout
	if timeout <= 0 {
		timeout = notify.DefaultTimeout
	}
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout+drainMargin)
	defer cancel()

	if err := app.drawService.Wait(drainCtx); err != nil {
		app.logger.Error(ctx, "draws still running at shutdown", "error", err)
	}
}
