package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	api "reminders-backend/cmd/api"
	"reminders-backend/internal/app"
	"reminders-backend/internal/reminder/scheduler"
	"reminders-backend/internal/reminder/trigger"
	"reminders-backend/pkg/config"
	"reminders-backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Initialize cron trigger (optional)
	jobs, err := scheduler.ParseSchedule(cfg.ReminderSchedule)
	if err != nil {
		return err
	}
	reminderScheduler := scheduler.NewReminderScheduler(a.ReminderUsecase, jobs, loc, log.Named("scheduler"))
	if err := reminderScheduler.Start(); err != nil {
		return err
	}
	defer reminderScheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)

	// Initialize Pub/Sub trigger
	// Only start if a subscription is configured
	if cfg.GooglePubSubSub != "" {
		triggerService, err := trigger.NewService(
			ctx,
			a.ServiceAccount.ProjectID,
			cfg.GooglePubSubSub,
			a.ReminderUsecase,
			log.Named("trigger"),
			option.WithCredentialsJSON(a.ServiceAccount.JSON()),
		)
		if err != nil {
			return err
		}
		defer triggerService.Close()

		g.Go(func() error {
			return triggerService.Start(ctx)
		})
	}

	handler := api.NewHandler(a.ReminderUsecase, a.Registry, log.Named("http"))
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("server starting", zap.String("addr", addr))
		return handler.Start(ctx, addr)
	})

	return g.Wait()
}
