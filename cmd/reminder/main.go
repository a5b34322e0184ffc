package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reminders-backend/internal/app"
	"reminders-backend/internal/reminder/domain"
	"reminders-backend/pkg/config"
	"reminders-backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var kind, slot string

	cmd := &cobra.Command{
		Use:           "reminder",
		Short:         "Send one round of daily reminders and exit",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := domain.ParseRequest(kind, slot)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			return run(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(domain.DefaultKind), "reminder kind (consumo|mood)")
	cmd.Flags().StringVar(&slot, "slot", string(domain.DefaultSlot), "mood slot (morning|afternoon|evening)")
	return cmd
}

func run(ctx context.Context, req domain.Request) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize", zap.Error(err))
		return err
	}
	defer func() { _ = a.Close() }()

	summary, err := a.ReminderUsecase.Run(ctx, req)
	if err != nil {
		log.Error("reminder run failed", zap.String("request", req.String()), zap.Error(err))
		return err
	}

	log.Info("reminder run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("sent", summary.Sent),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return nil
}
