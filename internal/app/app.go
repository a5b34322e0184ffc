package app

import (
	"context"
	"fmt"

	"reminders-backend/internal/reminder/repository"
	"reminders-backend/internal/reminder/usecase"
	userrepo "reminders-backend/internal/user/repository"
	"reminders-backend/pkg/config"
	"reminders-backend/pkg/database"
	"reminders-backend/pkg/fcm"
	"reminders-backend/pkg/googleauth"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// App holds the dependencies shared by the server and the one-shot job.
type App struct {
	Config          *config.Config
	DB              *gorm.DB
	ServiceAccount  *googleauth.ServiceAccount
	Registry        *prometheus.Registry
	ReminderUsecase usecase.ReminderUsecase
}

// New connects to the database and builds the reminder usecase.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	// Fail fast on a malformed service account before touching the database.
	sa, err := googleauth.DecodeServiceAccount(cfg.GoogleServiceAccountB64)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	minter := googleauth.NewMinter(sa, googleauth.WithTokenURL(cfg.GoogleTokenURL))

	reminderUc := usecase.NewReminderUsecase(
		userrepo.NewUserRepository(db),
		repository.NewGormRecordRepository(db),
		minter,
		NewSenderFactory(sa.ProjectID),
		log,
		usecase.Options{
			Concurrency: cfg.DispatchConcurrency,
			Location:    loc,
			Metrics:     usecase.NewMetrics(registry),
		},
	)

	return &App{
		Config:          cfg,
		DB:              db,
		ServiceAccount:  sa,
		Registry:        registry,
		ReminderUsecase: reminderUc,
	}, nil
}

// NewSenderFactory returns a factory building an FCM client for projectID
// authenticated with the credential minted for each invocation.
func NewSenderFactory(projectID string) usecase.SenderFactory {
	return func(ctx context.Context, cred *oauth2.Token) (usecase.Sender, error) {
		return fcm.NewClientWithToken(ctx, projectID, cred)
	}
}

func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
