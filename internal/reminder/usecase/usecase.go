package usecase

import (
	"context"
	"errors"

	"reminders-backend/internal/reminder/domain"
	"reminders-backend/pkg/fcm"

	"golang.org/x/oauth2"
)

var (
	ErrUserFetch    = errors.New("fetch candidate users")
	ErrRecordLookup = errors.New("daily record lookup")
	ErrSenderSetup  = errors.New("push sender setup")
)

// ReminderUsecase defines the interface for reminder dispatch
type ReminderUsecase interface {
	// Run sends req's reminder to every user with a push token who has not
	// logged the action today. Individual send failures are reported in the
	// summary, not as an error.
	Run(ctx context.Context, req domain.Request) (*domain.Summary, error)
}

// CredentialMinter mints the bearer token shared by one invocation
type CredentialMinter interface {
	Mint(ctx context.Context) (*oauth2.Token, error)
}

// Sender delivers a single push notification
type Sender interface {
	SendToDevice(ctx context.Context, token string, notification fcm.NotificationData) (string, error)
}

// SenderFactory builds a Sender authenticated with an invocation's credential
type SenderFactory func(ctx context.Context, cred *oauth2.Token) (Sender, error)
