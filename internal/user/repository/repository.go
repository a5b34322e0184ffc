package repository

import (
	"context"

	"reminders-backend/internal/user/domain"
)

// UserRepository defines read access to the user registry
type UserRepository interface {
	// FindWithPushToken returns every user with a non-empty FCM token
	FindWithPushToken(ctx context.Context) ([]domain.User, error)
}
