package repository

import (
	"context"

	"reminders-backend/internal/reminder/domain"
)

// RecordRepository defines read access to the daily action records
type RecordRepository interface {
	// Exists reports whether userID already has a record for req on date.
	// Mood lookups are scoped to req.Slot. A missing record is not an error.
	Exists(ctx context.Context, userID string, req domain.Request, date string) (bool, error)
}
