package usecase

import (
	"context"
	"fmt"

	"reminders-backend/internal/reminder/domain"
	"reminders-backend/internal/reminder/repository"
)

// EligibilityChecker decides whether a user still owes today's reminder.
type EligibilityChecker struct {
	records repository.RecordRepository
}

func NewEligibilityChecker(records repository.RecordRepository) *EligibilityChecker {
	return &EligibilityChecker{records: records}
}

// IsEligible returns true iff no record matches (userID, kind, date, slot).
func (c *EligibilityChecker) IsEligible(ctx context.Context, userID string, req domain.Request, date string) (bool, error) {
	if err := req.Validate(); err != nil {
		return false, err
	}
	exists, err := c.records.Exists(ctx, userID, req, date)
	if err != nil {
		return false, fmt.Errorf("%w for user %s: %w", ErrRecordLookup, userID, err)
	}
	return !exists, nil
}
