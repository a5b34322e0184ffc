package repository

import (
	"context"
	"errors"

	"reminders-backend/internal/reminder/domain"

	"gorm.io/gorm"
)

// gormRecordRepository implements RecordRepository using GORM
type gormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GORM-based RecordRepository
func NewGormRecordRepository(db *gorm.DB) RecordRepository {
	return &gormRecordRepository{db: db}
}

func (r *gormRecordRepository) Exists(ctx context.Context, userID string, req domain.Request, date string) (bool, error) {
	db := r.db.WithContext(ctx).Select("id")

	switch req.Kind {
	case domain.KindConsumption:
		var rec domain.ConsumptionRecord
		return found(db.Where("usuario_id = ? AND fecha = ?", userID, date).Take(&rec).Error)
	case domain.KindMood:
		if !req.Slot.Valid() {
			return false, domain.ErrInvalidSlot
		}
		var rec domain.MoodRecord
		return found(db.Where("usuario_id = ? AND fecha = ? AND slot = ?", userID, date, req.Slot).Take(&rec).Error)
	default:
		return false, domain.ErrInvalidKind
	}
}

func found(err error) (bool, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
