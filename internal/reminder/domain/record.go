package domain

// ConsumptionRecord marks a day the user logged as consumption-free.
type ConsumptionRecord struct {
	ID     string `gorm:"column:id;primaryKey"`
	UserID string `gorm:"column:usuario_id;index"`
	Date   string `gorm:"column:fecha"` // YYYY-MM-DD
}

func (ConsumptionRecord) TableName() string {
	return "registro_consumo"
}

// MoodRecord marks a mood entry for one slot of a day.
type MoodRecord struct {
	ID     string `gorm:"column:id;primaryKey"`
	UserID string `gorm:"column:usuario_id;index"`
	Date   string `gorm:"column:fecha"` // YYYY-MM-DD
	Slot   Slot   `gorm:"column:slot"`
}

func (MoodRecord) TableName() string {
	return "registro_mood"
}
