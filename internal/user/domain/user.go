package domain

// User is a row of the usuarios table. Only the columns the dispatcher
// reads are mapped; the registry itself is owned by the app backend.
type User struct {
	ID       string  `json:"id" gorm:"column:id;primaryKey"`
	FCMToken *string `json:"-" gorm:"column:fcm_token"` // Don't expose token in JSON
}

func (User) TableName() string {
	return "usuarios"
}

// PushToken returns the registered FCM token, or "" when there is none.
func (u User) PushToken() string {
	if u.FCMToken == nil {
		return ""
	}
	return *u.FCMToken
}
