package models

import "time"

// Session is a cookie-backed login. The opaque token is the sole credential;
// an expired row behaves exactly like a missing one.
type Session struct {
	BaseModel

	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}
