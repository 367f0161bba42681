package models

import "time"

// VerificationToken is a single-use email verification credential.
// A non-nil UsedAt permanently invalidates the token.
type VerificationToken struct {
	BaseModel

	UserID    string     `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"-"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}
