package model

import "time"

type PasswordResetToken struct {
	ID uint64 `gorm:"primaryKey"`

	UserID uint64 `gorm:"column:user_id;not null;index"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`

	Token string `gorm:"column:token;size:64;uniqueIndex;not null"`

	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`

	CreatedAt time.Time
}

// TableName returns the database table name.
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
