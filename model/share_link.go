package model

import "time"

// ShareStatus transitions are monotonic: an active link may flip to
// expired or disabled, never back.
type ShareStatus string

const (
	ShareActive   ShareStatus = "active"
	ShareExpired  ShareStatus = "expired"
	ShareDisabled ShareStatus = "disabled"
)

type ShareLink struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Token string `gorm:"column:token;size:64;uniqueIndex;not null" json:"token"`

	FileID uint64 `gorm:"column:file_id;not null;index" json:"file_id"`
	File   File   `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedBy uint64 `gorm:"column:created_by;not null;index" json:"created_by"`
	Creator   User   `gorm:"foreignKey:CreatedBy;references:ID" json:"-"`

	ExpiresAt        *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	MaxDownloads     *int64     `gorm:"column:max_downloads" json:"max_downloads,omitempty"`
	CurrentDownloads int64      `gorm:"column:current_downloads;not null;default:0" json:"current_downloads"`

	PasswordHash string `gorm:"column:password_hash;size:255" json:"-"`

	Status ShareStatus `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (ShareLink) TableName() string {
	return "share_links"
}

// PasswordProtected reports whether a redeem needs a password.
func (s *ShareLink) PasswordProtected() bool {
	return s.PasswordHash != ""
}
