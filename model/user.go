package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleCipher Role = "cipher"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleUser, RoleCipher:
		return true
	}
	return false
}

type User struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	UserName string `gorm:"column:user_name;type:varchar(50);not null;unique" json:"user_name"`

	Password string `gorm:"column:pass_word;type:varchar(255);not null" json:"-"`

	Email string `gorm:"column:email;type:varchar(255);not null;unique" json:"email"`

	Role Role `gorm:"column:role;type:varchar(16);not null;default:'user'" json:"role"`

	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	// QuotaBytes < 0 disables the ceiling for this user.
	QuotaBytes int64 `gorm:"column:quota_bytes;not null;default:0" json:"quota_bytes"`
	UsedBytes  int64 `gorm:"column:used_bytes;not null;default:0" json:"used_bytes"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// QuotaExempt reports whether the quota ceiling is enforced for the user.
func (u *User) QuotaExempt() bool {
	return u.QuotaBytes < 0
}
