package model

import "time"

// AuditLog is append-only; rows are never updated or deleted by the
// application.
type AuditLog struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	// UserID is nil for system actions such as the housekeeping sweep.
	UserID   *uint64 `gorm:"column:user_id;index" json:"user_id,omitempty"`
	UserName string  `gorm:"column:user_name;size:50" json:"user_name,omitempty"`

	Action       string `gorm:"column:action;size:50;not null;index" json:"action"`
	ResourceType string `gorm:"column:resource_type;size:32;not null" json:"resource_type"`
	ResourceID   uint64 `gorm:"column:resource_id" json:"resource_id,omitempty"`

	RemoteIP string `gorm:"column:remote_ip;size:45" json:"remote_ip,omitempty"`
	Detail   string `gorm:"column:detail;type:text" json:"detail,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName returns the database table name.
func (AuditLog) TableName() string {
	return "audit_logs"
}
