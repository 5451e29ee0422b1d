package model

import "time"

type File struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	OwnerID uint64 `gorm:"column:owner_id;uniqueIndex:uk_owner_parent_name,priority:1;not null" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	ParentID *uint64 `gorm:"column:parent_id;index;uniqueIndex:uk_owner_parent_name,priority:2" json:"parent_id,omitempty"`
	Parent   *File   `gorm:"foreignKey:ParentID;references:ID" json:"-"`

	Name string `gorm:"column:name;size:255;uniqueIndex:uk_owner_parent_name,priority:3;not null" json:"name"`

	IsFolder bool `gorm:"column:is_folder;not null;default:false" json:"is_folder"`

	// SizeBytes is immutable after creation; folders stay at 0.
	SizeBytes   int64  `gorm:"column:size_bytes;not null;default:0" json:"size_bytes"`
	ContentType string `gorm:"column:content_type;size:100" json:"content_type,omitempty"`

	Bucket     string `gorm:"column:bucket;size:64" json:"-"`
	ObjectName string `gorm:"column:object_name;size:512" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}
