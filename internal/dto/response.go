package dto

import "time"

// LoginResponse carries the bearer token for subsequent requests.
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type QuotaResponse struct {
	QuotaBytes int64 `json:"quota_bytes"`
	UsedBytes  int64 `json:"used_bytes"`
	Unlimited  bool  `json:"unlimited"`
}

type ShareResponse struct {
	ID               uint64     `json:"id"`
	Token            string     `json:"token"`
	FileID           uint64     `json:"file_id"`
	ExpiresAt        *time.Time `json:"expires_at"`
	MaxDownloads     *int64     `json:"max_downloads"`
	CurrentDownloads int64      `json:"current_downloads"`
	PasswordRequired bool       `json:"password_required"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
}

// SharedInfoResponse is the public view of a share link. Internal ids
// and owner details stay hidden.
type SharedInfoResponse struct {
	FileName         string     `json:"file_name"`
	SizeBytes        int64      `json:"size_bytes"`
	ContentType      string     `json:"content_type"`
	ExpiresAt        *time.Time `json:"expires_at"`
	MaxDownloads     *int64     `json:"max_downloads"`
	CurrentDownloads int64      `json:"current_downloads"`
	PasswordRequired bool       `json:"password_required"`
}

type FileListResponse struct {
	Files []FileItem `json:"files"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
}

type FileItem struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	ParentID    *uint64   `json:"parent_id"`
	IsFolder    bool      `json:"is_folder"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
