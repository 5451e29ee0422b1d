package dto

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type FileListRequest struct {
	ParentID  *uint64 `form:"parent_id"`
	Page      int     `form:"page"`
	PageSize  int     `form:"page_size"`
	OrderBy   string  `form:"order_by"`
	OrderDesc bool    `form:"order_desc"`
}

type CreateFolderRequest struct {
	ParentID *uint64 `json:"parent_id"`
	Name     string  `json:"name" binding:"required"`
}

type CreateShareRequest struct {
	FileID       uint64 `json:"file_id" binding:"required"`
	ExpiresIn    *int64 `json:"expires_in"` // seconds from now
	MaxDownloads *int64 `json:"max_downloads"`
	Password     string `json:"password"`
}

type SharePasswordRequest struct {
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Role       string `json:"role" binding:"required"`
	QuotaBytes *int64 `json:"quota_bytes"`
}

type UpdateQuotaRequest struct {
	QuotaBytes int64 `json:"quota_bytes"`
}
