package service

import (
	"cipherdrive/internal/mq"
	"cipherdrive/internal/repo"
	"cipherdrive/model"
	"encoding/json"
	"log"

	"golang.org/x/net/context"
)

// Audit actions.
const (
	ActionLogin         = "login_success"
	ActionPasswordReset = "password_reset"
	ActionFileUpload    = "file_upload"
	ActionFileDownload  = "file_download"
	ActionFileDelete    = "file_delete"
	ActionFolderCreate  = "folder_create"
	ActionShareCreate   = "share_create"
	ActionShareAccess   = "share_access"
	ActionShareDisable  = "share_disable"
	ActionShareExpire   = "share_expire"
	ActionUserCreate    = "user_create"
	ActionQuotaUpdate   = "quota_update"

	ResourceFile  = "file"
	ResourceShare = "share"
	ResourceUser  = "user"
)

// RecordAudit appends an audit row and fans the event out to the audit
// exchange when a publisher is reachable. Audit failures never abort
// the operation being recorded.
func RecordAudit(entry *model.AuditLog) {
	if err := repo.Db.Create(entry).Error; err != nil {
		log.Printf("audit insert failed: %v", err)
		return
	}
	publishAudit(entry)
}

func publishAudit(entry *model.AuditLog) {
	client, err := mq.GetPublisher()
	if err != nil {
		return
	}
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := client.PublishAudit(context.Background(), body); err != nil {
		log.Printf("audit publish failed: %v", err)
	}
}

// auditUser builds the actor fields for an audit entry.
func auditUser(user *model.User) (*uint64, string) {
	if user == nil {
		return nil, "system"
	}
	id := user.ID
	return &id, user.UserName
}

// ListAuditLogs returns recent audit entries, newest first.
func ListAuditLogs(limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var entries []model.AuditLog
	err := repo.Db.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
