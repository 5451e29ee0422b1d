package service

import "cipherdrive/model"

// Operation names an action a role may or may not perform.
type Operation string

const (
	OpListFiles     Operation = "file:list"
	OpUploadFile    Operation = "file:upload"
	OpDownloadFile  Operation = "file:download"
	OpDeleteFile    Operation = "file:delete"
	OpCreateFolder  Operation = "file:mkdir"
	OpCreateShare   Operation = "share:create"
	OpDisableShare  Operation = "share:disable"
	OpListShares    Operation = "share:list"
	OpManageUsers   Operation = "admin:users"
	OpViewAuditLogs Operation = "admin:audit"
)

// capabilities is the closed role-to-operations table. Every role lists
// every operation explicitly so authorization stays exhaustive over the
// role set; cipher users get download-only access.
var capabilities = map[model.Role]map[Operation]bool{
	model.RoleAdmin: {
		OpListFiles:     true,
		OpUploadFile:    true,
		OpDownloadFile:  true,
		OpDeleteFile:    true,
		OpCreateFolder:  true,
		OpCreateShare:   true,
		OpDisableShare:  true,
		OpListShares:    true,
		OpManageUsers:   true,
		OpViewAuditLogs: true,
	},
	model.RoleUser: {
		OpListFiles:     true,
		OpUploadFile:    true,
		OpDownloadFile:  true,
		OpDeleteFile:    true,
		OpCreateFolder:  true,
		OpCreateShare:   true,
		OpDisableShare:  true,
		OpListShares:    true,
		OpManageUsers:   false,
		OpViewAuditLogs: false,
	},
	model.RoleCipher: {
		OpListFiles:     true,
		OpUploadFile:    false,
		OpDownloadFile:  true,
		OpDeleteFile:    false,
		OpCreateFolder:  false,
		OpCreateShare:   false,
		OpDisableShare:  false,
		OpListShares:    false,
		OpManageUsers:   false,
		OpViewAuditLogs: false,
	},
}

// Can reports whether the role may perform the operation. Unknown roles
// may do nothing.
func Can(role model.Role, op Operation) bool {
	return capabilities[role][op]
}

// Authorize returns ErrNotAuthorized when the role may not perform the
// operation.
func Authorize(role model.Role, op Operation) error {
	if !Can(role, op) {
		return ErrNotAuthorized
	}
	return nil
}
