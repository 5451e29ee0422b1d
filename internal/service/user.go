package service

import (
	"cipherdrive/config"
	"cipherdrive/internal/repo"
	"cipherdrive/model"
	"cipherdrive/utils"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

// defaultQuotaFor returns the provisioning quota for a role. Admins are
// never metered; cipher quota is a deployment decision.
func defaultQuotaFor(role model.Role) int64 {
	switch role {
	case model.RoleAdmin:
		return -1
	case model.RoleCipher:
		return config.AppConfig.CipherQuotaBytes
	default:
		return config.AppConfig.DefaultQuotaBytes
	}
}

// ProvisionUser creates a user with a hashed password. A nil quota
// picks the role default.
func ProvisionUser(username, email, password string, role model.Role, quota *int64) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password required")
	}
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	quotaBytes := defaultQuotaFor(role)
	if quota != nil {
		quotaBytes = *quota
	}
	user := &model.User{
		UserName:   username,
		Email:      email,
		Password:   hash,
		Role:       role,
		IsActive:   true,
		QuotaBytes: quotaBytes,
	}
	if err := repo.Db.Create(user).Error; err != nil {
		return nil, err
	}
	actorID, actorName := auditUser(user)
	RecordAudit(&model.AuditLog{
		UserID:       actorID,
		UserName:     actorName,
		Action:       ActionUserCreate,
		ResourceType: ResourceUser,
		ResourceID:   user.ID,
	})
	return user, nil
}

// GetUser returns a user by ID.
func GetUser(userID uint64) (*model.User, error) {
	var user model.User
	if err := repo.Db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate verifies credentials and returns the user.
func Authenticate(username, password string) (*model.User, error) {
	var user model.User
	if err := repo.Db.Where("user_name = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrNotAuthorized
	}
	if !utils.CheckPwd(password, user.Password) {
		return nil, ErrWrongPassword
	}
	return &user, nil
}

// ListUsers returns all users for the admin view.
func ListUsers() ([]model.User, error) {
	var users []model.User
	err := repo.Db.Order("id ASC").Find(&users).Error
	return users, err
}

// SetUserQuota updates a user's ceiling. A ceiling below current usage
// is rejected: the used<=quota invariant must hold after every
// committed mutation.
func SetUserQuota(actor *model.User, userID uint64, quotaBytes int64) error {
	if err := Authorize(actor.Role, OpManageUsers); err != nil {
		return err
	}
	user, err := GetUser(userID)
	if err != nil {
		return err
	}
	if quotaBytes >= 0 && quotaBytes < user.UsedBytes {
		return fmt.Errorf("quota %d below current usage %d", quotaBytes, user.UsedBytes)
	}
	if err := repo.Db.Model(&model.User{}).
		Where("id = ?", userID).
		Update("quota_bytes", quotaBytes).Error; err != nil {
		return err
	}
	actorID, actorName := auditUser(actor)
	RecordAudit(&model.AuditLog{
		UserID:       actorID,
		UserName:     actorName,
		Action:       ActionQuotaUpdate,
		ResourceType: ResourceUser,
		ResourceID:   userID,
		Detail:       fmt.Sprintf("quota_bytes=%d", quotaBytes),
	})
	return nil
}

// EnsureAdminUser bootstraps the configured admin account when no
// admin exists yet. A blank ADMIN_PASSWORD skips the bootstrap.
func EnsureAdminUser() {
	if config.AppConfig.AdminPassword == "" {
		return
	}
	var count int64
	if err := repo.Db.Model(&model.User{}).
		Where("role = ?", model.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Printf("admin bootstrap check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}
	_, err := ProvisionUser(
		config.AppConfig.AdminUserName,
		config.AppConfig.AdminEmail,
		config.AppConfig.AdminPassword,
		model.RoleAdmin,
		nil,
	)
	if err != nil {
		log.Printf("admin bootstrap failed: %v", err)
		return
	}
	log.Println("admin user provisioned:", config.AppConfig.AdminUserName)
}

// CreatePasswordReset mints a single-use reset token for the account
// behind the email. The caller is responsible for mailing the link.
func CreatePasswordReset(email string) (*model.PasswordResetToken, error) {
	var user model.User
	if err := repo.Db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	reset := &model.PasswordResetToken{
		UserID:    user.ID,
		Token:     utils.NewResetToken(),
		ExpiresAt: time.Now().Add(config.AppConfig.ResetTokenTTL),
	}
	if err := repo.Db.Create(reset).Error; err != nil {
		return nil, err
	}
	return reset, nil
}

// ResetPassword consumes a reset token and stores the new password.
func ResetPassword(token, newPassword string) error {
	if newPassword == "" {
		return errors.New("password required")
	}
	var reset model.PasswordResetToken
	if err := repo.Db.Where("token = ?", token).First(&reset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return ErrNotFound
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	now := time.Now()
	err = repo.Db.Transaction(func(tx *gorm.DB) error {
		// Claim the token first; a second concurrent confirm loses here.
		res := tx.Model(&model.PasswordResetToken{}).
			Where("id = ? AND used_at IS NULL", reset.ID).
			Update("used_at", &now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&model.User{}).
			Where("id = ?", reset.UserID).
			Update("pass_word", hash).Error
	})
	if err != nil {
		return err
	}
	userID := reset.UserID
	RecordAudit(&model.AuditLog{
		UserID:       &userID,
		Action:       ActionPasswordReset,
		ResourceType: ResourceUser,
		ResourceID:   reset.UserID,
	})
	return nil
}
