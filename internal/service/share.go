package service

import (
	"cipherdrive/internal/repo"
	"cipherdrive/model"
	"cipherdrive/utils"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/net/context"
	"gorm.io/gorm"
)

const shareCacheTTL = 24 * time.Hour

// CreateShare mints a share link over a file the caller owns.
func CreateShare(ownerID, fileID uint64, expiresAt *time.Time, maxDownloads *int64, password string) (*model.ShareLink, error) {
	owner, err := GetUser(ownerID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(owner.Role, OpCreateShare); err != nil {
		return nil, err
	}
	file, err := GetFile(fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	if file.IsFolder {
		return nil, fmt.Errorf("cannot share a folder")
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, ErrInvalidExpiry
	}
	if maxDownloads != nil && *maxDownloads <= 0 {
		return nil, fmt.Errorf("max_downloads must be positive")
	}

	share := &model.ShareLink{
		Token:        utils.NewShareToken(),
		FileID:       fileID,
		CreatedBy:    ownerID,
		ExpiresAt:    expiresAt,
		MaxDownloads: maxDownloads,
		Status:       model.ShareActive,
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, err
		}
		share.PasswordHash = hash
	}

	if err := repo.Db.Create(share).Error; err != nil {
		return nil, err
	}

	if err := utils.CacheShare(context.Background(), share, shareCacheTTL); err != nil {
		log.Printf("cache share failed: %v", err)
	}

	actorID, actorName := auditUser(owner)
	RecordAudit(&model.AuditLog{
		UserID:       actorID,
		UserName:     actorName,
		Action:       ActionShareCreate,
		ResourceType: ResourceShare,
		ResourceID:   share.ID,
		Detail:       fmt.Sprintf("file_id=%d", fileID),
	})
	return share, nil
}

func getShareByToken(token string) (*model.ShareLink, error) {
	var link model.ShareLink
	if err := repo.Db.Where("token = ?", token).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// markExpired lazily flips an active link. The guard on status keeps
// the transition monotonic under concurrent flips. The cached snapshot
// is dropped so the public metadata stops serving a live counter.
func markExpired(link *model.ShareLink) {
	err := repo.Db.Model(&model.ShareLink{}).
		Where("id = ? AND status = ?", link.ID, model.ShareActive).
		Update("status", model.ShareExpired).Error
	if err != nil {
		log.Printf("mark share expired failed: %v", err)
		return
	}
	if err := utils.InvalidateShareCache(context.Background(), link.Token); err != nil {
		log.Printf("invalidate share cache failed: %v", err)
	}
}

// checkShareState validates status, expiry and the download ceiling
// without mutating the counter. Expiry wins over the download limit.
func checkShareState(link *model.ShareLink, now time.Time) error {
	switch link.Status {
	case model.ShareDisabled:
		return ErrShareDisabled
	case model.ShareExpired:
		return ErrShareExpired
	}
	if link.ExpiresAt != nil && now.After(*link.ExpiresAt) {
		markExpired(link)
		return ErrShareExpired
	}
	if link.MaxDownloads != nil && link.CurrentDownloads >= *link.MaxDownloads {
		markExpired(link)
		return ErrDownloadLimitReached
	}
	return nil
}

// ValidateShare checks a token for the public metadata endpoint. No
// counter is touched.
func ValidateShare(token, password string) (*model.ShareLink, *model.File, error) {
	link, ok := utils.GetShareFromCache(context.Background(), token)
	if !ok {
		var err error
		link, err = getShareByToken(token)
		if err != nil {
			return nil, nil, err
		}
	}
	if err := checkShareState(link, time.Now()); err != nil {
		return nil, nil, err
	}
	if link.PasswordProtected() && !utils.CheckPwd(password, link.PasswordHash) {
		return nil, nil, ErrWrongPassword
	}
	file, err := GetFile(link.FileID)
	if err != nil {
		return nil, nil, err
	}
	return link, file, nil
}

// RedeemShare validates a token and claims one download slot. The limit
// check and the increment are a single guarded UPDATE, so concurrent
// redemptions can never overrun max_downloads. A wrong password never
// increments the counter.
func RedeemShare(token, password string) (*model.ShareLink, *model.File, error) {
	link, err := getShareByToken(token)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	if err := checkShareState(link, now); err != nil {
		return nil, nil, err
	}
	if link.PasswordProtected() && !utils.CheckPwd(password, link.PasswordHash) {
		return nil, nil, ErrWrongPassword
	}

	res := repo.Db.Model(&model.ShareLink{}).
		Where("id = ? AND status = ? AND (max_downloads IS NULL OR current_downloads < max_downloads)",
			link.ID, model.ShareActive).
		UpdateColumn("current_downloads", gorm.Expr("current_downloads + 1"))
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race; re-read to report the terminal state.
		current, err := getShareByToken(token)
		if err != nil {
			return nil, nil, err
		}
		switch current.Status {
		case model.ShareDisabled:
			return nil, nil, ErrShareDisabled
		case model.ShareExpired:
			return nil, nil, ErrShareExpired
		default:
			markExpired(current)
			return nil, nil, ErrDownloadLimitReached
		}
	}

	link, err = getShareByToken(token)
	if err != nil {
		return nil, nil, err
	}
	file, err := GetFile(link.FileID)
	if err != nil {
		return nil, nil, err
	}

	linkID := link.ID
	RecordAudit(&model.AuditLog{
		Action:       ActionShareAccess,
		ResourceType: ResourceShare,
		ResourceID:   linkID,
		Detail:       fmt.Sprintf("downloads=%d", link.CurrentDownloads),
	})
	return link, file, nil
}

// DisableShare cancels an active link. Idempotent on already-disabled
// links; expired links stay expired.
func DisableShare(shareID, actorID uint64) error {
	actor, err := GetUser(actorID)
	if err != nil {
		return err
	}
	if err := Authorize(actor.Role, OpDisableShare); err != nil {
		return err
	}
	var link model.ShareLink
	if err := repo.Db.Where("id = ?", shareID).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if link.CreatedBy != actorID && actor.Role != model.RoleAdmin {
		return ErrNotAuthorized
	}
	if link.Status != model.ShareActive {
		return nil
	}
	if err := repo.Db.Model(&model.ShareLink{}).
		Where("id = ? AND status = ?", shareID, model.ShareActive).
		Update("status", model.ShareDisabled).Error; err != nil {
		return err
	}
	if err := utils.InvalidateShareCache(context.Background(), link.Token); err != nil {
		log.Printf("invalidate share cache failed: %v", err)
	}
	actorIDPtr, actorName := auditUser(actor)
	RecordAudit(&model.AuditLog{
		UserID:       actorIDPtr,
		UserName:     actorName,
		Action:       ActionShareDisable,
		ResourceType: ResourceShare,
		ResourceID:   shareID,
	})
	return nil
}

// ListShares returns the caller's links, newest first.
func ListShares(userID uint64) ([]model.ShareLink, error) {
	var links []model.ShareLink
	err := repo.Db.
		Where("created_by = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&links).Error
	return links, err
}

// ShareStats aggregates a user's link counts.
type ShareStats struct {
	TotalShares    int64 `json:"total_shares"`
	ActiveShares   int64 `json:"active_shares"`
	ExpiredShares  int64 `json:"expired_shares"`
	TotalDownloads int64 `json:"total_downloads"`
}

// GetShareStats returns share statistics for a user.
func GetShareStats(userID uint64) (*ShareStats, error) {
	stats := &ShareStats{}
	base := repo.Db.Model(&model.ShareLink{}).Where("created_by = ?", userID)
	if err := base.Session(&gorm.Session{}).Count(&stats.TotalShares).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", model.ShareActive).
		Count(&stats.ActiveShares).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", model.ShareExpired).
		Count(&stats.ExpiredShares).Error; err != nil {
		return nil, err
	}
	var total struct{ Total int64 }
	if err := repo.Db.Model(&model.ShareLink{}).
		Select("COALESCE(SUM(current_downloads), 0) AS total").
		Where("created_by = ?", userID).
		Scan(&total).Error; err != nil {
		return nil, err
	}
	stats.TotalDownloads = total.Total
	return stats, nil
}

// SweepExpiredShares flips every past-due active link. Lazy expiry at
// redemption time does not depend on the sweep; the sweep just keeps
// listings honest.
func SweepExpiredShares() (int64, error) {
	res := repo.Db.Model(&model.ShareLink{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?",
			model.ShareActive, time.Now()).
		Update("status", model.ShareExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		RecordAudit(&model.AuditLog{
			UserName:     "system",
			Action:       ActionShareExpire,
			ResourceType: ResourceShare,
			Detail:       fmt.Sprintf("expired=%d", res.RowsAffected),
		})
	}
	return res.RowsAffected, nil
}

// StartShareSweeper runs the housekeeping sweep until ctx is done. A
// Redis lock keeps multiple instances from sweeping at once; without
// Redis every instance sweeps, which is safe but redundant.
func StartShareSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runSweep(ctx)
		}
	}
}

func runSweep(ctx context.Context) {
	if repo.Redis != nil {
		lock := repo.NewRedisLock(repo.Redis, "sweep:shares", time.Minute)
		if err := lock.Lock(ctx); err != nil {
			return
		}
		defer func() {
			if err := lock.Unlock(ctx); err != nil {
				log.Printf("release sweep lock failed: %v", err)
			}
		}()
	}
	count, err := SweepExpiredShares()
	if err != nil {
		log.Printf("share sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("share sweep expired %d links", count)
	}
}
