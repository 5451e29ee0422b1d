package service

import (
	"cipherdrive/model"
	"fmt"

	"gorm.io/gorm"
)

// ReserveQuota adds delta to the owner's used_bytes, failing with
// ErrQuotaExceeded when the sum would cross the ceiling. The check and
// the add are one guarded UPDATE, so concurrent uploads cannot both
// claim the last bytes. Callers run it inside the transaction that
// persists the file row; quota and file changes commit or roll back
// together.
func ReserveQuota(tx *gorm.DB, userID uint64, delta int64) error {
	if delta < 0 {
		return fmt.Errorf("negative reserve of %d bytes", delta)
	}
	if delta == 0 {
		return nil
	}
	res := tx.Model(&model.User{}).
		Where("id = ? AND (quota_bytes < 0 OR used_bytes + ? <= quota_bytes)", userID, delta).
		UpdateColumn("used_bytes", gorm.Expr("used_bytes + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrQuotaExceeded
	}
	return nil
}

// ReleaseQuota subtracts delta from used_bytes, clamping at zero so a
// double release cannot drive the counter negative.
func ReleaseQuota(tx *gorm.DB, userID uint64, delta int64) error {
	if delta <= 0 {
		return nil
	}
	return tx.Model(&model.User{}).
		Where("id = ?", userID).
		UpdateColumn("used_bytes",
			gorm.Expr("CASE WHEN used_bytes >= ? THEN used_bytes - ? ELSE 0 END", delta, delta)).
		Error
}
