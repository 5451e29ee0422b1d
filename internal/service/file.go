package service

import (
	"cipherdrive/config"
	"cipherdrive/internal/dto"
	"cipherdrive/internal/repo"
	"cipherdrive/internal/storage"
	"cipherdrive/model"
	"cipherdrive/utils"
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/net/context"
	"gorm.io/gorm"
)

// CheckFileOwner checks file ownership.
func CheckFileOwner(userID, fileID uint64) bool {
	var count int64
	err := repo.Db.
		Model(&model.File{}).
		Where("id = ? AND owner_id = ?", fileID, userID).
		Count(&count).Error
	if err != nil {
		return false
	}
	return count > 0
}

// GetFile returns a file by ID.
func GetFile(fileID uint64) (*model.File, error) {
	var file model.File
	if err := repo.Db.Where("id = ?", fileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// validateParent checks that parentID names a folder owned by ownerID
// and that nesting stays within the depth limit.
func validateParent(ownerID uint64, parentID *uint64) error {
	if parentID == nil || *parentID == 0 {
		return nil
	}
	var parent model.File
	if err := repo.Db.
		Where("id = ? AND owner_id = ? AND is_folder = ?", *parentID, ownerID, true).
		First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("parent folder not found")
		}
		return err
	}
	depth, err := folderDepth(&parent)
	if err != nil {
		return err
	}
	if depth+1 >= config.AppConfig.MaxTreeDepth {
		return fmt.Errorf("folder tree too deep")
	}
	return nil
}

// folderDepth walks ancestors iteratively. The walk doubles as cycle
// detection: a cycle would run past the depth limit and error out.
func folderDepth(folder *model.File) (int, error) {
	depth := 0
	current := folder.ParentID
	for current != nil {
		depth++
		if depth > config.AppConfig.MaxTreeDepth {
			return 0, fmt.Errorf("folder tree too deep")
		}
		var parent model.File
		if err := repo.Db.Where("id = ?", *current).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return depth, nil
			}
			return 0, err
		}
		current = parent.ParentID
	}
	return depth, nil
}

// ensureNameFree rejects a duplicate name under the same parent.
func ensureNameFree(tx *gorm.DB, ownerID uint64, parentID *uint64, name string) error {
	var count int64
	query := tx.Model(&model.File{}).
		Where("owner_id = ? AND name = ?", ownerID, name)
	if parentID == nil || *parentID == 0 {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("file with same name already exists")
	}
	return nil
}

func buildObjectName(ownerID uint64) string {
	return fmt.Sprintf("files/%d/%s", ownerID, utils.NewObjectName())
}

// UploadFile stores the received bytes and records the file row. The
// bytes go to object storage first, so the quota transaction holds no
// lock during I/O; quota is reserved only once the stream is complete.
// On quota failure the stored object is removed and nothing is
// retained.
func UploadFile(ctx context.Context, ownerID uint64, parentID *uint64, name string, reader io.Reader, size int64, contentType string) (*model.File, error) {
	owner, err := GetUser(ownerID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(owner.Role, OpUploadFile); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("filename required")
	}
	if size < 0 {
		return nil, fmt.Errorf("invalid size %d", size)
	}
	if config.AppConfig.MaxUploadBytes > 0 && size > config.AppConfig.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds upload limit")
	}
	if err := validateParent(ownerID, parentID); err != nil {
		return nil, err
	}
	if err := ensureNameFree(repo.Db, ownerID, parentID, name); err != nil {
		return nil, err
	}

	if storage.Default == nil {
		return nil, fmt.Errorf("storage not initialized")
	}
	bucket := config.AppConfig.BucketName
	objectName := buildObjectName(ownerID)
	if err := storage.Default.PutObject(ctx, bucket, objectName, reader, size, storage.PutOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, err
	}

	file := &model.File{
		OwnerID:     ownerID,
		ParentID:    normalizeParentID(parentID),
		Name:        name,
		IsFolder:    false,
		SizeBytes:   size,
		ContentType: contentType,
		Bucket:      bucket,
		ObjectName:  objectName,
	}
	err = repo.Db.Transaction(func(tx *gorm.DB) error {
		if err := ReserveQuota(tx, ownerID, size); err != nil {
			return err
		}
		return tx.Create(file).Error
	})
	if err != nil {
		removeObject(ctx, bucket, objectName)
		return nil, err
	}

	actorID, actorName := auditUser(owner)
	RecordAudit(&model.AuditLog{
		UserID:       actorID,
		UserName:     actorName,
		Action:       ActionFileUpload,
		ResourceType: ResourceFile,
		ResourceID:   file.ID,
		Detail:       fmt.Sprintf("name=%s size=%d", name, size),
	})
	return file, nil
}

func normalizeParentID(parentID *uint64) *uint64 {
	if parentID == nil || *parentID == 0 {
		return nil
	}
	return parentID
}

// CreateFolder creates a folder entry. Folders never count toward the
// owner's quota.
func CreateFolder(ownerID uint64, parentID *uint64, name string) (*model.File, error) {
	owner, err := GetUser(ownerID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(owner.Role, OpCreateFolder); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("folder name required")
	}
	if err := validateParent(ownerID, parentID); err != nil {
		return nil, err
	}
	if err := ensureNameFree(repo.Db, ownerID, parentID, name); err != nil {
		return nil, err
	}
	folder := &model.File{
		OwnerID:  ownerID,
		ParentID: normalizeParentID(parentID),
		Name:     name,
		IsFolder: true,
	}
	if err := repo.Db.Create(folder).Error; err != nil {
		return nil, err
	}
	actorID, actorName := auditUser(owner)
	RecordAudit(&model.AuditLog{
		UserID:       actorID,
		UserName:     actorName,
		Action:       ActionFolderCreate,
		ResourceType: ResourceFile,
		ResourceID:   folder.ID,
		Detail:       fmt.Sprintf("name=%s", name),
	})
	return folder, nil
}

// GetFileList returns one folder level of a user's tree with paging.
func GetFileList(userID uint64, req *dto.FileListRequest) ([]model.File, int64, error) {
	var files []model.File
	var total int64

	query := repo.Db.Model(&model.File{}).
		Where("owner_id = ?", userID)
	if req.ParentID == nil || *req.ParentID == 0 {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *req.ParentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "is_folder DESC"
	if orderBy := sanitizeOrderBy(req.OrderBy); orderBy != "" {
		if req.OrderDesc {
			order += ", " + orderBy + " DESC"
		} else {
			order += ", " + orderBy + " ASC"
		}
	} else {
		order += ", created_at DESC"
	}

	offset := (req.Page - 1) * req.PageSize
	if err := query.Order(order).Offset(offset).Limit(req.PageSize).Find(&files).Error; err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// OpenFile opens the stored bytes of a non-folder file for streaming.
func OpenFile(ctx context.Context, file *model.File) (io.ReadCloser, storage.ObjectInfo, error) {
	if file.IsFolder {
		return nil, storage.ObjectInfo{}, fmt.Errorf("cannot download a folder")
	}
	if storage.Default == nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("storage not initialized")
	}
	return storage.Default.GetObject(ctx, file.Bucket, file.ObjectName)
}

// DeleteFile removes a file, or a folder together with all its
// descendants, and returns the freed bytes to the owner's quota. Row
// deletion and the quota release commit in one transaction so a partial
// delete is never observable; object bytes are removed afterwards.
func DeleteFile(fileID, actorID uint64) error {
	actor, err := GetUser(actorID)
	if err != nil {
		return err
	}
	if err := Authorize(actor.Role, OpDeleteFile); err != nil {
		return err
	}
	file, err := GetFile(fileID)
	if err != nil {
		return err
	}
	if file.OwnerID != actorID && actor.Role != model.RoleAdmin {
		return ErrNotAuthorized
	}

	type storedObject struct {
		bucket string
		object string
	}
	var objects []storedObject

	err = repo.Db.Transaction(func(tx *gorm.DB) error {
		ids := []uint64{file.ID}
		var freed int64
		if !file.IsFolder {
			freed = file.SizeBytes
			objects = append(objects, storedObject{file.Bucket, file.ObjectName})
		}

		// Iterative level-by-level walk, bounded by the depth limit.
		frontier := []uint64{file.ID}
		for depth := 0; len(frontier) > 0; depth++ {
			if depth > config.AppConfig.MaxTreeDepth {
				return fmt.Errorf("folder tree too deep")
			}
			var children []model.File
			if err := tx.Where("parent_id IN ?", frontier).Find(&children).Error; err != nil {
				return err
			}
			frontier = frontier[:0]
			for _, child := range children {
				ids = append(ids, child.ID)
				if child.IsFolder {
					frontier = append(frontier, child.ID)
				} else {
					freed += child.SizeBytes
					objects = append(objects, storedObject{child.Bucket, child.ObjectName})
				}
			}
		}

		if err := tx.Where("id IN ?", ids).Delete(&model.File{}).Error; err != nil {
			return err
		}
		return ReleaseQuota(tx, file.OwnerID, freed)
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	for _, obj := range objects {
		removeObject(ctx, obj.bucket, obj.object)
	}

	actorIDPtr, actorName := auditUser(actor)
	RecordAudit(&model.AuditLog{
		UserID:       actorIDPtr,
		UserName:     actorName,
		Action:       ActionFileDelete,
		ResourceType: ResourceFile,
		ResourceID:   fileID,
		Detail:       fmt.Sprintf("name=%s folder=%t", file.Name, file.IsFolder),
	})
	return nil
}

// removeObject drops stored bytes, best effort.
func removeObject(ctx context.Context, bucket, object string) {
	if storage.Default == nil || object == "" {
		return
	}
	if err := storage.Default.RemoveObject(ctx, bucket, object); err != nil {
		log.Printf("remove object %s/%s failed: %v", bucket, object, err)
	}
}
