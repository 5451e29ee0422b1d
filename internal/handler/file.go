package handler

import (
	"cipherdrive/internal/dto"
	"cipherdrive/internal/service"
	"cipherdrive/model"
	"cipherdrive/utils"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetFileList returns one folder level of the caller's tree.
func GetFileList(c *gin.Context) {
	var req dto.FileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 200 {
		req.PageSize = 50
	}
	userID := c.MustGet("user_id").(uint64)
	role := c.MustGet("role").(model.Role)
	if err := service.Authorize(role, service.OpListFiles); err != nil {
		writeServiceError(c, err)
		return
	}
	files, total, err := service.GetFileList(userID, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	items := make([]dto.FileItem, 0, len(files))
	for _, f := range files {
		items = append(items, dto.FileItem{
			ID:          f.ID,
			Name:        f.Name,
			ParentID:    f.ParentID,
			IsFolder:    f.IsFolder,
			SizeBytes:   f.SizeBytes,
			ContentType: f.ContentType,
			CreatedAt:   f.CreatedAt,
			UpdatedAt:   f.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, dto.FileListResponse{Files: items, Total: total, Page: req.Page})
}

// UploadFile accepts one multipart file and stores it under the
// caller's quota.
func UploadFile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	var parentID *uint64
	if raw := c.PostForm("parent_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parent_id"})
			return
		}
		parentID = &id
	}
	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	file, err := service.UploadFile(c.Request.Context(), userID, parentID, header.Filename, src, header.Size, contentType)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "file_id": file.ID})
}

// CreateFolder creates a folder. Folders take no quota.
func CreateFolder(c *gin.Context) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	userID := c.MustGet("user_id").(uint64)
	folder, err := service.CreateFolder(userID, req.ParentID, req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "file_id": folder.ID})
}

// DownloadFile streams a file the caller is allowed to read.
func DownloadFile(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	userID := c.MustGet("user_id").(uint64)
	role := c.MustGet("role").(model.Role)
	if err := service.Authorize(role, service.OpDownloadFile); err != nil {
		writeServiceError(c, err)
		return
	}
	file, err := service.GetFile(fileID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if file.OwnerID != userID && role != model.RoleAdmin {
		writeServiceError(c, service.ErrNotAuthorized)
		return
	}
	streamFile(c, file, userID)
}

func streamFile(c *gin.Context, file *model.File, accessorID uint64) {
	reader, info, err := service.OpenFile(c.Request.Context(), file)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	defer reader.Close()

	name := utils.SanitizeHeaderFilename(file.Name)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := info.Size
	if size <= 0 {
		size = file.SizeBytes
	}
	c.DataFromReader(http.StatusOK, size, contentType, reader, nil)

	userID := accessorID
	service.RecordAudit(&model.AuditLog{
		UserID:       &userID,
		Action:       service.ActionFileDownload,
		ResourceType: service.ResourceFile,
		ResourceID:   file.ID,
		RemoteIP:     c.ClientIP(),
	})
}

// DeleteFile removes a file or folder subtree and frees its quota.
func DeleteFile(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	userID := c.MustGet("user_id").(uint64)
	if err := service.DeleteFile(fileID, userID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// GetQuota reports the caller's storage quota and usage.
func GetQuota(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	user, err := service.GetUser(userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.QuotaResponse{
		QuotaBytes: user.QuotaBytes,
		UsedBytes:  user.UsedBytes,
		Unlimited:  user.QuotaExempt(),
	})
}
