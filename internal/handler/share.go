package handler

import (
	"cipherdrive/internal/dto"
	"cipherdrive/internal/service"
	"cipherdrive/model"
	"cipherdrive/utils"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

func shareResponse(link *model.ShareLink) dto.ShareResponse {
	return dto.ShareResponse{
		ID:               link.ID,
		Token:            link.Token,
		FileID:           link.FileID,
		ExpiresAt:        link.ExpiresAt,
		MaxDownloads:     link.MaxDownloads,
		CurrentDownloads: link.CurrentDownloads,
		PasswordRequired: link.PasswordProtected(),
		Status:           string(link.Status),
		CreatedAt:        link.CreatedAt,
	}
}

// CreateShare mints a share link over a file the caller owns.
func CreateShare(c *gin.Context) {
	var req dto.CreateShareRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	userID := c.MustGet("user_id").(uint64)

	var expiresAt *time.Time
	if req.ExpiresIn != nil {
		if *req.ExpiresIn <= 0 {
			writeServiceError(c, service.ErrInvalidExpiry)
			return
		}
		t := time.Now().Add(time.Duration(*req.ExpiresIn) * time.Second)
		expiresAt = &t
	}
	link, err := service.CreateShare(userID, req.FileID, expiresAt, req.MaxDownloads, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shareResponse(link))
}

// ListShares returns the caller's share links.
func ListShares(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	links, err := service.ListShares(userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]dto.ShareResponse, 0, len(links))
	for i := range links {
		out = append(out, shareResponse(&links[i]))
	}
	c.JSON(http.StatusOK, gin.H{"shares": out})
}

// GetShareStats aggregates the caller's share counters.
func GetShareStats(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	stats, err := service.GetShareStats(userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DisableShare cancels a link the caller created (admins may cancel
// any link).
func DisableShare(c *gin.Context) {
	shareID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid share id"})
		return
	}
	userID := c.MustGet("user_id").(uint64)
	if err := service.DisableShare(shareID, userID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// sharePassword reads the optional password for public share access.
// GET requests carry it in a query parameter, POST in the body.
func sharePassword(c *gin.Context) string {
	if pwd := c.Query("password"); pwd != "" {
		return pwd
	}
	var req dto.SharePasswordRequest
	if err := c.ShouldBind(&req); err == nil {
		return req.Password
	}
	return ""
}

// SharedInfo exposes the public metadata of a share link without
// spending a download.
func SharedInfo(c *gin.Context) {
	link, file, err := service.ValidateShare(c.Param("token"), sharePassword(c))
	if err != nil {
		writePublicShareError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SharedInfoResponse{
		FileName:         file.Name,
		SizeBytes:        file.SizeBytes,
		ContentType:      file.ContentType,
		ExpiresAt:        link.ExpiresAt,
		MaxDownloads:     link.MaxDownloads,
		CurrentDownloads: link.CurrentDownloads,
		PasswordRequired: link.PasswordProtected(),
	})
}

// SharedDownload redeems one download slot and streams the file.
func SharedDownload(c *gin.Context) {
	_, file, err := service.RedeemShare(c.Param("token"), sharePassword(c))
	if err != nil {
		writePublicShareError(c, err)
		return
	}
	streamPublicFile(c, file)
}

func streamPublicFile(c *gin.Context, file *model.File) {
	reader, info, err := service.OpenFile(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer reader.Close()
	c.Header("Content-Disposition", "attachment; filename=\""+utils.SanitizeHeaderFilename(file.Name)+"\"")
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := info.Size
	if size <= 0 {
		size = file.SizeBytes
	}
	c.DataFromReader(http.StatusOK, size, contentType, reader, nil)
}
