package handler

import (
	"cipherdrive/internal/dto"
	"cipherdrive/internal/service"
	"cipherdrive/model"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListUsers returns every account. Admin only.
func ListUsers(c *gin.Context) {
	users, err := service.ListUsers()
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateUser provisions an account with a role and optional quota
// override. Admin only.
func CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	role := model.Role(req.Role)
	if !model.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	user, err := service.ProvisionUser(req.Username, req.Email, req.Password, role, req.QuotaBytes)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "user_id": user.ID})
}

// UpdateUserQuota changes a user's storage ceiling. Admin only.
func UpdateUserQuota(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req dto.UpdateQuotaRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	actorID := c.MustGet("user_id").(uint64)
	actor, err := service.GetUser(actorID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if err := service.SetUserQuota(actor, userID, req.QuotaBytes); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// GetAuditLogs returns recent audit entries, newest first. Admin only.
func GetAuditLogs(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	logs, err := service.ListAuditLogs(limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
