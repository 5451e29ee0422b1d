package handler

import (
	"cipherdrive/internal/dto"
	"cipherdrive/internal/service"
	"cipherdrive/model"
	"cipherdrive/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Login authenticates a user and returns a bearer token.
func Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	user, err := service.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, err := utils.GenerateToken(user.ID, user.UserName, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	userID := user.ID
	service.RecordAudit(&model.AuditLog{
		UserID:       &userID,
		UserName:     user.UserName,
		Action:       service.ActionLogin,
		ResourceType: service.ResourceUser,
		ResourceID:   user.ID,
		RemoteIP:     c.ClientIP(),
	})
	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.UserName,
		Role:     string(user.Role),
	})
}
