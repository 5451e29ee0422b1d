package handler

import (
	"cipherdrive/config"
	"cipherdrive/internal/dto"
	"cipherdrive/internal/service"
	"cipherdrive/utils"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ForgotPassword issues a reset token and mails a reset link. The
// response is identical whether or not the email is registered.
func ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	reset, err := service.CreatePasswordReset(req.Email)
	if err == nil {
		link := fmt.Sprintf("%s/reset-password?token=%s", config.AppConfig.PublicBaseURL, reset.Token)
		if err := utils.SendResetMail(req.Email, link); err != nil {
			log.Printf("send reset mail failed: %v", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the address is registered, a reset link has been sent"})
}

// ResetPassword consumes a reset token and sets a new password.
func ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := service.ResetPassword(req.Token, req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired reset token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
