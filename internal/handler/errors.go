package handler

import (
	"cipherdrive/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// writeServiceError maps service sentinels onto HTTP statuses for
// authenticated endpoints. Anything unmapped is a server fault.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuotaExceeded):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "storage quota exceeded"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner of this file"})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "operation not permitted"})
	case errors.Is(err, service.ErrWrongPassword):
		c.JSON(http.StatusForbidden, gin.H{"error": "wrong password"})
	case errors.Is(err, service.ErrInvalidExpiry):
		c.JSON(http.StatusBadRequest, gin.H{"error": "expiry must be in the future"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrShareDisabled):
		c.JSON(http.StatusGone, gin.H{"error": "share link disabled"})
	case errors.Is(err, service.ErrShareExpired):
		c.JSON(http.StatusGone, gin.H{"error": "share link expired"})
	case errors.Is(err, service.ErrDownloadLimitReached):
		c.JSON(http.StatusGone, gin.H{"error": "download limit reached"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// writePublicShareError maps errors for the anonymous share endpoints.
// Missing and disabled links are indistinguishable on purpose, so a
// disabled token leaks nothing about its history.
func writePublicShareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrShareDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
	case errors.Is(err, service.ErrShareExpired):
		c.JSON(http.StatusGone, gin.H{"error": "share link expired"})
	case errors.Is(err, service.ErrDownloadLimitReached):
		c.JSON(http.StatusGone, gin.H{"error": "download limit reached"})
	case errors.Is(err, service.ErrWrongPassword):
		c.JSON(http.StatusForbidden, gin.H{"error": "wrong password"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
