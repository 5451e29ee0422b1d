package router

import (
	"cipherdrive/config"
	"cipherdrive/internal/handler"
	"cipherdrive/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	publicLimit := utils.RateLimitMiddleware(
		config.AppConfig.PublicRateLimit,
		config.AppConfig.PublicRateBurst,
	)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", publicLimit, handler.Login)
			auth.POST("/forgot-password", publicLimit, handler.ForgotPassword)
			auth.POST("/reset-password", publicLimit, handler.ResetPassword)
		}

		authed := api.Group("")
		authed.Use(utils.AuthMiddleware())

		file := authed.Group("/files")
		{
			file.GET("", handler.GetFileList)
			file.POST("/upload", handler.UploadFile)
			file.POST("/folder", handler.CreateFolder)
			file.GET("/quota", handler.GetQuota)
			file.GET("/:id/download", handler.DownloadFile)
			file.DELETE("/:id", handler.DeleteFile)
		}

		share := authed.Group("/shares")
		{
			share.POST("/create", handler.CreateShare)
			share.GET("", handler.ListShares)
			share.GET("/stats", handler.GetShareStats)
			share.POST("/:id/disable", handler.DisableShare)
		}

		admin := authed.Group("/admin")
		admin.Use(utils.AdminMiddleware())
		{
			admin.GET("/users", handler.ListUsers)
			admin.POST("/users", handler.CreateUser)
			admin.PUT("/users/:id/quota", handler.UpdateUserQuota)
			admin.GET("/audit-logs", handler.GetAuditLogs)
		}
	}

	// Anonymous share access. Both endpoints sit behind the public rate
	// limit to slow token guessing.
	shared := r.Group("/shared", publicLimit)
	{
		shared.GET("/:token", handler.SharedInfo)
		shared.POST("/:token", handler.SharedInfo)
		shared.GET("/:token/download", handler.SharedDownload)
		shared.POST("/:token/download", handler.SharedDownload)
	}
	return r
}
