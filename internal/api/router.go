package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ranch-alerting-service/internal/config"
	"ranch-alerting-service/internal/logging"
)

func NewRouter(logger *logging.Logger, cfg config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		// Notifications
		api.GET("/notifications", h.ListNotifications)
		api.GET("/notifications/stats", h.GetStats)
		api.GET("/notifications/export", h.ExportNotifications)
		api.GET("/notifications/:id", h.GetNotification)
		api.POST("/notifications/:id/read", h.MarkAsRead)
		api.POST("/notifications/read-all", h.MarkAllAsRead)
		api.POST("/notifications/:id/resolve", h.ResolveNotification)
		api.POST("/notifications/:id/snooze", h.SnoozeNotification)
		api.DELETE("/notifications/:id", h.RemoveNotification)
		api.POST("/notifications/cleanup", h.CleanupExpired)

		// Evaluation
		api.POST("/evaluate", h.RunEvaluation)

		// Settings
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)

		// Alert rules
		api.GET("/rules", h.ListRules)
		api.POST("/rules/:id/enable", h.EnableRule)
		api.POST("/rules/:id/disable", h.DisableRule)

		// Live push
		api.GET("/ws", h.WebSocket)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
