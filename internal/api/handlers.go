package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ranch-alerting-service/internal/dispatch"
	"ranch-alerting-service/internal/engine"
	"ranch-alerting-service/internal/logging"
	"ranch-alerting-service/internal/models"
	"ranch-alerting-service/internal/settings"
	"ranch-alerting-service/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	store    *store.Store
	engine   *engine.Engine
	rules    *engine.Registry
	settings *settings.Manager
	hub      *dispatch.Hub
	logger   *logging.Logger
}

func NewHandler(st *store.Store, eng *engine.Engine, rules *engine.Registry,
	sm *settings.Manager, hub *dispatch.Hub, logger *logging.Logger) *Handler {
	return &Handler{store: st, engine: eng, rules: rules, settings: sm, hub: hub, logger: logger}
}

// ListNotifications returns the store contents, optionally filtered by one of
// category, priority, status, ranch_id or unread=true.
func (h *Handler) ListNotifications(c *gin.Context) {
	var list []models.Notification
	switch {
	case c.Query("category") != "":
		list = h.store.ByCategory(models.Category(c.Query("category")))
	case c.Query("priority") != "":
		list = h.store.ByPriority(models.Priority(c.Query("priority")))
	case c.Query("status") != "":
		list = h.store.ByStatus(models.Status(c.Query("status")))
	case c.Query("ranch_id") != "":
		list = h.store.ByRanch(c.Query("ranch_id"))
	case c.Query("unread") == "true":
		list = h.store.Unread()
	case c.Query("critical") == "true":
		list = h.store.CriticalUnresolved()
	default:
		list = h.store.All()
	}
	if list == nil {
		list = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread_count": h.store.UnreadCount()})
}

func (h *Handler) GetNotification(c *gin.Context) {
	id := c.Param("id")
	n, err := h.store.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.MarkAsRead(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		h.logger.Errorf("Failed to mark notification %s as read: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": h.store.UnreadCount()})
}

func (h *Handler) MarkAllAsRead(c *gin.Context) {
	h.store.MarkAllAsRead()
	c.JSON(http.StatusOK, gin.H{"unread_count": h.store.UnreadCount()})
}

func (h *Handler) ResolveNotification(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Resolve(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

type snoozeRequest struct {
	Until time.Time `json:"until" binding:"required"`
}

func (h *Handler) SnoozeNotification(c *gin.Context) {
	id := c.Param("id")
	var req snoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body, want {\"until\": RFC3339}"})
		return
	}
	if err := h.store.Snooze(id, req.Until); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "snoozed", "until": req.Until})
}

func (h *Handler) RemoveNotification(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Remove(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *Handler) CleanupExpired(c *gin.Context) {
	removed := h.store.CleanupExpired()
	h.logger.Infof("Cleanup removed %d expired notifications", removed)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

func (h *Handler) ExportNotifications(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	data, err := h.store.Export(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if format == "csv" {
		c.Header("Content-Disposition", "attachment; filename=notifications.csv")
		c.Data(http.StatusOK, "text/csv", data)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (h *Handler) RunEvaluation(c *gin.Context) {
	accepted, err := h.engine.RunPass(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Manual evaluation pass failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Evaluation pass failed"})
		return
	}
	if accepted == nil {
		accepted = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"accepted": accepted})
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Get())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var s models.NotificationSettings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.settings.Update(s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.settings.Get())
}

func (h *Handler) ListRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.rules.List())
}

func (h *Handler) EnableRule(c *gin.Context) {
	h.setRuleEnabled(c, true)
}

func (h *Handler) DisableRule(c *gin.Context) {
	h.setRuleEnabled(c, false)
}

func (h *Handler) setRuleEnabled(c *gin.Context, enabled bool) {
	id := c.Param("id")
	if !h.rules.SetEnabled(id, enabled) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "enabled": enabled})
}

// WebSocket upgrades the connection and registers it with the live-push hub.
func (h *Handler) WebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	h.hub.Add(conn)
	go func() {
		defer func() {
			h.hub.Remove(conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
