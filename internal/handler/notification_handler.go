// Package handler provides the HTTP handlers and middleware for the chat API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleListNotifications handles GET /api/notifications.
func (h *Handler) HandleListNotifications(c *gin.Context) {
	notifications, err := h.notifications.ListNotifications(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// HandleMarkNotificationRead handles PUT /api/notifications/:id/read.
func (h *Handler) HandleMarkNotificationRead(c *gin.Context) {
	err := h.notifications.MarkNotificationRead(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// HandleMarkAllNotificationsRead handles PUT /api/notifications/mark-all-read.
func (h *Handler) HandleMarkAllNotificationsRead(c *gin.Context) {
	err := h.notifications.MarkAllNotificationsRead(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
