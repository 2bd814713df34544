// Package handler provides the HTTP handlers and middleware for the chat API.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orbitchat/orbit-chat/internal/auth"
	"github.com/orbitchat/orbit-chat/internal/chat"
	"github.com/orbitchat/orbit-chat/internal/domain"
	"github.com/orbitchat/orbit-chat/internal/store"
)

// contextUserID is the gin context key carrying the authenticated user id.
const contextUserID = "userID"

// Handler bundles the services behind the REST surface.
type Handler struct {
	chat          *chat.Service
	auth          *auth.Service
	tokens        *auth.TokenManager
	notifications store.NotificationStore
	logger        *slog.Logger
}

// Option is a functional option for configuring Handler.
type Option func(*Handler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// New creates a Handler over the given services.
func New(chatSvc *chat.Service, authSvc *auth.Service, tokens *auth.TokenManager, notifications store.NotificationStore, opts ...Option) *Handler {
	h := &Handler{
		chat:          chatSvc,
		auth:          authSvc,
		tokens:        tokens,
		notifications: notifications,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// RegisterRoutes mounts the REST surface on the given engine.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.HandleRoot)

	api := router.Group("/api")
	api.GET("/health", h.HandleHealth)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.HandleRegister)
	authGroup.POST("/login", h.HandleLogin)
	authGroup.GET("/profile", h.AuthRequired(), h.HandleProfile)

	chatGroup := api.Group("/chat", h.AuthRequired())
	chatGroup.GET("/conversations", h.HandleListConversations)
	chatGroup.POST("/conversations", h.HandleCreateConversation)
	chatGroup.GET("/messages/:conversationId", h.HandleListMessages)
	chatGroup.POST("/messages", h.HandleSendMessage)
	chatGroup.PUT("/conversations/:id", h.HandleRenameConversation)
	chatGroup.DELETE("/conversations/:id", h.HandleDeleteConversation)

	notifGroup := api.Group("/notifications", h.AuthRequired())
	notifGroup.GET("", h.HandleListNotifications)
	notifGroup.PUT("/mark-all-read", h.HandleMarkAllNotificationsRead)
	notifGroup.PUT("/:id/read", h.HandleMarkNotificationRead)
}

// HandleRoot handles GET / with a short service description.
func (h *Handler) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Orbit Chat API",
		"status":  "running",
		"endpoints": gin.H{
			"health":        "/api/health",
			"auth":          "/api/auth",
			"chat":          "/api/chat",
			"notifications": "/api/notifications",
		},
	})
}

// HandleHealth handles GET /api/health.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Orbit Chat API is running!",
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// currentUser returns the authenticated user id set by AuthRequired.
func currentUser(c *gin.Context) string {
	return c.GetString(contextUserID)
}

// respondError maps the domain error taxonomy onto HTTP statuses. Anything
// unclassified becomes a generic 500 with no detail leaked.
func (h *Handler) respondError(c *gin.Context, err error) {
	var ic *domain.InsufficientCreditsError

	switch {
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation failed",
			"errors":  []string{err.Error()},
		})
	case errors.As(err, &ic):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Insufficient credits. Please purchase more credits to continue using AI chat.",
			"credits": ic.Credits,
		})
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		h.logger.Error("request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}
