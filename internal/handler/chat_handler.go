// Package handler provides the HTTP handlers and middleware for the chat API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orbitchat/orbit-chat/internal/domain"
)

// CreateConversationRequest is the body of POST /api/chat/conversations.
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// RenameConversationRequest is the body of PUT /api/chat/conversations/:id.
type RenameConversationRequest struct {
	Title string `json:"title"`
}

// SendMessageRequest is the body of POST /api/chat/messages.
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

// HandleListConversations handles GET /api/chat/conversations.
// Returns at most 20 conversations, most recently updated first. This is a
// hard cap, not a first page.
func (h *Handler) HandleListConversations(c *gin.Context) {
	conversations, err := h.chat.ListConversations(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// HandleCreateConversation handles POST /api/chat/conversations.
func (h *Handler) HandleCreateConversation(c *gin.Context) {
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("body", "is invalid"))
		return
	}

	conversation, err := h.chat.CreateConversation(c.Request.Context(), currentUser(c), req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conversation})
}

// HandleListMessages handles GET /api/chat/messages/:conversationId.
// Returns every message of the conversation, oldest first.
func (h *Handler) HandleListMessages(c *gin.Context) {
	messages, err := h.chat.ListMessages(c.Request.Context(), currentUser(c), c.Param("conversationId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// HandleSendMessage handles POST /api/chat/messages: one full chat turn.
// The response carries both persisted messages and the post-debit balance.
func (h *Handler) HandleSendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("body", "is invalid"))
		return
	}

	result, err := h.chat.SendMessage(c.Request.Context(), currentUser(c), req.ConversationID, req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"messages": []*domain.Message{result.UserMessage, result.AIMessage},
		"credits":  result.Credits,
	})
}

// HandleRenameConversation handles PUT /api/chat/conversations/:id.
func (h *Handler) HandleRenameConversation(c *gin.Context) {
	var req RenameConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, domain.NewValidationError("body", "is invalid"))
		return
	}

	title, err := h.chat.RenameConversation(c.Request.Context(), currentUser(c), c.Param("id"), req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Conversation renamed successfully",
		"title":   title,
	})
}

// HandleDeleteConversation handles DELETE /api/chat/conversations/:id.
// Deleting cascades to every message of the conversation.
func (h *Handler) HandleDeleteConversation(c *gin.Context) {
	if err := h.chat.DeleteConversation(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}
