package api

import (
	"net/http"
	"strconv"

	"github.com/GodwinAdu/campus-forum/internal/forum"
	"github.com/GodwinAdu/campus-forum/internal/middleware"
	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageHandler serves message history and writes for both parents.
// The routes differ only in the path prefix; the parent kind is bound
// when the route is registered, so one handler covers channels and
// conversations without duplicated code.
type MessageHandler struct {
	messages *forum.MessageService
	logger   *zap.Logger
}

func NewMessageHandler(messages *forum.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

type postMessageRequest struct {
	Content string `json:"content"`
	FileURL string `json:"file_url"`
}

type editMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Post handles
//
//	POST /v1/channels/:id/messages
//	POST /v1/conversations/:id/messages
func (h *MessageHandler) Post(parent models.MessageParent) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req postMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msg, err := h.messages.Post(c.Request.Context(), middleware.GetUserID(c), parent, parentID, req.Content, req.FileURL)
		if err != nil {
			respondError(c, h.logger, err, "post message")
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

// List handles
//
//	GET /v1/channels/:id/messages?cursor=<id>&limit=<n>
//	GET /v1/conversations/:id/messages?cursor=<id>&limit=<n>
//
// The cursor is the next_cursor of the previous page; omit it for the
// newest page.
func (h *MessageHandler) List(parent models.MessageParent) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var cursor *int64
		if raw := c.Query("cursor"); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "cursor must be a message id"})
				return
			}
			cursor = &v
		}

		limit := 0
		if raw := c.Query("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
				return
			}
		}

		page, err := h.messages.List(c.Request.Context(), middleware.GetUserID(c), parent, parentID, cursor, limit)
		if err != nil {
			respondError(c, h.logger, err, "list messages")
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// Edit handles
//
//	PATCH /v1/channels/:id/messages/:messageID
//	PATCH /v1/conversations/:id/messages/:messageID
func (h *MessageHandler) Edit(parent models.MessageParent) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, messageID, ok := h.messageParams(c)
		if !ok {
			return
		}

		var req editMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msg, err := h.messages.Edit(c.Request.Context(), middleware.GetUserID(c), parent, parentID, messageID, req.Content)
		if err != nil {
			respondError(c, h.logger, err, "edit message")
			return
		}
		c.JSON(http.StatusOK, msg)
	}
}

// Delete handles
//
//	DELETE /v1/channels/:id/messages/:messageID
//	DELETE /v1/conversations/:id/messages/:messageID
//
// Returns the tombstoned message rather than 204: clients replace the
// row in place with the placeholder, same as the fan-out event.
func (h *MessageHandler) Delete(parent models.MessageParent) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, messageID, ok := h.messageParams(c)
		if !ok {
			return
		}

		msg, err := h.messages.Delete(c.Request.Context(), middleware.GetUserID(c), parent, parentID, messageID)
		if err != nil {
			respondError(c, h.logger, err, "delete message")
			return
		}
		c.JSON(http.StatusOK, msg)
	}
}

func (h *MessageHandler) messageParams(c *gin.Context) (uuid.UUID, int64, bool) {
	parentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, 0, false
	}
	messageID, err := strconv.ParseInt(c.Param("messageID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return uuid.Nil, 0, false
	}
	return parentID, messageID, true
}
