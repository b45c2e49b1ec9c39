package api

import (
	"net/http"

	"github.com/GodwinAdu/campus-forum/internal/forum"
	"github.com/GodwinAdu/campus-forum/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConversationHandler resolves DM conversations.
type ConversationHandler struct {
	conversations *forum.ConversationService
	logger        *zap.Logger
}

func NewConversationHandler(conversations *forum.ConversationService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, logger: logger}
}

type getOrCreateConversationRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
}

// GetOrCreate handles POST /v1/conversations
//
// POST rather than GET because the first call creates the conversation.
// Repeat calls (in either direction of the pair) return the same row,
// so the endpoint is safely retryable anyway.
func (h *ConversationHandler) GetOrCreate(c *gin.Context) {
	var req getOrCreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.conversations.GetOrCreate(
		c.Request.Context(),
		middleware.GetUserID(c),
		uuid.MustParse(req.MemberID),
	)
	if err != nil {
		respondError(c, h.logger, err, "resolve conversation")
		return
	}

	c.JSON(http.StatusOK, conv)
}
