package api

import (
	"net/http"

	"github.com/GodwinAdu/campus-forum/internal/forum"
	"github.com/GodwinAdu/campus-forum/internal/middleware"
	"github.com/GodwinAdu/campus-forum/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChannelHandler manages channels within a server. Listing happens
// through GET /v1/servers/:id, which returns the full aggregate.
type ChannelHandler struct {
	servers *forum.ServerService
	logger  *zap.Logger
}

func NewChannelHandler(servers *forum.ServerService, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{servers: servers, logger: logger}
}

type createChannelRequest struct {
	Name string             `json:"name" binding:"required"`
	Type models.ChannelType `json:"type" binding:"required"`
}

type updateChannelRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create handles POST /v1/servers/:id/channels
func (h *ChannelHandler) Create(c *gin.Context) {
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ch, err := h.servers.CreateChannel(c.Request.Context(), middleware.GetUserID(c), serverID, req.Name, req.Type)
	if err != nil {
		respondError(c, h.logger, err, "create channel")
		return
	}

	c.JSON(http.StatusCreated, ch)
}

// Update handles PATCH /v1/channels/:id
func (h *ChannelHandler) Update(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	var req updateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ch, err := h.servers.UpdateChannel(c.Request.Context(), middleware.GetUserID(c), channelID, req.Name)
	if err != nil {
		respondError(c, h.logger, err, "update channel")
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Delete handles DELETE /v1/channels/:id
func (h *ChannelHandler) Delete(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	if err := h.servers.DeleteChannel(c.Request.Context(), middleware.GetUserID(c), channelID); err != nil {
		respondError(c, h.logger, err, "delete channel")
		return
	}
	c.Status(http.StatusNoContent)
}
