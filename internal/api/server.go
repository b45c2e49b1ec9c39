package api

import (
	"net/http"

	"github.com/GodwinAdu/campus-forum/internal/forum"
	"github.com/GodwinAdu/campus-forum/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServerHandler exposes the server lifecycle: create, inspect, update,
// delete, and the invite flow.
type ServerHandler struct {
	servers *forum.ServerService
	logger  *zap.Logger
}

func NewServerHandler(servers *forum.ServerService, logger *zap.Logger) *ServerHandler {
	return &ServerHandler{servers: servers, logger: logger}
}

// The request structs are deliberately not the models: clients must
// never control ids, invite codes, or timestamps.
type createServerRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url"`
}

type updateServerRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url"`
}

// Create handles POST /v1/servers
func (h *ServerHandler) Create(c *gin.Context) {
	var req createServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	srv, err := h.servers.CreateServer(
		c.Request.Context(),
		middleware.GetUserID(c),
		middleware.GetTenantID(c),
		req.Name,
		req.ImageURL,
	)
	if err != nil {
		respondError(c, h.logger, err, "create server")
		return
	}

	c.JSON(http.StatusCreated, srv)
}

// List handles GET /v1/servers — every server the caller is a member of.
func (h *ServerHandler) List(c *gin.Context) {
	servers, err := h.servers.ListServers(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err, "list servers")
		return
	}
	c.JSON(http.StatusOK, servers)
}

// Get handles GET /v1/servers/:id — the server with channels and members.
func (h *ServerHandler) Get(c *gin.Context) {
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	detail, err := h.servers.GetServer(c.Request.Context(), middleware.GetUserID(c), serverID)
	if err != nil {
		respondError(c, h.logger, err, "get server")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Update handles PATCH /v1/servers/:id
func (h *ServerHandler) Update(c *gin.Context) {
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	var req updateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	srv, err := h.servers.UpdateServer(c.Request.Context(), middleware.GetUserID(c), serverID, req.Name, req.ImageURL)
	if err != nil {
		respondError(c, h.logger, err, "update server")
		return
	}
	c.JSON(http.StatusOK, srv)
}

// Delete handles DELETE /v1/servers/:id
func (h *ServerHandler) Delete(c *gin.Context) {
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	if err := h.servers.DeleteServer(c.Request.Context(), middleware.GetUserID(c), serverID); err != nil {
		respondError(c, h.logger, err, "delete server")
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetInviteCode handles POST /v1/servers/:id/invite-code
func (h *ServerHandler) ResetInviteCode(c *gin.Context) {
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	srv, err := h.servers.ResetInviteCode(c.Request.Context(), middleware.GetUserID(c), serverID)
	if err != nil {
		respondError(c, h.logger, err, "reset invite code")
		return
	}
	c.JSON(http.StatusOK, srv)
}

// Join handles POST /v1/servers/join/:code
func (h *ServerHandler) Join(c *gin.Context) {
	code := c.Param("code")

	srv, err := h.servers.JoinByInviteCode(c.Request.Context(), middleware.GetUserID(c), code)
	if err != nil {
		respondError(c, h.logger, err, "join server")
		return
	}
	c.JSON(http.StatusOK, srv)
}

// DefaultChannel handles GET /v1/servers/:id/default-channel — the
// landing destination when a visitor opens a server without picking a
// channel.
func (h *ServerHandler) DefaultChannel(c *gin.Context) {
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	ch, err := h.servers.DefaultChannel(c.Request.Context(), middleware.GetUserID(c), serverID)
	if err != nil {
		respondError(c, h.logger, err, "get default channel")
		return
	}
	c.JSON(http.StatusOK, ch)
}
