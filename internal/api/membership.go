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

// MembershipHandler covers what happens to members after they've
// joined: leaving, being kicked, and role changes.
type MembershipHandler struct {
	servers *forum.ServerService
	logger  *zap.Logger
}

func NewMembershipHandler(servers *forum.ServerService, logger *zap.Logger) *MembershipHandler {
	return &MembershipHandler{servers: servers, logger: logger}
}

type updateRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// Leave handles POST /v1/servers/:id/leave
//
// "Leave" is a user action on themselves; kicking is an admin action on
// someone else. Two endpoints, two authorization stories.
func (h *MembershipHandler) Leave(c *gin.Context) {
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	if err := h.servers.LeaveServer(c.Request.Context(), middleware.GetUserID(c), serverID); err != nil {
		respondError(c, h.logger, err, "leave server")
		return
	}
	c.Status(http.StatusNoContent)
}

// Kick handles DELETE /v1/servers/:id/members/:memberID
func (h *MembershipHandler) Kick(c *gin.Context) {
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}
	memberID, err := uuid.Parse(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}

	if err := h.servers.KickMember(c.Request.Context(), middleware.GetUserID(c), serverID, memberID); err != nil {
		respondError(c, h.logger, err, "kick member")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateRole handles PATCH /v1/servers/:id/members/:memberID
func (h *MembershipHandler) UpdateRole(c *gin.Context) {
	serverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}
	memberID, err := uuid.Parse(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.servers.UpdateMemberRole(c.Request.Context(), middleware.GetUserID(c), serverID, memberID, req.Role)
	if err != nil {
		respondError(c, h.logger, err, "update member role")
		return
	}
	c.JSON(http.StatusOK, member)
}
