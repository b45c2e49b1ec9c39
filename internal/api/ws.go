package api

import (
	"net/http"

	"github.com/GodwinAdu/campus-forum/internal/middleware"
	"github.com/GodwinAdu/campus-forum/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler upgrades authenticated HTTP requests into realtime clients.
type WSHandler struct {
	hub       *realtime.Hub
	authorize realtime.Authorizer
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, authorize realtime.Authorizer, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:       hub,
		authorize: authorize,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth happens per-room at subscribe time, not at upgrade;
			// origin policy belongs to the deployment's proxy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles GET /v1/ws
//
// The socket itself carries only subscribe/unsubscribe frames and
// event fan-out; all writes go through the HTTP endpoints.
func (h *WSHandler) Connect(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	realtime.NewClient(h.hub, conn, userID, h.authorize, h.logger).Start()
}
