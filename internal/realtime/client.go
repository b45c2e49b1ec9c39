package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer. Clients only send small
	// subscribe/unsubscribe frames; message posting goes over HTTP.
	maxFrameSize = 512

	// Send buffer per client. Events beyond this are dropped for the
	// client rather than blocking the broadcaster.
	sendBuffer = 256
)

// Authorizer decides whether a user may join a room. The api layer
// plugs the forum access check in here so this package stays free of
// domain imports.
type Authorizer func(ctx context.Context, userID uuid.UUID, room string) error

// clientFrame is what a connected client sends us: room management
// only. Everything else arriving on the socket is ignored.
type clientFrame struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Room   string `json:"room"`
}

// ack tells the client how a subscribe attempt went, so its UI can
// distinguish "live" from "no access".
type ack struct {
	Action string `json:"action"`
	Room   string `json:"room"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// Client is one websocket connection of one authenticated user. A user
// may hold several (tabs, devices); each subscribes independently.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	userID    uuid.UUID
	authorize Authorizer
	send      chan []byte
	logger    *zap.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, authorize Authorizer, logger *zap.Logger) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		userID:    userID,
		authorize: authorize,
		send:      make(chan []byte, sendBuffer),
		logger:    logger,
	}
}

// Start runs the read and write pumps. Returns immediately; the pumps
// run until the connection dies.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump consumes subscribe/unsubscribe frames until the connection
// closes, then tears the client down. The deferred cleanup is the ONLY
// place the client leaves the hub and the send channel closes — so
// writePump's range loop always terminates.
func (c *Client) readPump() {
	defer func() {
		c.hub.DropClient(c)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.logger.Debug("ignoring malformed ws frame", zap.Error(err))
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame clientFrame) {
	switch frame.Action {
	case "subscribe":
		// Same gate as reading history: a Forbidden here redirects the
		// client to its no-access state without leaking room contents.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.authorize(ctx, c.userID, frame.Room)
		cancel()
		if err != nil {
			c.reply(ack{Action: frame.Action, Room: frame.Room, OK: false, Error: "no access"})
			return
		}
		c.hub.Subscribe(frame.Room, c)
		c.reply(ack{Action: frame.Action, Room: frame.Room, OK: true})
	case "unsubscribe":
		c.hub.Unsubscribe(frame.Room, c)
		c.reply(ack{Action: frame.Action, Room: frame.Room, OK: true})
	default:
		c.reply(ack{Action: frame.Action, Room: frame.Room, OK: false, Error: "unknown action"})
	}
}

func (c *Client) reply(a ack) {
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with pings. One writer goroutine per connection —
// gorilla/websocket allows at most one concurrent writer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
