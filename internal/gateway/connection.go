package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	readWait       = 60 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Connection is a single WebSocket client. Clients send OpHeartbeat at least
// once per readWait; each incoming frame extends the read deadline, so a
// silent client is dropped by the read pump without any server-side timer.
type Connection struct {
	UserID    string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	manager   *Manager

	closeOnce sync.Once
	done      chan struct{}
}

func newConnection(conn *websocket.Conn, manager *Manager) *Connection {
	return &Connection{
		Conn:    conn,
		Send:    make(chan []byte, sendBufferSize),
		manager: manager,
		done:    make(chan struct{}),
	}
}

// SendPayload marshals and queues a payload. A full send buffer drops the
// message rather than blocking a dispatch fan-out.
func (c *Connection) SendPayload(p Payload) {
	data, err := json.Marshal(p)
	if err != nil {
		slog.Error("gateway: marshal payload", "userID", c.UserID, "error", err)
		return
	}
	select {
	case c.Send <- data:
	default:
		slog.Warn("gateway: send buffer full, dropping message", "userID", c.UserID)
	}
}

// SendEvent sends a dispatch event.
func (c *Connection) SendEvent(name string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("gateway: marshal event", "event", name, "error", err)
		return
	}
	c.SendPayload(Payload{Op: OpDispatch, Data: raw, Event: name})
}

// Close terminates the connection.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}

// readPump reads client payloads until the socket dies.
func (c *Connection) readPump() {
	defer func() {
		c.manager.unregister(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(readWait))

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("gateway: read error", "userID", c.UserID, "error", err)
			}
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(readWait))
		c.handleMessage(message)
	}
}

// writePump writes queued payloads to the socket.
func (c *Connection) writePump() {
	defer c.Close()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// handleMessage processes one incoming payload.
func (c *Connection) handleMessage(data []byte) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		slog.Error("gateway: invalid payload", "userID", c.UserID, "error", err)
		return
	}

	switch payload.Op {
	case OpHeartbeat:
		c.SendPayload(Payload{Op: OpHeartbeatAck})
	case OpIdentify:
		c.manager.handleIdentify(c, payload.Data)
	}
}
