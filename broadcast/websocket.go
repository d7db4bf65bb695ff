package broadcast

import (
	"context"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

// WebSocketConn adapts a websocket connection to Conn. Every event is one
// UTF-8 text frame.
type WebSocketConn struct {
	id string
	ws *websocket.Conn
}

// NewWebSocketConn wraps ws and assigns it a random id for logs.
func NewWebSocketConn(ws *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{id: uuid.NewString(), ws: ws}
}

// ID returns the connection id.
func (c *WebSocketConn) ID() string { return c.id }

// Send implements Conn.
func (c *WebSocketConn) Send(ctx context.Context, data []byte) error {
	return c.ws.Write(ctx, websocket.MessageText, data)
}
