package ws

import (
	"context"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MKhiriev/go-lst-sync/models"
)

// Conn carries the frames of one device connection. The websocket endpoint
// and the gRPC stream both serve sessions through it.
//
// Write is never called concurrently.
type Conn interface {
	Read(ctx context.Context) (models.Message, error)
	Write(ctx context.Context, msg models.Message) error
	// Close ends the connection. code and reason tell the device why.
	Close(code websocket.StatusCode, reason string) error
}

type wsConn struct {
	conn *websocket.Conn
}

// NewConn wraps an accepted websocket connection.
func NewConn(conn *websocket.Conn) Conn {
	return &wsConn{conn: conn}
}

func (c *wsConn) Read(ctx context.Context) (models.Message, error) {
	var msg models.Message
	if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

func (c *wsConn) Write(ctx context.Context, msg models.Message) error {
	return wsjson.Write(ctx, c.conn, msg)
}

func (c *wsConn) Close(code websocket.StatusCode, reason string) error {
	return c.conn.Close(code, reason)
}
