package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/models"
)

// maxFrameSize bounds a single incoming frame. Snapshots of large notes are
// the biggest frames.
const maxFrameSize = 32 << 20

type wsDialer struct {
	url    string
	logger *logger.Logger
}

// NewRelayDialer returns a [RelayDialer] for a ws:// or wss:// relay URL.
func NewRelayDialer(relayURL string, logger *logger.Logger) (RelayDialer, error) {
	relayURL = strings.TrimSpace(relayURL)
	u, err := url.Parse(relayURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, relayURL)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: scheme must be ws or wss", ErrInvalidAddress)
	}

	return &wsDialer{url: u.String(), logger: logger}, nil
}

// Dial implements [RelayDialer].
func (d *wsDialer) Dial(ctx context.Context) (RelayConn, error) {
	conn, _, err := websocket.Dial(ctx, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", models.ErrTransientNetwork, d.url, err)
	}
	conn.SetReadLimit(maxFrameSize)

	d.logger.Debug().Str("func", "wsDialer.Dial").Str("url", d.url).Msg("connected to relay")
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

// Send implements [RelayConn].
func (c *wsConn) Send(ctx context.Context, msg models.Message) error {
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return fmt.Errorf("%w: send %s: %w", models.ErrTransientNetwork, msg.Type, err)
	}
	return nil
}

// Receive implements [RelayConn].
func (c *wsConn) Receive(ctx context.Context) (models.Message, error) {
	var msg models.Message
	if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
		return models.Message{}, fmt.Errorf("%w: receive: %w", models.ErrTransientNetwork, err)
	}
	return msg, nil
}

// Close implements [RelayConn].
func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
