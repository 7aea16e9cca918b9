package grpc

import (
	"context"
	"errors"
	"sync"

	"github.com/coder/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MKhiriev/go-lst-sync/models"
)

var errStreamClosed = errors.New("stream closed")

type received struct {
	msg models.Message
	err error
}

// streamConn adapts a server stream to [ws.Conn]. RecvMsg cannot be
// interrupted, so a pump goroutine feeds frames and Close only has to stop
// Read from waiting on it.
type streamConn struct {
	stream grpc.ServerStream

	frames chan received

	closed    chan struct{}
	closeOnce sync.Once
	code      websocket.StatusCode
	reason    string

	sendMu sync.Mutex
}

func newStreamConn(stream grpc.ServerStream) *streamConn {
	c := &streamConn{
		stream: stream,
		frames: make(chan received),
		closed: make(chan struct{}),
	}
	go c.receive()
	return c
}

func (c *streamConn) receive() {
	for {
		var msg models.Message
		err := c.stream.RecvMsg(&msg)

		select {
		case c.frames <- received{msg: msg, err: err}:
		case <-c.closed:
			return
		}
		if err != nil {
			return
		}
	}
}

func (c *streamConn) Read(ctx context.Context) (models.Message, error) {
	select {
	case r := <-c.frames:
		return r.msg, r.err
	case <-c.closed:
		return models.Message{}, errStreamClosed
	case <-ctx.Done():
		return models.Message{}, ctx.Err()
	}
}

// Write sends msg. A gRPC send has no deadline of its own; a device that
// stops reading blocks it until the stream ends.
func (c *streamConn) Write(_ context.Context, msg models.Message) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	select {
	case <-c.closed:
		return errStreamClosed
	default:
	}
	return c.stream.SendMsg(&msg)
}

func (c *streamConn) Close(code websocket.StatusCode, reason string) error {
	c.closeOnce.Do(func() {
		c.code, c.reason = code, reason
		close(c.closed)
	})
	return nil
}

// Err translates the close code into the status the handler returns.
// It must be called after Close.
func (c *streamConn) Err() error {
	<-c.closed

	switch c.code {
	case websocket.StatusNormalClosure:
		return nil
	case websocket.StatusPolicyViolation:
		return status.Error(codes.Unauthenticated, c.reason)
	case websocket.StatusGoingAway, websocket.StatusTryAgainLater:
		return status.Error(codes.Unavailable, c.reason)
	default:
		return status.Error(codes.Internal, c.reason)
	}
}
