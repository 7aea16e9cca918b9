package ws

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/coder/websocket"

	"github.com/MKhiriev/go-lst-sync/internal/app"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/service"
	"github.com/MKhiriev/go-lst-sync/models"
)

// session is one authenticated device connection. Frames for the device are
// queued on send and written by writeLoop; a session whose queue fills up is
// dropped and resyncs after reconnecting.
type session struct {
	hub  *Hub
	conn Conn

	identity string
	deviceID string

	send      chan models.Message
	done      chan struct{}
	closeOnce sync.Once

	log *logger.Logger
}

func newSession(hub *Hub, conn Conn) *session {
	return &session{
		hub:  hub,
		conn: conn,
		send: make(chan models.Message, hub.sendBuffer),
		done: make(chan struct{}),
		log:  hub.logger,
	}
}

func (s *session) read(ctx context.Context) (models.Message, error) {
	return s.conn.Read(ctx)
}

func (s *session) write(ctx context.Context, msg models.Message) error {
	if s.hub.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.hub.writeTimeout)
		defer cancel()
	}
	return s.conn.Write(ctx, msg)
}

// enqueue queues msg without blocking. A full queue drops the session.
func (s *session) enqueue(msg models.Message) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.send <- msg:
	default:
		s.log.Warn().
			Str("func", "session.enqueue").
			Str("type", string(msg.Type)).
			Str("doc_id", msg.DocID).
			Msg("dropping slow session")
		s.close(websocket.StatusTryAgainLater, ErrSendBufferFull.Error())
	}
}

func (s *session) close(code websocket.StatusCode, reason string) {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close(code, reason)
	})
}

func (s *session) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case msg := <-s.send:
			if err := s.write(ctx, msg); err != nil {
				s.log.Debug().Err(err).Str("func", "session.writeLoop").Msg("write failed")
				s.close(websocket.StatusInternalError, app.MsgWriteFailed)
				return
			}
		}
	}
}

// readLoop handles frames until the connection fails or the session is
// closed.
func (s *session) readLoop(ctx context.Context) error {
	for {
		msg, err := s.read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err = s.handle(ctx, msg); err != nil {
			return err
		}
	}
}

func (s *session) handle(ctx context.Context, msg models.Message) error {
	if msg.Type == models.MsgAuthenticate {
		// already authenticated
		return nil
	}
	if err := s.hub.frames.Validate(ctx, msg); err != nil {
		s.fail(msg, err)
		return nil
	}

	switch msg.Type {
	case models.MsgPushChanges:
		s.onPushChanges(ctx, msg)
	case models.MsgPushSnapshot:
		s.onPushSnapshot(ctx, msg)
	case models.MsgRequestDocumentList:
		s.onRequestDocumentList(ctx)
	case models.MsgRequestChanges:
		s.onRequestChanges(ctx, msg)
	case models.MsgRequestSnapshot:
		s.onRequestSnapshot(ctx, msg)
	}
	return nil
}

func (s *session) onPushChanges(ctx context.Context, msg models.Message) {
	unlock := s.hub.locks.Lock(msg.DocID)
	result, err := s.hub.relay.PushChanges(ctx, s.identity, s.deviceID, msg.DocID, msg.Changes)
	if err != nil {
		unlock()
		s.fail(msg, err)
		return
	}

	s.enqueue(models.Message{Type: models.MsgAck, DocID: msg.DocID, PushID: msg.PushID, Seq: result.Seq, After: result.PrevSeq})
	s.hub.broadcast(ctx, s, msg.DocID, models.Message{
		Type:     models.MsgNewChanges,
		DocID:    msg.DocID,
		DeviceID: s.deviceID,
		Changes:  msg.Changes,
		Seq:      result.Seq,
		After:    result.PrevSeq,
	})
	unlock()

	if s.hub.relay.NeedsCompaction(result) {
		s.enqueue(models.Message{Type: models.MsgRequestCompaction, DocID: msg.DocID})
	}
}

func (s *session) onPushSnapshot(ctx context.Context, msg models.Message) {
	unlock := s.hub.locks.Lock(msg.DocID)
	defer unlock()

	if err := s.hub.relay.PushSnapshot(ctx, s.identity, msg.DocID, msg.Snapshot, msg.CoversSeq); err != nil {
		s.fail(msg, err)
		return
	}

	s.enqueue(models.Message{Type: models.MsgAck, DocID: msg.DocID, PushID: msg.PushID, Seq: msg.CoversSeq})
	s.hub.broadcast(ctx, s, msg.DocID, models.Message{
		Type:     models.MsgSnapshot,
		DocID:    msg.DocID,
		DeviceID: s.deviceID,
		Snapshot: msg.Snapshot,
		Seq:      msg.CoversSeq,
	})
}

func (s *session) onRequestDocumentList(ctx context.Context) {
	docs, err := s.hub.relay.ListDocuments(ctx, s.identity)
	if err != nil {
		s.fail(models.Message{Type: models.MsgRequestDocumentList}, err)
		return
	}
	s.enqueue(models.Message{Type: models.MsgDocumentList, Documents: docs})
}

func (s *session) onRequestChanges(ctx context.Context, msg models.Message) {
	changes, err := s.hub.relay.ChangesAfter(ctx, s.identity, msg.DocID, msg.After)
	if errors.Is(err, service.ErrChangesTruncated) {
		s.onRequestSnapshot(ctx, msg)
		return
	}
	if err != nil {
		s.fail(msg, err)
		return
	}
	s.sendChanges(msg.DocID, msg.After, changes)
}

func (s *session) onRequestSnapshot(ctx context.Context, msg models.Message) {
	// the snapshot and its tail must not interleave with a concurrent append
	unlock := s.hub.locks.Lock(msg.DocID)
	defer unlock()

	snap, tail, err := s.hub.relay.Snapshot(ctx, s.identity, msg.DocID)
	if err != nil {
		s.fail(msg, err)
		return
	}

	s.enqueue(models.Message{Type: models.MsgSnapshot, DocID: msg.DocID, Snapshot: snap.Payload, Seq: snap.Seq})
	s.sendChanges(msg.DocID, snap.Seq, tail)
}

// sendChanges delivers the changes of a document that follow after.
func (s *session) sendChanges(docID string, after int64, changes []models.StoredChange) {
	if len(changes) == 0 {
		return
	}

	payloads := make([][]byte, len(changes))
	for i, ch := range changes {
		payloads[i] = ch.Payload
	}
	s.enqueue(models.Message{
		Type:    models.MsgNewChanges,
		DocID:   docID,
		Changes: payloads,
		Seq:     changes[len(changes)-1].Seq,
		After:   after,
	})
}

// fail answers a request with an Error frame.
func (s *session) fail(msg models.Message, err error) {
	log := s.log.Error()
	if isClientError(err) {
		log = s.log.Warn()
	}
	log.Err(err).
		Str("func", "session.fail").
		Str("type", string(msg.Type)).
		Str("doc_id", msg.DocID).
		Str("push_id", msg.PushID).
		Msg("request rejected")

	s.enqueue(models.Message{Type: models.MsgError, DocID: msg.DocID, PushID: msg.PushID, Reason: reason(err)})
}
