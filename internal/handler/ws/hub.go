// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package ws implements the relay side of the sync protocol: one session per
// connected device, exchanging JSON [models.Message] frames over a websocket
// or any other [Conn].
//
// The relay never decrypts anything. It appends pushed changes to the
// document log, acknowledges them, and fans them out to every other session
// whose identity may read the document. Appends and fan-out of one document
// are serialized, so every session sees a document's changes in arrival
// order.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-lst-sync/internal/app"
	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/service"
	"github.com/MKhiriev/go-lst-sync/internal/utils"
	"github.com/MKhiriev/go-lst-sync/internal/validators"
	"github.com/MKhiriev/go-lst-sync/models"
)

// MaxFrameSize bounds one incoming frame.
const MaxFrameSize = 32 << 20

// Hub accepts device connections and routes frames between sessions.
type Hub struct {
	relay  service.RelayService
	auth   service.AuthService
	frames validators.Validator

	authTimeout  time.Duration
	writeTimeout time.Duration
	sendBuffer   int

	// locks serializes append and fan-out per document.
	locks *utils.KeyedMutex

	mu       sync.RWMutex
	sessions map[*session]struct{}

	logger *logger.Logger
}

func NewHub(relay service.RelayService, auth service.AuthService, cfg config.Server, logger *logger.Logger) *Hub {
	sendBuffer := cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = config.DefaultSendBuffer
	}

	return &Hub{
		relay:        relay,
		auth:         auth,
		frames:       validators.NewClientFrameValidator(),
		authTimeout:  cfg.AuthTimeout,
		writeTimeout: cfg.RequestTimeout,
		sendBuffer:   sendBuffer,
		locks:        utils.NewKeyedMutex(),
		sessions:     make(map[*session]struct{}),
		logger:       logger,
	}
}

// ServeHTTP upgrades the request and runs the session until the connection
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("func", "Hub.ServeHTTP").Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(MaxFrameSize)

	h.Serve(r.Context(), NewConn(conn))
}

// Serve authenticates the device on conn and handles its frames until the
// connection ends. The logger attached to ctx tags the session.
func (h *Hub) Serve(ctx context.Context, conn Conn) {
	log := logger.FromContext(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s, err := h.authenticate(ctx, conn)
	if err != nil {
		log.Info().Err(err).Str("func", "Hub.Serve").Msg("authentication failed")
		_ = conn.Close(websocket.StatusPolicyViolation, "authentication failed")
		return
	}

	// registered before the reply so no fan-out is missed after it
	h.register(s)
	defer h.unregister(s)

	if err = s.write(ctx, models.Message{Type: models.MsgAuthenticated}); err != nil {
		log.Debug().Err(err).Str("func", "Hub.Serve").Msg("failed to confirm authentication")
		return
	}

	log.Info().
		Str("identity", s.identity).
		Str("device_id", s.deviceID).
		Int("sessions", h.Len()).
		Msg("device connected")

	go s.writeLoop(ctx)
	err = s.readLoop(ctx)

	log.Info().Err(err).
		Str("identity", s.identity).
		Str("device_id", s.deviceID).
		Msg("device disconnected")
}

// Len returns the number of authenticated sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close(websocket.StatusGoingAway, "relay shutting down")
	}
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
	s.close(websocket.StatusNormalClosure, "")
}

// authenticate waits for the Authenticate frame and validates its token.
// The caller confirms success once the session is registered.
func (h *Hub) authenticate(ctx context.Context, conn Conn) (*session, error) {
	authCtx := ctx
	if h.authTimeout > 0 {
		var cancel context.CancelFunc
		authCtx, cancel = context.WithTimeout(ctx, h.authTimeout)
		defer cancel()
	}

	s := newSession(h, conn)

	msg, err := s.read(authCtx)
	if err != nil {
		return nil, err
	}

	if msg.Type != models.MsgAuthenticate {
		_ = s.write(authCtx, models.Message{Type: models.MsgAuthFailed, Reason: app.MsgExpectedAuthenticate})
		return nil, ErrNotAuthenticated
	}

	if err = h.frames.Validate(authCtx, msg); err != nil {
		_ = s.write(authCtx, models.Message{Type: models.MsgAuthFailed, Reason: app.MsgInvalidToken})
		return nil, err
	}

	token, err := h.auth.ParseToken(authCtx, msg.Token)
	if err != nil {
		_ = s.write(authCtx, models.Message{Type: models.MsgAuthFailed, Reason: app.MsgInvalidToken})
		return nil, err
	}

	s.identity = token.Identity
	s.deviceID = msg.DeviceID
	s.log = logger.FromContext(ctx).GetChildLogger()
	s.log.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("identity", s.identity).Str("device_id", s.deviceID)
	})
	return s, nil
}

// broadcast queues msg on every session except from whose identity may read
// docID. Callers hold the document lock.
func (h *Hub) broadcast(ctx context.Context, from *session, docID string, msg models.Message) {
	h.mu.RLock()
	peers := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		if s != from {
			peers = append(peers, s)
		}
	}
	h.mu.RUnlock()

	allowed := make(map[string]bool)
	for _, peer := range peers {
		ok, checked := allowed[peer.identity]
		if !checked {
			var err error
			ok, err = h.relay.CanRead(ctx, peer.identity, docID)
			if err != nil {
				h.logger.Err(err).
					Str("func", "Hub.broadcast").
					Str("doc_id", docID).
					Str("identity", peer.identity).
					Msg("permission check failed")
				ok = false
			}
			allowed[peer.identity] = ok
		}
		if ok {
			peer.enqueue(msg)
		}
	}
}
