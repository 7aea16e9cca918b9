// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-lst-sync/internal/adapter"
	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/crypto"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/internal/utils"
	"github.com/MKhiriev/go-lst-sync/internal/validators"
	"github.com/MKhiriev/go-lst-sync/models"
)

// SyncState is the relay connection state reported by [SyncService].
type SyncState int32

const (
	SyncDisconnected SyncState = iota
	SyncAuthenticating
	SyncSynced
	SyncAuthFailed
)

func (s SyncState) String() string {
	switch s {
	case SyncDisconnected:
		return "disconnected"
	case SyncAuthenticating:
		return "authenticating"
	case SyncSynced:
		return "synced"
	case SyncAuthFailed:
		return "auth_failed"
	}
	return fmt.Sprintf("SyncState(%d)", int32(s))
}

type syncService struct {
	documents DocumentService
	repo      store.LocalDocumentRepository
	dialer    adapter.RelayDialer
	cipher    crypto.Cipher

	token          string
	deviceID       string
	authTimeout    time.Duration
	requestTimeout time.Duration

	compactionChanges int
	compactionBytes   int

	backoffBase time.Duration
	backoffMax  time.Duration

	pushIDs *utils.PushIDGenerator
	frames  validators.Validator
	state   atomic.Int32
	refresh chan struct{}

	logger *logger.Logger
}

// NewSyncService constructs the daemon's [SyncService]. cfg.Sync.DeviceID
// must already be resolved.
func NewSyncService(
	documents DocumentService,
	repo store.LocalDocumentRepository,
	dialer adapter.RelayDialer,
	cipher crypto.Cipher,
	cfg *config.ClientConfig,
	logger *logger.Logger,
) SyncService {
	return &syncService{
		documents:         documents,
		repo:              repo,
		dialer:            dialer,
		cipher:            cipher,
		token:             cfg.Adapter.AuthToken,
		deviceID:          cfg.Sync.DeviceID,
		authTimeout:       cfg.Adapter.AuthTimeout,
		requestTimeout:    cfg.Adapter.RequestTimeout,
		compactionChanges: cfg.Sync.CompactionChanges,
		compactionBytes:   cfg.Sync.CompactionBytes,
		backoffBase:       utils.DefaultBackoffBase,
		backoffMax:        utils.DefaultBackoffMax,
		pushIDs:           utils.NewPushIDGenerator(),
		frames:            validators.NewRelayFrameValidator(),
		refresh:           make(chan struct{}, 1),
		logger:            logger,
	}
}

func (s *syncService) State() SyncState {
	return SyncState(s.state.Load())
}

func (s *syncService) setState(state SyncState) {
	if SyncState(s.state.Swap(int32(state))) != state {
		s.logger.Info().Str("func", "syncService.setState").Stringer("state", state).Msg("sync state changed")
	}
}

func (s *syncService) Refresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

func (s *syncService) Run(ctx context.Context) error {
	backoff := utils.NewBackoff(s.backoffBase, s.backoffMax)

	for {
		err := s.runSession(ctx, backoff)
		if ctx.Err() != nil {
			s.setState(SyncDisconnected)
			return nil
		}

		if errors.Is(err, models.ErrAuthenticationFailure) {
			s.setState(SyncAuthFailed)
			s.logger.Error().Err(err).Str("func", "syncService.Run").Msg("authentication failed, not reconnecting")
			<-ctx.Done()
			return nil
		}

		s.setState(SyncDisconnected)
		delay := backoff.Next()
		s.logger.Warn().Err(err).
			Str("func", "syncService.Run").
			Int("attempt", backoff.Attempt()).
			Dur("retry_in", delay).
			Msg("relay session ended")

		if utils.WaitWithContext(ctx, delay) != nil {
			return nil
		}
	}
}

func (s *syncService) runSession(ctx context.Context, backoff *utils.Backoff) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.setState(SyncAuthenticating)
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err = s.authenticate(ctx, conn); err != nil {
		return err
	}
	s.setState(SyncSynced)
	backoff.Reset()

	frames := make(chan models.Message)
	readErr := make(chan error, 1)
	go func() {
		for {
			msg, err := conn.Receive(ctx)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	sess := newSession(s, conn)
	if err = sess.start(ctx); err != nil {
		return err
	}

	tick := s.requestTimeout / 2
	if tick <= 0 {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err = <-readErr:
			return err
		case msg := <-frames:
			if err = sess.handle(ctx, msg); err != nil {
				return err
			}
		case <-s.documents.LocalChanges():
			if err = sess.flush(ctx); err != nil {
				return err
			}
		case <-s.refresh:
			if err = sess.send(ctx, models.Message{Type: models.MsgRequestDocumentList}); err != nil {
				return err
			}
			if err = sess.flush(ctx); err != nil {
				return err
			}
		case now := <-ticker.C:
			if docID, ok := sess.expiredRequest(now); ok {
				return fmt.Errorf("%w: snapshot of %s not delivered in time", models.ErrTransientNetwork, docID)
			}
		}
	}
}

func (s *syncService) authenticate(ctx context.Context, conn adapter.RelayConn) error {
	authCtx := ctx
	if s.authTimeout > 0 {
		var cancel context.CancelFunc
		authCtx, cancel = context.WithTimeout(ctx, s.authTimeout)
		defer cancel()
	}

	err := conn.Send(authCtx, models.Message{
		Type:     models.MsgAuthenticate,
		Token:    s.token,
		DeviceID: s.deviceID,
	})
	if err != nil {
		return err
	}

	reply, err := conn.Receive(authCtx)
	if err != nil {
		return err
	}

	switch reply.Type {
	case models.MsgAuthenticated:
		return nil
	case models.MsgAuthFailed:
		return fmt.Errorf("%w: %s", models.ErrAuthenticationFailure, reply.Reason)
	}
	return fmt.Errorf("%w: unexpected %q frame during authentication", models.ErrTransientNetwork, reply.Type)
}

// ── session ──────────────────────────────────────────────────────────────────

type inflightPush struct {
	docID    string
	ids      []int64
	snapshot bool
}

// session is the per-connection sync state. It is only used from the
// session loop.
type session struct {
	*syncService
	conn adapter.RelayConn

	inflight         map[string]inflightPush
	sent             map[int64]bool
	snapshotInflight map[string]bool
	rejected         map[string]bool
	requested        map[string]time.Time
	// gaps holds the sequence a RequestChanges was sent after, per document
	gaps map[string]int64
}

func newSession(s *syncService, conn adapter.RelayConn) *session {
	return &session{
		syncService:      s,
		conn:             conn,
		inflight:         make(map[string]inflightPush),
		sent:             make(map[int64]bool),
		snapshotInflight: make(map[string]bool),
		rejected:         make(map[string]bool),
		requested:        make(map[string]time.Time),
		gaps:             make(map[string]int64),
	}
}

// start requests the document list, pushes the outbox and compacts
// documents whose local history outgrew the thresholds.
func (ss *session) start(ctx context.Context) error {
	if err := ss.send(ctx, models.Message{Type: models.MsgRequestDocumentList}); err != nil {
		return err
	}
	if err := ss.flush(ctx); err != nil {
		return err
	}

	docs, err := ss.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing documents: %w", err)
	}
	for _, doc := range docs {
		if err = ss.maybeCompact(ctx, doc.DocID); err != nil {
			return err
		}
	}
	return nil
}

func (ss *session) send(ctx context.Context, msg models.Message) error {
	if ss.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ss.requestTimeout)
		defer cancel()
	}
	return ss.conn.Send(ctx, msg)
}

// flush pushes every queued change that is not in flight yet.
func (ss *session) flush(ctx context.Context) error {
	docIDs, err := ss.repo.PendingDocuments(ctx)
	if err != nil {
		return fmt.Errorf("error listing pending documents: %w", err)
	}

	for _, docID := range docIDs {
		if err = ss.pushChanges(ctx, docID); err != nil {
			return err
		}
	}
	return nil
}

func (ss *session) pushChanges(ctx context.Context, docID string) error {
	pending, err := ss.repo.PendingChanges(ctx, docID)
	if err != nil {
		return fmt.Errorf("error reading outbox: %w", err)
	}

	var (
		batch [][]byte
		ids   []int64
	)
	for _, ch := range pending {
		if ss.sent[ch.ID] {
			continue
		}
		sealed, err := ss.cipher.Encrypt(ch.Payload)
		if err != nil {
			return fmt.Errorf("error encrypting change: %w", err)
		}
		batch = append(batch, sealed)
		ids = append(ids, ch.ID)
	}
	if len(batch) == 0 {
		return nil
	}

	pushID := ss.pushIDs.Generate()
	err = ss.send(ctx, models.Message{
		Type:     models.MsgPushChanges,
		DocID:    docID,
		DeviceID: ss.deviceID,
		PushID:   pushID,
		Changes:  batch,
	})
	if err != nil {
		return err
	}

	ss.inflight[pushID] = inflightPush{docID: docID, ids: ids}
	for _, id := range ids {
		ss.sent[id] = true
	}

	ss.logger.Debug().
		Str("func", "session.pushChanges").
		Str("doc_id", docID).
		Str("push_id", pushID).
		Int("changes", len(batch)).
		Msg("changes pushed")
	return nil
}

// maybeCompact pushes a snapshot once the document's local history since
// the last accepted snapshot reaches a threshold and its outbox is empty.
func (ss *session) maybeCompact(ctx context.Context, docID string) error {
	if ss.snapshotInflight[docID] || ss.rejected[docID] {
		return nil
	}

	doc, err := ss.repo.Get(ctx, docID)
	if err != nil {
		return fmt.Errorf("error getting document: %w", err)
	}
	if doc.PendingChanges < ss.compactionChanges && doc.PendingBytes < ss.compactionBytes {
		return nil
	}

	pending, err := ss.repo.PendingChanges(ctx, docID)
	if err != nil {
		return fmt.Errorf("error reading outbox: %w", err)
	}
	if len(pending) > 0 {
		return nil
	}

	return ss.pushSnapshot(ctx, docID)
}

func (ss *session) pushSnapshot(ctx context.Context, docID string) error {
	if ss.snapshotInflight[docID] {
		return nil
	}

	state, seq, err := ss.documents.Snapshot(ctx, docID)
	if err != nil {
		return err
	}
	sealed, err := ss.cipher.Encrypt(state)
	if err != nil {
		return fmt.Errorf("error encrypting snapshot: %w", err)
	}

	pushID := ss.pushIDs.Generate()
	err = ss.send(ctx, models.Message{
		Type:      models.MsgPushSnapshot,
		DocID:     docID,
		DeviceID:  ss.deviceID,
		PushID:    pushID,
		Snapshot:  sealed,
		CoversSeq: seq,
	})
	if err != nil {
		return err
	}

	ss.inflight[pushID] = inflightPush{docID: docID, snapshot: true}
	ss.snapshotInflight[docID] = true

	ss.logger.Info().
		Str("func", "session.pushSnapshot").
		Str("doc_id", docID).
		Int64("covers_seq", seq).
		Msg("snapshot pushed")
	return nil
}

func (ss *session) requestSnapshot(ctx context.Context, docID string) error {
	if _, ok := ss.requested[docID]; ok {
		return nil
	}
	if err := ss.send(ctx, models.Message{Type: models.MsgRequestSnapshot, DocID: docID}); err != nil {
		return err
	}
	ss.requested[docID] = time.Now()
	return nil
}

func (ss *session) expiredRequest(now time.Time) (string, bool) {
	if ss.requestTimeout <= 0 {
		return "", false
	}
	for docID, at := range ss.requested {
		if now.Sub(at) > ss.requestTimeout {
			return docID, true
		}
	}
	return "", false
}

// ── incoming frames ──────────────────────────────────────────────────────────

func (ss *session) handle(ctx context.Context, msg models.Message) error {
	if err := ss.frames.Validate(ctx, msg); err != nil {
		ss.logger.Warn().Err(err).Str("func", "session.handle").Str("type", string(msg.Type)).Msg("dropping malformed frame")
		return nil
	}

	switch msg.Type {
	case models.MsgDocumentList:
		return ss.onDocumentList(ctx, msg.Documents)
	case models.MsgNewChanges:
		return ss.onNewChanges(ctx, msg)
	case models.MsgSnapshot:
		return ss.onSnapshot(ctx, msg)
	case models.MsgAck:
		return ss.onAck(ctx, msg)
	case models.MsgError:
		ss.onError(msg)
		return nil
	case models.MsgRequestCompaction:
		return ss.pushSnapshot(ctx, msg.DocID)
	case models.MsgAuthFailed:
		return fmt.Errorf("%w: %s", models.ErrAuthenticationFailure, msg.Reason)
	}

	ss.logger.Debug().Str("func", "session.handle").Str("type", string(msg.Type)).Msg("ignoring frame")
	return nil
}

func (ss *session) onDocumentList(ctx context.Context, docs []models.DocumentInfo) error {
	for _, info := range docs {
		doc, err := ss.repo.Get(ctx, info.DocID)
		if errors.Is(err, store.ErrDocumentNotFound) {
			_, merged, err := ss.survivor(ctx, info.DocID)
			if err != nil {
				return err
			}
			if merged {
				continue
			}
			if err = ss.requestSnapshot(ctx, info.DocID); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("error getting document: %w", err)
		}

		if info.LatestSeq <= doc.SyncedSeq {
			continue
		}
		if info.SnapshotSeq > doc.SyncedSeq {
			err = ss.requestSnapshot(ctx, info.DocID)
		} else {
			err = ss.requestChanges(ctx, info.DocID, doc.SyncedSeq)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// onNewChanges merges a batch of remote changes. The synced sequence only
// moves when the batch directly follows it; otherwise the batch is merged and
// the missing range is requested.
func (ss *session) onNewChanges(ctx context.Context, msg models.Message) error {
	log := ss.logger.WithDocument(msg.DocID)

	plain := make([][]byte, 0, len(msg.Changes))
	for _, sealed := range msg.Changes {
		data, err := ss.cipher.Decrypt(sealed)
		if err != nil {
			return fmt.Errorf("error decrypting changes of %s up to seq %d: %w", msg.DocID, msg.Seq, err)
		}
		plain = append(plain, data)
	}

	synced, known, err := ss.syncedSeq(ctx, msg.DocID)
	if err != nil {
		return err
	}
	if !known {
		survivorID, merged, err := ss.survivor(ctx, msg.DocID)
		if err != nil {
			return err
		}
		if merged {
			// the sequence belongs to the merged-away log, not the survivor's
			_, err = ss.documents.ApplyRemoteChanges(ctx, survivorID, plain, 0)
			return err
		}
	}
	seq, gap := msg.Seq, msg.After > synced
	if gap {
		seq = 0
	}

	res, err := ss.documents.ApplyRemoteChanges(ctx, msg.DocID, plain, seq)
	if res.NeedSnapshot || errors.Is(err, models.ErrStoreCorruption) {
		if err != nil {
			log.Warn().Err(err).Str("func", "session.onNewChanges").Msg("requesting snapshot")
		}
		return ss.requestSnapshot(ctx, msg.DocID)
	}
	if err != nil {
		return err
	}

	if !gap {
		delete(ss.gaps, msg.DocID)
		return nil
	}
	log.Debug().
		Str("func", "session.onNewChanges").
		Int64("synced_seq", synced).
		Int64("after", msg.After).
		Msg("changes arrived ahead of the synced sequence")
	return ss.requestChanges(ctx, msg.DocID, synced)
}

// requestChanges asks for the changes that follow after, once per gap.
func (ss *session) requestChanges(ctx context.Context, docID string, after int64) error {
	if last, ok := ss.gaps[docID]; ok && last == after {
		return nil
	}
	if err := ss.send(ctx, models.Message{Type: models.MsgRequestChanges, DocID: docID, After: after}); err != nil {
		return err
	}
	ss.gaps[docID] = after
	return nil
}

// syncedSeq returns the relay sequence up to which the document's changes
// were fetched. It is zero for documents not stored yet.
func (ss *session) syncedSeq(ctx context.Context, docID string) (int64, bool, error) {
	doc, err := ss.repo.Get(ctx, docID)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("error getting document: %w", err)
	}
	return doc.SyncedSeq, true, nil
}

// redirect points a snapshot of a document merged away by path migration at
// its survivor. The sequence of the merged-away log means nothing there.
func (ss *session) redirect(ctx context.Context, docID string, seq int64) (string, int64, error) {
	_, known, err := ss.syncedSeq(ctx, docID)
	if err != nil || known {
		return docID, seq, err
	}
	survivorID, merged, err := ss.survivor(ctx, docID)
	if err != nil || !merged {
		return docID, seq, err
	}
	return survivorID, 0, nil
}

// survivor returns the document a path migration merged docID into.
func (ss *session) survivor(ctx context.Context, docID string) (string, bool, error) {
	survivorID, err := ss.repo.MergedInto(ctx, docID)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error resolving merged document: %w", err)
	}
	return survivorID, true, nil
}

func (ss *session) onSnapshot(ctx context.Context, msg models.Message) error {
	delete(ss.requested, msg.DocID)
	if len(msg.Snapshot) == 0 {
		return nil
	}

	log := ss.logger.WithDocument(msg.DocID)
	data, err := ss.cipher.Decrypt(msg.Snapshot)
	if err != nil {
		return fmt.Errorf("error decrypting snapshot of %s at seq %d: %w", msg.DocID, msg.Seq, err)
	}

	docID, seq, err := ss.redirect(ctx, msg.DocID, msg.Seq)
	if err != nil {
		return err
	}

	err = ss.documents.ApplySnapshot(ctx, docID, data, seq)
	if errors.Is(err, models.ErrStoreCorruption) {
		log.Error().Err(err).Str("func", "session.onSnapshot").Msg("snapshot cannot be applied")
		return nil
	}
	return err
}

func (ss *session) onAck(ctx context.Context, msg models.Message) error {
	push, ok := ss.inflight[msg.PushID]
	if !ok {
		return nil
	}
	delete(ss.inflight, msg.PushID)

	if push.snapshot {
		delete(ss.snapshotInflight, push.docID)
		if err := ss.repo.ResetPending(ctx, push.docID); err != nil {
			return fmt.Errorf("error resetting pending counters: %w", err)
		}
		return nil
	}

	if err := ss.repo.AckChanges(ctx, push.ids...); err != nil {
		return fmt.Errorf("error acknowledging changes: %w", err)
	}
	for _, id := range push.ids {
		delete(ss.sent, id)
	}

	// the pushed changes hold seqs (After, Seq] and are already merged here
	synced, _, err := ss.syncedSeq(ctx, push.docID)
	if err != nil {
		return err
	}
	if msg.Seq > synced && msg.After <= synced {
		if err = ss.repo.SetSyncedSeq(ctx, push.docID, msg.Seq); err != nil {
			return fmt.Errorf("error saving synced sequence: %w", err)
		}
	}
	return ss.maybeCompact(ctx, push.docID)
}

// onError drops a rejected push. Its changes stay queued and are retried on
// the next connection; a rejected snapshot is not retried on this one.
func (ss *session) onError(msg models.Message) {
	log := ss.logger.Warn().
		Str("func", "session.onError").
		Str("doc_id", msg.DocID).
		Str("push_id", msg.PushID).
		Str("reason", msg.Reason)

	push, ok := ss.inflight[msg.PushID]
	if !ok {
		log.Msg("relay reported an error")
		return
	}
	delete(ss.inflight, msg.PushID)

	if push.snapshot {
		delete(ss.snapshotInflight, push.docID)
		ss.rejected[push.docID] = true
	}
	log.Bool("snapshot", push.snapshot).Msg("relay rejected push")
}
