package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-lst-sync/internal/adapter"
	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/crypto"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/models"
)

const waitFor = 2 * time.Second

// ── fake relay ────────────────────────────────────────────────────────────────

type fakeConn struct {
	sent   chan models.Message
	recv   chan models.Message
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		sent:   make(chan models.Message, 64),
		recv:   make(chan models.Message, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Send(ctx context.Context, msg models.Message) error {
	select {
	case <-c.closed:
		return models.ErrTransientNetwork
	default:
	}
	select {
	case c.sent <- msg:
		return nil
	case <-c.closed:
		return models.ErrTransientNetwork
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *fakeConn) Receive(ctx context.Context) (models.Message, error) {
	select {
	case msg := <-c.recv:
		return msg, nil
	case <-c.closed:
		return models.Message{}, models.ErrTransientNetwork
	case <-ctx.Done():
		return models.Message{}, ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// expect returns the next frame of type typ the client sent, skipping others.
func (c *fakeConn) expect(t *testing.T, typ models.MessageType) models.Message {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case msg := <-c.sent:
			if msg.Type == typ {
				return msg
			}
		case <-deadline:
			t.Fatalf("no %s frame sent", typ)
		}
	}
}

type fakeRelay struct {
	conns   chan *fakeConn
	dials   atomic.Int32
	dialErr error
}

func (r *fakeRelay) Dial(context.Context) (adapter.RelayConn, error) {
	r.dials.Add(1)
	if r.dialErr != nil {
		return nil, r.dialErr
	}
	c := newFakeConn()
	r.conns <- c
	return c, nil
}

func (r *fakeRelay) accept(t *testing.T) *fakeConn {
	t.Helper()
	select {
	case c := <-r.conns:
		return c
	case <-time.After(waitFor):
		t.Fatal("client did not dial")
		return nil
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

type syncFixture struct {
	*documentFixture
	relay   *fakeRelay
	cipher  crypto.Cipher
	service *syncService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	docs := newDocumentFixture(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cipher, err := crypto.NewCipher(key)
	require.NoError(t, err)

	cfg := &config.ClientConfig{
		Adapter: config.Adapter{
			AuthToken:      "token",
			AuthTimeout:    time.Second,
			RequestTimeout: time.Second,
		},
		Sync: config.Sync{
			DeviceID:          "device-a",
			CompactionChanges: 100,
			CompactionBytes:   1 << 20,
		},
	}

	relay := &fakeRelay{conns: make(chan *fakeConn, 8)}
	svc := NewSyncService(docs.service, docs.repo, relay, cipher, cfg, logger.Nop()).(*syncService)
	svc.backoffBase = time.Millisecond
	svc.backoffMax = 5 * time.Millisecond

	return &syncFixture{documentFixture: docs, relay: relay, cipher: cipher, service: svc}
}

// run starts the sync loop and stops it when the test ends.
func (f *syncFixture) run(t *testing.T) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(testCtx())
	done := make(chan error, 1)
	go func() { done <- f.service.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("Run did not return after cancel")
		}
	})
	return cancel
}

// connect accepts a connection and completes authentication.
func (f *syncFixture) connect(t *testing.T) *fakeConn {
	t.Helper()
	conn := f.relay.accept(t)
	auth := conn.expect(t, models.MsgAuthenticate)
	assert.Equal(t, "token", auth.Token)
	assert.Equal(t, "device-a", auth.DeviceID)

	conn.recv <- models.Message{Type: models.MsgAuthenticated}
	conn.expect(t, models.MsgRequestDocumentList)
	require.Eventually(t, func() bool { return f.service.State() == SyncSynced }, waitFor, 5*time.Millisecond)
	return conn
}

func (f *syncFixture) seal(t *testing.T, data []byte) []byte {
	t.Helper()
	sealed, err := f.cipher.Encrypt(data)
	require.NoError(t, err)
	return sealed
}

func (f *syncFixture) sealAll(t *testing.T, changes [][]byte) [][]byte {
	t.Helper()
	out := make([][]byte, len(changes))
	for i, ch := range changes {
		out[i] = f.seal(t, ch)
	}
	return out
}

func (f *syncFixture) syncedSeq(t *testing.T, docID string) int64 {
	t.Helper()
	doc, err := f.repo.Get(testCtx(), docID)
	require.NoError(t, err)
	return doc.SyncedSeq
}

func (f *syncFixture) fileIs(t *testing.T, rel, want string) {
	t.Helper()
	abs := filepath.Join(f.root, filepath.FromSlash(rel))
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(abs)
		return err == nil && string(data) == want
	}, waitFor, 5*time.Millisecond)
}

// ── state ─────────────────────────────────────────────────────────────────────

func TestSyncState_String(t *testing.T) {
	tests := []struct {
		state SyncState
		want  string
	}{
		{SyncDisconnected, "disconnected"},
		{SyncAuthenticating, "authenticating"},
		{SyncSynced, "synced"},
		{SyncAuthFailed, "auth_failed"},
		{SyncState(42), "SyncState(42)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

// ── authentication ────────────────────────────────────────────────────────────

func TestSyncService_AuthFailedStopsReconnecting(t *testing.T) {
	f := newSyncFixture(t)
	f.run(t)

	conn := f.relay.accept(t)
	conn.expect(t, models.MsgAuthenticate)
	conn.recv <- models.Message{Type: models.MsgAuthFailed, Reason: "token expired"}

	require.Eventually(t, func() bool { return f.service.State() == SyncAuthFailed }, waitFor, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), f.relay.dials.Load())
}

func TestSyncService_ReconnectsAfterDrop(t *testing.T) {
	f := newSyncFixture(t)
	f.run(t)

	conn := f.connect(t)
	require.NoError(t, conn.Close())

	f.connect(t)
	assert.Equal(t, int32(2), f.relay.dials.Load())
}

func TestSyncService_RetriesFailedDial(t *testing.T) {
	f := newSyncFixture(t)
	f.relay.dialErr = models.ErrTransientNetwork
	f.run(t)

	require.Eventually(t, func() bool { return f.relay.dials.Load() >= 3 }, waitFor, 5*time.Millisecond)
	assert.NotEqual(t, SyncSynced, f.service.State())
}

// ── outbound ──────────────────────────────────────────────────────────────────

func TestSyncService_PushesOutbox(t *testing.T) {
	f := newSyncFixture(t)
	abs := f.write(t, "notes/a.md", "hello\n")
	require.NoError(t, f.documentFixture.service.ApplyLocalFile(testCtx(), abs))
	doc := f.byPath(t, "notes/a.md")

	f.run(t)
	conn := f.connect(t)

	push := conn.expect(t, models.MsgPushChanges)
	assert.Equal(t, doc.DocID, push.DocID)
	assert.Equal(t, "device-a", push.DeviceID)
	assert.NotEmpty(t, push.PushID)
	require.Len(t, push.Changes, 3)
	_, err := f.cipher.Decrypt(push.Changes[0])
	assert.NoError(t, err, "changes leave the device encrypted")

	conn.recv <- models.Message{Type: models.MsgAck, PushID: push.PushID, DocID: doc.DocID, Seq: 3}
	require.Eventually(t, func() bool {
		return f.pending(t, doc.DocID) == 0
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, int64(3), f.syncedSeq(t, doc.DocID), "own changes directly follow the synced sequence")
}

func TestSyncService_AckAfterUnfetchedChangesKeepsSyncedSeq(t *testing.T) {
	f := newSyncFixture(t)
	abs := f.write(t, "notes/a.md", "hello\n")
	require.NoError(t, f.documentFixture.service.ApplyLocalFile(testCtx(), abs))
	doc := f.byPath(t, "notes/a.md")

	f.run(t)
	conn := f.connect(t)

	push := conn.expect(t, models.MsgPushChanges)
	conn.recv <- models.Message{Type: models.MsgAck, PushID: push.PushID, DocID: doc.DocID, Seq: 9, After: 6}
	require.Eventually(t, func() bool {
		return f.pending(t, doc.DocID) == 0
	}, waitFor, 5*time.Millisecond)
	assert.Zero(t, f.syncedSeq(t, doc.DocID))
}

func TestSyncService_RedeliversUnacknowledgedPush(t *testing.T) {
	f := newSyncFixture(t)
	abs := f.write(t, "notes/a.md", "hello\n")
	require.NoError(t, f.documentFixture.service.ApplyLocalFile(testCtx(), abs))
	doc := f.byPath(t, "notes/a.md")

	f.run(t)
	conn := f.connect(t)
	first := conn.expect(t, models.MsgPushChanges)

	// dropped before the ack arrives
	require.NoError(t, conn.Close())
	conn = f.connect(t)
	second := conn.expect(t, models.MsgPushChanges)
	assert.Equal(t, doc.DocID, second.DocID)
	assert.NotEqual(t, first.PushID, second.PushID)

	open := func(push models.Message) [][]byte {
		out := make([][]byte, 0, len(push.Changes))
		for _, sealed := range push.Changes {
			plain, err := f.cipher.Decrypt(sealed)
			require.NoError(t, err)
			out = append(out, plain)
		}
		return out
	}
	assert.Equal(t, open(first), open(second), "the same outbox rows are pushed again")

	conn.recv <- models.Message{Type: models.MsgAck, PushID: second.PushID, DocID: doc.DocID, Seq: 3}
	require.Eventually(t, func() bool {
		return f.pending(t, doc.DocID) == 0
	}, waitFor, 5*time.Millisecond)

	peer := newDocumentFixture(t)
	res, err := peer.service.ApplyRemoteChanges(testCtx(), doc.DocID, open(first), 3)
	require.NoError(t, err)
	assert.Equal(t, RemoteResult{Applied: 3}, res)

	res, err = peer.service.ApplyRemoteChanges(testCtx(), doc.DocID, open(second), 3)
	require.NoError(t, err)
	assert.Equal(t, RemoteResult{}, res, "the redelivered batch changes nothing")
	assert.Equal(t, "hello\n", peer.read(t, "notes/a.md"))
}

func TestSyncService_PushesNewLocalEdits(t *testing.T) {
	f := newSyncFixture(t)
	f.run(t)
	conn := f.connect(t)

	abs := f.write(t, "notes/new.md", "typed while online\n")
	require.NoError(t, f.documentFixture.service.ApplyLocalFile(testCtx(), abs))

	push := conn.expect(t, models.MsgPushChanges)
	assert.Equal(t, f.byPath(t, "notes/new.md").DocID, push.DocID)
}

func TestSyncService_RejectedPushStaysQueued(t *testing.T) {
	f := newSyncFixture(t)
	abs := f.write(t, "notes/a.md", "hello\n")
	require.NoError(t, f.documentFixture.service.ApplyLocalFile(testCtx(), abs))
	doc := f.byPath(t, "notes/a.md")

	f.run(t)
	conn := f.connect(t)

	push := conn.expect(t, models.MsgPushChanges)
	conn.recv <- models.Message{Type: models.MsgError, PushID: push.PushID, DocID: doc.DocID, Reason: "permission denied"}
	f.service.Refresh()
	conn.expect(t, models.MsgRequestDocumentList)

	assert.Equal(t, 3, f.pending(t, doc.DocID))
}

func TestSyncService_CompactionRequest(t *testing.T) {
	f := newSyncFixture(t)
	abs := f.write(t, "notes/a.md", "hello\n")
	require.NoError(t, f.documentFixture.service.ApplyLocalFile(testCtx(), abs))
	doc := f.byPath(t, "notes/a.md")

	f.run(t)
	conn := f.connect(t)
	push := conn.expect(t, models.MsgPushChanges)
	conn.recv <- models.Message{Type: models.MsgAck, PushID: push.PushID, DocID: doc.DocID, Seq: 3}

	conn.recv <- models.Message{Type: models.MsgRequestCompaction, DocID: doc.DocID}
	snap := conn.expect(t, models.MsgPushSnapshot)
	assert.Equal(t, doc.DocID, snap.DocID)
	plain, err := f.cipher.Decrypt(snap.Snapshot)
	require.NoError(t, err)
	assert.NotEmpty(t, plain)

	conn.recv <- models.Message{Type: models.MsgAck, PushID: snap.PushID, DocID: doc.DocID}
	require.Eventually(t, func() bool {
		got, err := f.repo.Get(testCtx(), doc.DocID)
		return err == nil && got.PendingChanges == 0
	}, waitFor, 5*time.Millisecond)
}

func TestSyncService_CompactsLargeHistoryOnConnect(t *testing.T) {
	f := newSyncFixture(t)
	f.service.compactionChanges = 2
	abs := f.write(t, "notes/a.md", "hello\n")
	require.NoError(t, f.documentFixture.service.ApplyLocalFile(testCtx(), abs))
	doc := f.byPath(t, "notes/a.md")

	f.run(t)
	conn := f.connect(t)
	push := conn.expect(t, models.MsgPushChanges)
	conn.recv <- models.Message{Type: models.MsgAck, PushID: push.PushID, DocID: doc.DocID, Seq: 2}

	snap := conn.expect(t, models.MsgPushSnapshot)
	assert.Equal(t, doc.DocID, snap.DocID)
}

// ── inbound ───────────────────────────────────────────────────────────────────

func TestSyncService_AppliesNewChanges(t *testing.T) {
	f := newSyncFixture(t)
	f.run(t)
	conn := f.connect(t)

	_, changes := remoteNote(t, "notes/remote.md", "from b\n")
	conn.recv <- models.Message{
		Type:    models.MsgNewChanges,
		DocID:   "doc-1",
		Changes: f.sealAll(t, changes),
		Seq:     2,
	}

	f.fileIs(t, "notes/remote.md", "from b\n")
	require.Eventually(t, func() bool {
		doc, err := f.repo.Get(testCtx(), "doc-1")
		return err == nil && doc.SyncedSeq == 2
	}, waitFor, 5*time.Millisecond)
}

func TestSyncService_UnauthenticatedBatchStopsSync(t *testing.T) {
	f := newSyncFixture(t)
	_, changes := remoteNote(t, "notes/remote.md", "genuine\n")
	_, err := f.documentFixture.service.ApplyRemoteChanges(testCtx(), "doc-1", changes, 2)
	require.NoError(t, err)

	f.run(t)
	conn := f.connect(t)

	conn.recv <- models.Message{Type: models.MsgNewChanges, DocID: "doc-1", Changes: [][]byte{[]byte("forged")}, Seq: 3, After: 2}

	require.Eventually(t, func() bool { return f.service.State() == SyncAuthFailed }, waitFor, 5*time.Millisecond)
	assert.Equal(t, int64(2), f.syncedSeq(t, "doc-1"), "the batch stays unfetched")
	assert.Equal(t, "genuine\n", f.read(t, "notes/remote.md"))
	assert.Equal(t, int32(1), f.relay.dials.Load())
}

func TestSyncService_UnauthenticatedSnapshotStopsSync(t *testing.T) {
	f := newSyncFixture(t)
	f.run(t)
	conn := f.connect(t)

	conn.recv <- models.Message{
		Type:      models.MsgDocumentList,
		Documents: []models.DocumentInfo{{DocID: "doc-1", LatestSeq: 3, SnapshotSeq: 3}},
	}
	conn.expect(t, models.MsgRequestSnapshot)
	conn.recv <- models.Message{Type: models.MsgSnapshot, DocID: "doc-1", Snapshot: []byte("forged"), Seq: 3}

	require.Eventually(t, func() bool { return f.service.State() == SyncAuthFailed }, waitFor, 5*time.Millisecond)
	_, err := f.repo.Get(testCtx(), "doc-1")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}

func TestSyncService_DropsMalformedFrame(t *testing.T) {
	f := newSyncFixture(t)
	f.run(t)
	conn := f.connect(t)

	_, changes := remoteNote(t, "notes/remote.md", "after junk\n")
	conn.recv <- models.Message{Type: models.MsgNewChanges, Changes: [][]byte{[]byte("no doc")}, Seq: 1}
	conn.recv <- models.Message{Type: models.MsgAck, Seq: 1}
	conn.recv <- models.Message{
		Type:    models.MsgNewChanges,
		DocID:   "doc-1",
		Changes: f.sealAll(t, changes),
		Seq:     2,
	}

	f.fileIs(t, "notes/remote.md", "after junk\n")
	assert.Equal(t, SyncSynced, f.service.State())
	assert.Equal(t, int32(1), f.relay.dials.Load())
}

func TestSyncService_BootstrapsFromSnapshot(t *testing.T) {
	f := newSyncFixture(t)
	f.run(t)
	conn := f.connect(t)

	remote, _ := remoteNote(t, "notes/shared.md", "shared\n")
	state := remote.Save()

	conn.recv <- models.Message{
		Type:      models.MsgDocumentList,
		Documents: []models.DocumentInfo{{DocID: "doc-1", LatestSeq: 3, SnapshotSeq: 3}},
	}
	req := conn.expect(t, models.MsgRequestSnapshot)
	assert.Equal(t, "doc-1", req.DocID)

	conn.recv <- models.Message{Type: models.MsgSnapshot, DocID: "doc-1", Snapshot: f.seal(t, state), Seq: 3}
	f.fileIs(t, "notes/shared.md", "shared\n")
}

func TestSyncService_RequestsChangesAfterSyncedSeq(t *testing.T) {
	f := newSyncFixture(t)
	_, changes := remoteNote(t, "notes/remote.md", "x\n")
	_, err := f.documentFixture.service.ApplyRemoteChanges(testCtx(), "doc-1", changes, 4)
	require.NoError(t, err)

	f.run(t)
	conn := f.connect(t)

	conn.recv <- models.Message{
		Type: models.MsgDocumentList,
		Documents: []models.DocumentInfo{
			{DocID: "doc-1", LatestSeq: 6, SnapshotSeq: 2},
		},
	}
	req := conn.expect(t, models.MsgRequestChanges)
	assert.Equal(t, "doc-1", req.DocID)
	assert.Equal(t, int64(4), req.After)
}

func TestSyncService_GapKeepsSyncedSeq(t *testing.T) {
	f := newSyncFixture(t)
	remote, changes := remoteNote(t, "notes/remote.md", "hello\n")
	_, err := f.documentFixture.service.ApplyRemoteChanges(testCtx(), "doc-1", changes, 5)
	require.NoError(t, err)

	other := loadReplica(t, remote.Save(), "device-c")
	missed := editFile(t, remote, "hello\nfrom b\n")
	late := editFile(t, other, "HI\nhello\n")

	f.run(t)
	conn := f.connect(t)

	// seq 6 never reached this device
	conn.recv <- models.Message{Type: models.MsgNewChanges, DocID: "doc-1", Changes: f.sealAll(t, [][]byte{late}), Seq: 7, After: 6}

	req := conn.expect(t, models.MsgRequestChanges)
	assert.Equal(t, "doc-1", req.DocID)
	assert.Equal(t, int64(5), req.After)
	assert.Equal(t, "HI\nhello\n", f.read(t, "notes/remote.md"), "the batch is merged")
	assert.Equal(t, int64(5), f.syncedSeq(t, "doc-1"))

	conn.recv <- models.Message{Type: models.MsgNewChanges, DocID: "doc-1", Changes: f.sealAll(t, [][]byte{missed, late}), Seq: 7, After: 5}
	f.fileIs(t, "notes/remote.md", "HI\nhello\nfrom b\n")
	require.Eventually(t, func() bool { return f.syncedSeq(t, "doc-1") == 7 }, waitFor, 5*time.Millisecond)
}

func TestSyncService_MergedDocumentIsNotBootstrapped(t *testing.T) {
	f := newSyncFixture(t)
	legacy := legacyDocument(t, "legacy", filepath.ToSlash(filepath.Join(f.root, "notes", "a.md")), "old\n")
	require.NoError(t, f.repo.Create(testCtx(), legacy))
	require.NoError(t, f.repo.Create(testCtx(), legacyDocument(t, "canonical", "notes/a.md", "new\n")))
	_, err := f.documentFixture.service.MigrateLegacyPaths(testCtx())
	require.NoError(t, err)

	f.run(t)
	conn := f.connect(t)

	conn.recv <- models.Message{
		Type: models.MsgDocumentList,
		Documents: []models.DocumentInfo{
			{DocID: "legacy", LatestSeq: 4, SnapshotSeq: 4},
			{DocID: "doc-new", LatestSeq: 1},
		},
	}
	req := conn.expect(t, models.MsgRequestSnapshot)
	assert.Equal(t, "doc-new", req.DocID, "the merged-away id is not bootstrapped")

	// a device still editing the old id reaches the survivor
	remote := loadReplica(t, legacy.State, "device-b")
	change := editFile(t, remote, "old\nmore\n")
	conn.recv <- models.Message{Type: models.MsgNewChanges, DocID: "legacy", Changes: f.sealAll(t, [][]byte{change}), Seq: 5, After: 4}

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(f.root, "notes", "a.md"))
		return err == nil && strings.Contains(string(data), "more")
	}, waitFor, 5*time.Millisecond)

	_, err = f.repo.Get(testCtx(), "legacy")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
	docs, err := f.repo.List(testCtx())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestSyncService_SnapshotRequestTimesOut(t *testing.T) {
	f := newSyncFixture(t)
	f.service.requestTimeout = 20 * time.Millisecond
	f.run(t)
	conn := f.connect(t)

	conn.recv <- models.Message{
		Type:      models.MsgDocumentList,
		Documents: []models.DocumentInfo{{DocID: "doc-1", LatestSeq: 1}},
	}
	conn.expect(t, models.MsgRequestSnapshot)

	// never answered, the session is restarted
	f.connect(t)
}
