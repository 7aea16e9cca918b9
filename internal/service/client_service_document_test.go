package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/automerge/automerge-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/converter"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/internal/utils"
	"github.com/MKhiriev/go-lst-sync/models"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type documentFixture struct {
	root    string
	repo    store.LocalDocumentRepository
	service *documentService
}

func testCtx() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	root := t.TempDir()

	storages, err := store.NewClientStorages(testCtx(), config.DB{DSN: filepath.Join(t.TempDir(), "syncd.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	cfg := config.Sync{
		ContentDir:         root,
		MaxFileSize:        1 << 20,
		CausalBufferLimit:  2,
		CausalBufferMaxAge: time.Minute,
		CompactionChanges:  100,
	}
	svc := NewDocumentService(storages.Documents, cfg, "device-a", "alice", logger.Nop()).(*documentService)

	return &documentFixture{root: root, repo: storages.Documents, service: svc}
}

func (f *documentFixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	abs := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return abs
}

func (f *documentFixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func (f *documentFixture) pending(t *testing.T, docID string) int {
	t.Helper()
	changes, err := f.repo.PendingChanges(testCtx(), docID)
	require.NoError(t, err)
	return len(changes)
}

func (f *documentFixture) byPath(t *testing.T, rel string) models.Document {
	t.Helper()
	doc, err := f.repo.GetByPath(testCtx(), f.root, rel)
	require.NoError(t, err)
	return doc
}

// remoteNote builds the kind, content and path changes another device
// produces when it creates a note at rel.
func remoteNote(t *testing.T, rel, content string) (*automerge.Doc, [][]byte) {
	t.Helper()
	remote := replicaOf(t, "device-b")
	return remote, [][]byte{
		record(t, remote, func(d *automerge.Doc) (bool, error) { return converter.SetKind(d, models.DocTypeNote) }),
		editFile(t, remote, content),
		record(t, remote, func(d *automerge.Doc) (bool, error) { return converter.SetPath(d, rel) }),
	}
}

func replicaOf(t *testing.T, device string) *automerge.Doc {
	t.Helper()
	replica, err := converter.NewDoc(converter.ActorID(device))
	require.NoError(t, err)
	return replica
}

func loadReplica(t *testing.T, state []byte, device string) *automerge.Doc {
	t.Helper()
	replica, err := converter.LoadDoc(state, converter.ActorID(device))
	require.NoError(t, err)
	return replica
}

// record runs edit on replica and returns the one change it committed.
func record(t *testing.T, replica *automerge.Doc, edit func(*automerge.Doc) (bool, error)) []byte {
	t.Helper()
	base := replica.Heads()
	ok, err := edit(replica)
	require.NoError(t, err)
	require.True(t, ok, "expected a change")

	raw, err := converter.ChangesSince(replica, base)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	return raw[0]
}

func editFile(t *testing.T, replica *automerge.Doc, content string) []byte {
	t.Helper()
	return record(t, replica, func(d *automerge.Doc) (bool, error) { return converter.ApplyFile(d, content) })
}

func rendered(t *testing.T, state []byte) string {
	t.Helper()
	out, err := converter.Materialize(loadReplica(t, state, "x"))
	require.NoError(t, err)
	return out
}

func drained(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// ── local edits ───────────────────────────────────────────────────────────────

func TestDocumentService_ApplyLocalFile_CreatesDocument(t *testing.T) {
	f := newDocumentFixture(t)
	abs := f.write(t, "notes/hello.md", "hello\n")

	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))

	doc := f.byPath(t, "notes/hello.md")
	assert.Equal(t, models.DocTypeNote, doc.DocType)
	assert.Equal(t, "alice", doc.ACL.Owner)
	assert.Equal(t, utils.ContentHash([]byte("hello\n")), doc.ContentHash)
	assert.Equal(t, 3, f.pending(t, doc.DocID), "kind, content and path changes are queued")
	assert.True(t, drained(f.service.LocalChanges()))

	assert.Equal(t, "hello\n", rendered(t, doc.State))
	assert.Equal(t, "notes/hello.md", converter.Path(loadReplica(t, doc.State, "x")))
}

func TestDocumentService_ApplyLocalFile_Unchanged(t *testing.T) {
	f := newDocumentFixture(t)
	abs := f.write(t, "lists/groceries.md", "- [ ] milk\n")

	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))
	doc := f.byPath(t, "lists/groceries.md")
	assert.Equal(t, models.DocTypeList, doc.DocType)
	drained(f.service.LocalChanges())

	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))
	assert.Equal(t, 3, f.pending(t, doc.DocID))
	assert.False(t, drained(f.service.LocalChanges()))
}

func TestDocumentService_ApplyLocalFile_Edit(t *testing.T) {
	f := newDocumentFixture(t)
	abs := f.write(t, "notes/a.md", "one\n")
	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))

	f.write(t, "notes/a.md", "one\ntwo\n")
	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))

	doc := f.byPath(t, "notes/a.md")
	assert.Equal(t, 4, f.pending(t, doc.DocID))
	assert.Equal(t, utils.ContentHash([]byte("one\ntwo\n")), doc.ContentHash)
}

func TestDocumentService_ApplyLocalFile_Skipped(t *testing.T) {
	tests := []struct {
		name string
		rel  string
	}{
		{name: "hidden directory", rel: ".lst-sync/state.md"},
		{name: "editor swap file", rel: "notes/a.md.swp"},
		{name: "not markdown", rel: "notes/a.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t)
			abs := f.write(t, tt.rel, "text\n")

			require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))

			docs, err := f.repo.List(testCtx())
			require.NoError(t, err)
			assert.Empty(t, docs)
		})
	}
}

func TestDocumentService_ApplyLocalFile_TooLarge(t *testing.T) {
	f := newDocumentFixture(t)
	f.service.maxFileSize = 4
	abs := f.write(t, "notes/big.md", "too large\n")

	err := f.service.ApplyLocalFile(testCtx(), abs)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDocumentService_ApplyLocalFile_Unparseable(t *testing.T) {
	f := newDocumentFixture(t)
	abs := f.write(t, "lists/broken.md", "not an item\n")

	err := f.service.ApplyLocalFile(testCtx(), abs)
	assert.ErrorIs(t, err, models.ErrConversion)
}

func TestDocumentService_ApplyLocalRemove(t *testing.T) {
	f := newDocumentFixture(t)
	abs := f.write(t, "notes/a.md", "gone soon\n")
	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))
	drained(f.service.LocalChanges())

	require.NoError(t, os.Remove(abs))
	require.NoError(t, f.service.ApplyLocalRemove(testCtx(), abs))

	doc := f.byPath(t, "notes/a.md")
	assert.Empty(t, doc.ContentHash)
	assert.Equal(t, 4, f.pending(t, doc.DocID))
	assert.True(t, drained(f.service.LocalChanges()))
	assert.True(t, converter.IsDeleted(loadReplica(t, doc.State, "x")))

	// unknown paths are ignored
	require.NoError(t, f.service.ApplyLocalRemove(testCtx(), filepath.Join(f.root, "notes/other.md")))
}

func TestDocumentService_ApplyLocalFile_MissingFileIsRemove(t *testing.T) {
	f := newDocumentFixture(t)
	abs := f.write(t, "notes/a.md", "x\n")
	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))
	require.NoError(t, os.Remove(abs))

	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))

	assert.Empty(t, f.byPath(t, "notes/a.md").ContentHash)
}

// ── remote changes ────────────────────────────────────────────────────────────

func TestDocumentService_ApplyRemoteChanges_Bootstrap(t *testing.T) {
	f := newDocumentFixture(t)
	_, changes := remoteNote(t, "notes/remote.md", "from b\n")

	res, err := f.service.ApplyRemoteChanges(testCtx(), "doc-1", changes, 7)
	require.NoError(t, err)
	assert.Equal(t, RemoteResult{Applied: 3}, res)

	assert.Equal(t, "from b\n", f.read(t, "notes/remote.md"))

	doc, err := f.repo.Get(testCtx(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "notes/remote.md", doc.CanonicalPath)
	assert.Equal(t, models.DocTypeNote, doc.DocType)
	assert.Equal(t, int64(7), doc.SyncedSeq)
	assert.Zero(t, f.pending(t, "doc-1"), "remote changes are never queued")
}

func TestDocumentService_ApplyRemoteChanges_OutOfOrder(t *testing.T) {
	f := newDocumentFixture(t)
	_, changes := remoteNote(t, "notes/remote.md", "late\n")

	res, err := f.service.ApplyRemoteChanges(testCtx(), "doc-1", changes[1:], 2)
	require.NoError(t, err)
	assert.Equal(t, RemoteResult{Buffered: 2}, res)

	_, err = f.repo.Get(testCtx(), "doc-1")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)

	res, err = f.service.ApplyRemoteChanges(testCtx(), "doc-1", changes[:1], 2)
	require.NoError(t, err)
	assert.Equal(t, RemoteResult{Applied: 3}, res)
	assert.Equal(t, "late\n", f.read(t, "notes/remote.md"))
}

func TestDocumentService_ApplyRemoteChanges_BufferOverflow(t *testing.T) {
	f := newDocumentFixture(t)
	remote, changes := remoteNote(t, "notes/remote.md", "a\n")
	more := editFile(t, remote, "a\nb\n")
	last := editFile(t, remote, "a\nb\nc\n")

	res, err := f.service.ApplyRemoteChanges(testCtx(), "doc-1", [][]byte{changes[1], changes[2], more, last}, 4)
	require.NoError(t, err)
	assert.True(t, res.NeedSnapshot)
	assert.Zero(t, res.Buffered)

	// the dropped buffer is not replayed
	res, err = f.service.ApplyRemoteChanges(testCtx(), "doc-1", changes[:1], 4)
	require.NoError(t, err)
	assert.Equal(t, RemoteResult{Applied: 1}, res)
}

func TestDocumentService_ApplyRemoteChanges_BufferExpires(t *testing.T) {
	f := newDocumentFixture(t)
	now := time.Now()
	f.service.now = func() time.Time { return now }
	_, changes := remoteNote(t, "notes/remote.md", "a\n")

	res, err := f.service.ApplyRemoteChanges(testCtx(), "doc-1", changes[1:], 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Buffered)

	now = now.Add(2 * time.Minute)
	res, err = f.service.ApplyRemoteChanges(testCtx(), "doc-1", nil, 2)
	require.NoError(t, err)
	assert.True(t, res.NeedSnapshot)
}

func TestDocumentService_ApplyRemoteChanges_Duplicates(t *testing.T) {
	f := newDocumentFixture(t)
	_, changes := remoteNote(t, "notes/remote.md", "once\n")

	_, err := f.service.ApplyRemoteChanges(testCtx(), "doc-1", changes, 2)
	require.NoError(t, err)

	res, err := f.service.ApplyRemoteChanges(testCtx(), "doc-1", changes, 2)
	require.NoError(t, err)
	assert.Equal(t, RemoteResult{}, res)
	assert.Equal(t, "once\n", f.read(t, "notes/remote.md"))
}

func TestDocumentService_ApplyRemoteChanges_KeepsUnsyncedDiskEdit(t *testing.T) {
	f := newDocumentFixture(t)
	abs := f.write(t, "notes/a.md", "one\n")
	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))
	doc := f.byPath(t, "notes/a.md")

	remote := loadReplica(t, doc.State, "device-b")
	change := editFile(t, remote, "one\ntwo\n")

	// edited on disk, event not delivered yet
	f.write(t, "notes/a.md", "zero\none\n")

	_, err := f.service.ApplyRemoteChanges(testCtx(), doc.DocID, [][]byte{change}, 3)
	require.NoError(t, err)

	got := f.read(t, "notes/a.md")
	assert.Equal(t, "zero\none\ntwo\n", got)
	assert.Equal(t, 4, f.pending(t, doc.DocID), "the disk edit is queued")
}

func TestDocumentService_ApplyRemoteChanges_Delete(t *testing.T) {
	f := newDocumentFixture(t)
	remote, changes := remoteNote(t, "notes/remote.md", "bye\n")
	_, err := f.service.ApplyRemoteChanges(testCtx(), "doc-1", changes, 2)
	require.NoError(t, err)

	tombstone := record(t, remote, converter.MarkDeleted)
	_, err = f.service.ApplyRemoteChanges(testCtx(), "doc-1", [][]byte{tombstone}, 3)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(f.root, "notes", "remote.md"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	doc, err := f.repo.Get(testCtx(), "doc-1")
	require.NoError(t, err)
	assert.Empty(t, doc.ContentHash)
	assert.Equal(t, int64(3), doc.SyncedSeq)
}

func TestDocumentService_ApplyRemoteChanges_PathCollision(t *testing.T) {
	f := newDocumentFixture(t)
	f.write(t, "notes/remote.md", "mine\n")
	f.write(t, "notes/theirs.md", "also mine\n")
	_, changes := remoteNote(t, "notes/remote.md", "theirs\n")

	_, err := f.service.ApplyRemoteChanges(testCtx(), "d0c1d0c1-0000-4000-8000-000000000000", changes, 2)
	require.NoError(t, err)

	assert.Equal(t, "mine\n", f.read(t, "notes/remote.md"))
	assert.Equal(t, "also mine\n", f.read(t, "notes/theirs.md"))
	assert.Equal(t, "theirs\n", f.read(t, "notes/theirs_d0c1d0c1.md"))
}

func TestDocumentService_ApplyRemoteChanges_CorruptState(t *testing.T) {
	f := newDocumentFixture(t)
	require.NoError(t, f.repo.Create(testCtx(), models.Document{
		DocID:         "doc-1",
		CanonicalPath: "notes/a.md",
		DocType:       models.DocTypeNote,
		State:         []byte("garbage"),
	}))
	_, changes := remoteNote(t, "notes/a.md", "x\n")

	res, err := f.service.ApplyRemoteChanges(testCtx(), "doc-1", changes, 2)
	assert.ErrorIs(t, err, models.ErrStoreCorruption)
	assert.True(t, res.NeedSnapshot)
}

// ── snapshots ─────────────────────────────────────────────────────────────────

func TestDocumentService_ApplySnapshot(t *testing.T) {
	f := newDocumentFixture(t)
	remote, _ := remoteNote(t, "notes/snap.md", "snapshot body\n")

	require.NoError(t, f.service.ApplySnapshot(testCtx(), "doc-1", remote.Save(), 12))

	assert.Equal(t, "snapshot body\n", f.read(t, "notes/snap.md"))
	snap, seq, err := f.service.Snapshot(testCtx(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), seq)
	assert.Equal(t, "snapshot body\n", rendered(t, snap))
}

func TestDocumentService_ApplySnapshot_MergesLocalEdits(t *testing.T) {
	f := newDocumentFixture(t)
	abs := f.write(t, "notes/a.md", "base\n")
	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))
	doc := f.byPath(t, "notes/a.md")

	remote := loadReplica(t, doc.State, "device-b")
	editFile(t, remote, "base\nremote\n")
	state := remote.Save()

	f.write(t, "notes/a.md", "local\nbase\n")
	require.NoError(t, f.service.ApplyLocalFile(testCtx(), abs))

	require.NoError(t, f.service.ApplySnapshot(testCtx(), doc.DocID, state, 5))
	assert.Equal(t, "local\nbase\nremote\n", f.read(t, "notes/a.md"))
}

func TestDocumentService_ApplySnapshot_ReplacesCorruptState(t *testing.T) {
	f := newDocumentFixture(t)
	require.NoError(t, f.repo.Create(testCtx(), models.Document{
		DocID:         "doc-1",
		CanonicalPath: "notes/a.md",
		DocType:       models.DocTypeNote,
		State:         []byte("garbage"),
	}))
	remote, _ := remoteNote(t, "notes/a.md", "restored\n")

	require.NoError(t, f.service.ApplySnapshot(testCtx(), "doc-1", remote.Save(), 3))
	assert.Equal(t, "restored\n", f.read(t, "notes/a.md"))
}

func TestDocumentService_ApplySnapshot_Invalid(t *testing.T) {
	f := newDocumentFixture(t)
	err := f.service.ApplySnapshot(testCtx(), "doc-1", []byte("nope"), 1)
	assert.ErrorIs(t, err, models.ErrStoreCorruption)
}

func TestDocumentService_Snapshot_NotFound(t *testing.T) {
	f := newDocumentFixture(t)
	_, _, err := f.service.Snapshot(testCtx(), "missing")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)
}

// ── migration and reconcile ───────────────────────────────────────────────────

func legacyDocument(t *testing.T, id, path, text string) models.Document {
	t.Helper()
	replica := replicaOf(t, id)
	record(t, replica, func(d *automerge.Doc) (bool, error) { return converter.SetKind(d, models.DocTypeNote) })
	editFile(t, replica, text)
	return models.Document{
		DocID:         id,
		CanonicalPath: path,
		DocType:       models.DocTypeNote,
		ContentHash:   utils.ContentHash([]byte(text)),
		State:         replica.Save(),
	}
}

func TestDocumentService_MigrateLegacyPaths_Rename(t *testing.T) {
	f := newDocumentFixture(t)
	legacyPath := filepath.ToSlash(filepath.Join(f.root, "notes", "a.md"))
	require.NoError(t, f.repo.Create(testCtx(), legacyDocument(t, "legacy", legacyPath, "old\n")))

	n, err := f.service.MigrateLegacyPaths(testCtx())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	doc, err := f.repo.Get(testCtx(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, "notes/a.md", doc.CanonicalPath)

	n, err = f.service.MigrateLegacyPaths(testCtx())
	require.NoError(t, err)
	assert.Zero(t, n, "migration is idempotent")
}

func TestDocumentService_MigrateLegacyPaths_MergesDuplicate(t *testing.T) {
	f := newDocumentFixture(t)
	legacyPath := filepath.ToSlash(filepath.Join(f.root, "notes", "a.md"))
	require.NoError(t, f.repo.Create(testCtx(), legacyDocument(t, "legacy", legacyPath, "old\n")))
	require.NoError(t, f.repo.Create(testCtx(), legacyDocument(t, "canonical", "notes/a.md", "new\n")))

	n, err := f.service.MigrateLegacyPaths(testCtx())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.repo.Get(testCtx(), "legacy")
	assert.ErrorIs(t, err, store.ErrDocumentNotFound)

	survivor, err := f.repo.Get(testCtx(), "canonical")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, survivor.PendingChanges, 100, "the merge is pushed as a snapshot")

	merged := rendered(t, survivor.State)
	assert.Contains(t, merged, "old")
	assert.Contains(t, merged, "new")
}

func TestDocumentService_Reconcile(t *testing.T) {
	f := newDocumentFixture(t)
	kept := f.write(t, "notes/kept.md", "kept\n")
	gone := f.write(t, "lists/gone.md", "- [ ] x\n")
	require.NoError(t, f.service.ApplyLocalFile(testCtx(), kept))
	require.NoError(t, f.service.ApplyLocalFile(testCtx(), gone))

	// offline edits
	require.NoError(t, os.Remove(gone))
	f.write(t, "notes/kept.md", "kept\nedited\n")
	f.write(t, "notes/new.md", "new\n")

	require.NoError(t, f.service.Reconcile(testCtx()))

	assert.Equal(t, utils.ContentHash([]byte("kept\nedited\n")), f.byPath(t, "notes/kept.md").ContentHash)
	assert.Empty(t, f.byPath(t, "lists/gone.md").ContentHash)
	assert.NotEmpty(t, f.byPath(t, "notes/new.md").DocID)
}
