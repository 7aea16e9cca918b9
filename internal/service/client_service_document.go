// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/automerge/automerge-go"

	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/converter"
	"github.com/MKhiriev/go-lst-sync/internal/docpath"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/internal/utils"
	"github.com/MKhiriev/go-lst-sync/internal/watcher"
	"github.com/MKhiriev/go-lst-sync/models"
)

const fileMode = 0o644

// causalBuffer holds remote changes of one document that arrived before
// their dependencies.
type causalBuffer struct {
	changes []*automerge.Change
	since   time.Time
}

type documentService struct {
	documents store.LocalDocumentRepository

	root  string
	actor string
	owner string

	maxFileSize       int64
	bufferLimit       int
	bufferMaxAge      time.Duration
	compactionChanges int

	locks *utils.KeyedMutex

	bufMu   sync.Mutex
	buffers map[string]*causalBuffer

	localChanges chan struct{}
	now          func() time.Time

	logger *logger.Logger
}

// NewDocumentService constructs the daemon's [DocumentService]. deviceID
// names the replica actor of every document; owner is recorded as the owner
// of documents created on this device.
func NewDocumentService(documents store.LocalDocumentRepository, cfg config.Sync, deviceID, owner string, logger *logger.Logger) DocumentService {
	return &documentService{
		documents:         documents,
		root:              cfg.ContentDir,
		actor:             converter.ActorID(deviceID),
		owner:             owner,
		maxFileSize:       cfg.MaxFileSize,
		bufferLimit:       cfg.CausalBufferLimit,
		bufferMaxAge:      cfg.CausalBufferMaxAge,
		compactionChanges: cfg.CompactionChanges,
		locks:             utils.NewKeyedMutex(),
		buffers:           make(map[string]*causalBuffer),
		localChanges:      make(chan struct{}, 1),
		now:               time.Now,
		logger:            logger,
	}
}

func (s *documentService) LocalChanges() <-chan struct{} {
	return s.localChanges
}

func (s *documentService) notify() {
	select {
	case s.localChanges <- struct{}{}:
	default:
	}
}

// ── local edits ──────────────────────────────────────────────────────────────

func (s *documentService) ApplyLocalFile(ctx context.Context, absPath string) error {
	canonical, err := docpath.Canonicalize(s.root, absPath)
	if err != nil {
		return fmt.Errorf("error canonicalizing %s: %w", absPath, err)
	}
	if docpath.IsIgnored(canonical) || !watcher.IsDocumentFile(canonical) {
		return nil
	}

	data, err := s.readFile(canonical)
	if errors.Is(err, fs.ErrNotExist) {
		return s.ApplyLocalRemove(ctx, absPath)
	}
	if err != nil {
		return err
	}

	docID, err := s.resolveDocID(ctx, canonical, string(data))
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(docID)
	defer unlock()

	doc, err := s.documents.Get(ctx, docID)
	exists := err == nil
	if err != nil && !errors.Is(err, store.ErrDocumentNotFound) {
		return fmt.Errorf("error getting document: %w", err)
	}

	hash := utils.ContentHash(data)
	if exists && doc.ContentHash == hash && doc.CanonicalPath == canonical {
		return nil
	}

	var replica *automerge.Doc
	if exists {
		replica, err = s.load(doc)
	} else {
		replica, err = s.newReplica()
		doc = models.Document{
			DocID:   docID,
			DocType: docpath.Kind(canonical),
			ACL:     models.ACL{Owner: s.owner},
		}
	}
	if err != nil {
		return err
	}

	base := replica.Heads()
	if !exists {
		if _, err = converter.SetKind(replica, doc.DocType); err != nil {
			return err
		}
	}

	changes, err := s.ingest(replica, base, canonical, string(data))
	if err != nil {
		return err
	}

	s.fillState(&doc, replica)
	doc.CanonicalPath = canonical
	doc.ContentHash = hash

	if exists {
		err = s.documents.SaveLocalChange(ctx, doc, changes...)
	} else {
		err = s.documents.Create(ctx, doc, changes...)
	}
	if err != nil {
		return fmt.Errorf("error saving local change: %w", err)
	}

	s.logger.Debug().
		Str("func", "documentService.ApplyLocalFile").
		Str("doc_id", docID).
		Str("path", canonical).
		Int("changes", len(changes)).
		Msg("local edit recorded")

	if len(changes) > 0 {
		s.notify()
	}
	return nil
}

func (s *documentService) ApplyLocalRemove(ctx context.Context, absPath string) error {
	canonical, err := docpath.Canonicalize(s.root, absPath)
	if err != nil {
		return fmt.Errorf("error canonicalizing %s: %w", absPath, err)
	}

	found, err := s.documents.GetByPath(ctx, s.root, canonical)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error getting document by path: %w", err)
	}

	unlock := s.locks.Lock(found.DocID)
	defer unlock()

	// recreated before the event settled
	if _, err = os.Stat(s.abs(canonical)); err == nil {
		return nil
	}

	doc, err := s.documents.Get(ctx, found.DocID)
	if err != nil {
		return fmt.Errorf("error getting document: %w", err)
	}
	replica, err := s.load(doc)
	if err != nil {
		return err
	}

	base := replica.Heads()
	ok, err := converter.MarkDeleted(replica)
	if err != nil || !ok {
		return err
	}
	changes, err := converter.ChangesSince(replica, base)
	if err != nil {
		return err
	}

	s.fillState(&doc, replica)
	doc.ContentHash = ""
	if err = s.documents.SaveLocalChange(ctx, doc, changes...); err != nil {
		return fmt.Errorf("error saving removal: %w", err)
	}

	s.logger.Info().
		Str("func", "documentService.ApplyLocalRemove").
		Str("doc_id", doc.DocID).
		Str("path", canonical).
		Msg("document file removed")
	s.notify()
	return nil
}

// resolveDocID finds the document a file belongs to: the record at its
// path, then the id in its front matter, then the id derived from its path.
func (s *documentService) resolveDocID(ctx context.Context, canonical, content string) (string, error) {
	doc, err := s.documents.GetByPath(ctx, s.root, canonical)
	if err == nil {
		return doc.DocID, nil
	}
	if !errors.Is(err, store.ErrDocumentNotFound) {
		return "", fmt.Errorf("error getting document by path: %w", err)
	}

	if hint := converter.DocIDHint(content); hint != "" {
		return hint, nil
	}
	return docpath.DocID(docpath.Kind(canonical), canonical), nil
}

// ingest diffs content into the replica and returns the encoded changes
// made since base.
func (s *documentService) ingest(replica *automerge.Doc, base []automerge.ChangeHash, canonical, content string) ([][]byte, error) {
	if _, err := converter.ApplyFile(replica, content); err != nil {
		return nil, err
	}
	if _, err := converter.SetPath(replica, canonical); err != nil {
		return nil, err
	}
	return converter.ChangesSince(replica, base)
}

// captureDiskEdit records an edit of the document's file that the watcher
// has not delivered yet, so a remote write never overwrites it. It reports
// false when the file holds content that cannot be merged and must not be
// overwritten.
func (s *documentService) captureDiskEdit(ctx context.Context, doc *models.Document, replica *automerge.Doc) (bool, error) {
	if doc.CanonicalPath == "" || doc.ContentHash == "" {
		return true, nil
	}

	data, err := s.readFile(doc.CanonicalPath)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrFileTooLarge) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	hash := utils.ContentHash(data)
	if hash == doc.ContentHash {
		return true, nil
	}

	metaPath := doc.CanonicalPath
	if canonical, err := docpath.Canonicalize(s.root, metaPath); err == nil {
		metaPath = canonical
	}

	changes, err := s.ingest(replica, replica.Heads(), metaPath, string(data))
	if errors.Is(err, models.ErrConversion) {
		s.logger.Warn().Err(err).
			Str("func", "documentService.captureDiskEdit").
			Str("doc_id", doc.DocID).
			Msg("file cannot be parsed, leaving it untouched")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.fillState(doc, replica)
	doc.ContentHash = hash
	if err = s.documents.SaveLocalChange(ctx, *doc, changes...); err != nil {
		return false, fmt.Errorf("error saving local change: %w", err)
	}
	if len(changes) > 0 {
		s.notify()
	}
	return true, nil
}

// ── remote changes ───────────────────────────────────────────────────────────

func (s *documentService) ApplyRemoteChanges(ctx context.Context, docID string, changes [][]byte, seq int64) (RemoteResult, error) {
	log := s.logger.WithDocument(docID)

	unlock := s.locks.Lock(docID)
	defer unlock()

	decoded := make([]*automerge.Change, 0, len(changes))
	for _, raw := range changes {
		chs, err := converter.DecodeChanges(raw)
		if err != nil {
			log.Warn().Err(err).Str("func", "documentService.ApplyRemoteChanges").Msg("skipping undecodable change")
			continue
		}
		decoded = append(decoded, chs...)
	}

	doc, replica, writable, err := s.open(ctx, docID)
	if errors.Is(err, models.ErrStoreCorruption) {
		return RemoteResult{NeedSnapshot: true}, err
	}
	if err != nil {
		return RemoteResult{}, err
	}

	result := s.applyBuffered(docID, replica, decoded)
	log.Debug().
		Str("func", "documentService.ApplyRemoteChanges").
		Int("applied", result.Applied).
		Int("buffered", result.Buffered).
		Int64("seq", seq).
		Msg("remote changes merged")

	if result.Applied > 0 {
		if err = s.store(ctx, &doc, replica, writable); err != nil {
			return result, err
		}
	}

	// nothing of an unknown document is stored until a change applies
	if result.Buffered == 0 && seq > 0 && doc.State != nil {
		if err = s.documents.SetSyncedSeq(ctx, docID, seq); err != nil {
			return result, fmt.Errorf("error saving synced sequence: %w", err)
		}
	}

	return result, nil
}

func (s *documentService) ApplySnapshot(ctx context.Context, docID string, snapshot []byte, seq int64) error {
	unlock := s.locks.Lock(docID)
	defer unlock()

	remote, err := converter.LoadDoc(snapshot, s.actor)
	if err != nil {
		return fmt.Errorf("%w: remote snapshot: %w", models.ErrStoreCorruption, err)
	}

	doc, replica, writable, err := s.open(ctx, docID)
	switch {
	case errors.Is(err, models.ErrStoreCorruption):
		s.logger.Warn().Err(err).
			Str("func", "documentService.ApplySnapshot").
			Str("doc_id", docID).
			Msg("replacing unusable local state with snapshot")
		if replica, err = s.newReplica(); err != nil {
			return err
		}
		writable = true
	case err != nil:
		return err
	}

	if _, err = replica.Merge(remote); err != nil {
		return fmt.Errorf("%w: %w", models.ErrStoreCorruption, err)
	}

	result := s.applyBuffered(docID, replica, nil)
	if err = s.store(ctx, &doc, replica, writable); err != nil {
		return err
	}

	if result.Buffered == 0 {
		if err = s.documents.SetSyncedSeq(ctx, docID, seq); err != nil {
			return fmt.Errorf("error saving synced sequence: %w", err)
		}
	}

	s.logger.Debug().
		Str("func", "documentService.ApplySnapshot").
		Str("doc_id", docID).
		Int64("seq", seq).
		Msg("snapshot merged")
	return nil
}

func (s *documentService) Snapshot(ctx context.Context, docID string) ([]byte, int64, error) {
	unlock := s.locks.Lock(docID)
	defer unlock()

	doc, err := s.documents.Get(ctx, docID)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting document: %w", err)
	}
	if _, err = s.load(doc); err != nil {
		return nil, 0, err
	}
	return doc.State, doc.SyncedSeq, nil
}

// open loads a document for a remote merge. Unknown documents start from an
// empty replica. Pending file edits are captured first; writable is false
// when the file must not be overwritten.
func (s *documentService) open(ctx context.Context, docID string) (models.Document, *automerge.Doc, bool, error) {
	doc, err := s.documents.Get(ctx, docID)
	if errors.Is(err, store.ErrDocumentNotFound) {
		replica, err := s.newReplica()
		return models.Document{DocID: docID}, replica, err == nil, err
	}
	if err != nil {
		return models.Document{}, nil, false, fmt.Errorf("error getting document: %w", err)
	}

	replica, err := s.load(doc)
	if err != nil {
		return doc, nil, false, err
	}

	writable, err := s.captureDiskEdit(ctx, &doc, replica)
	if err != nil {
		return doc, nil, false, err
	}
	return doc, replica, writable, nil
}

// applyBuffered applies incoming together with the document's buffered
// changes in any order their dependencies allow, and buffers the rest.
func (s *documentService) applyBuffered(docID string, replica *automerge.Doc, incoming []*automerge.Change) RemoteResult {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()

	buf := s.buffers[docID]
	pending := incoming
	if buf != nil {
		pending = append(append([]*automerge.Change(nil), buf.changes...), incoming...)
	}

	var result RemoteResult
	for progress := true; progress; {
		progress = false
		rest := pending[:0]
		for _, ch := range pending {
			switch {
			case converter.Has(replica, ch):
			case converter.Ready(replica, ch):
				if err := replica.Apply(ch); err != nil {
					s.logger.Warn().Err(err).
						Str("func", "documentService.applyBuffered").
						Str("doc_id", docID).
						Msg("dropping invalid change")
					continue
				}
				result.Applied++
				progress = true
			default:
				rest = append(rest, ch)
			}
		}
		pending = rest
	}

	if len(pending) == 0 {
		delete(s.buffers, docID)
		return result
	}

	if buf == nil {
		buf = &causalBuffer{since: s.now()}
		s.buffers[docID] = buf
	}
	buf.changes = pending

	if len(pending) > s.bufferLimit || s.now().Sub(buf.since) > s.bufferMaxAge {
		s.logger.Warn().Err(models.ErrCausalGap).
			Str("func", "documentService.applyBuffered").
			Str("doc_id", docID).
			Int("buffered", len(pending)).
			Msg("gap not closing, dropping buffer")
		delete(s.buffers, docID)
		result.NeedSnapshot = true
		return result
	}

	result.Buffered = len(pending)
	return result
}

// store persists a merged replica and writes its file.
func (s *documentService) store(ctx context.Context, doc *models.Document, replica *automerge.Doc, writable bool) error {
	exists := doc.State != nil
	s.fillState(doc, replica)

	// a replica bootstrapped from changes alone has no kind until its
	// creator's first change arrives
	if converter.Kind(replica) != "" && writable {
		if err := s.materialize(ctx, doc, replica); err != nil {
			return err
		}
	}

	var err error
	if exists {
		err = s.documents.SaveState(ctx, *doc)
	} else {
		err = s.documents.Create(ctx, *doc)
	}
	if err != nil {
		return fmt.Errorf("error saving merged state: %w", err)
	}
	return nil
}

// materialize writes the replica to its file, or removes the file of a
// deleted document when nobody edited it since the last sync.
func (s *documentService) materialize(ctx context.Context, doc *models.Document, replica *automerge.Doc) error {
	if converter.IsDeleted(replica) {
		if doc.CanonicalPath == "" {
			return nil
		}
		abs := s.abs(doc.CanonicalPath)
		data, err := os.ReadFile(abs)
		if err == nil && utils.ContentHash(data) == doc.ContentHash {
			if err = os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("error removing %s: %w", doc.CanonicalPath, err)
			}
		}
		doc.ContentHash = ""
		return nil
	}

	content, err := converter.Materialize(replica)
	if err != nil {
		return err
	}

	if doc.CanonicalPath == "" {
		if doc.CanonicalPath, err = s.bootstrapPath(ctx, doc.DocID, replica, content); err != nil {
			return err
		}
	}

	hash := utils.ContentHash([]byte(content))
	if hash == doc.ContentHash {
		return nil
	}
	if err = utils.WriteFileAtomic(s.abs(doc.CanonicalPath), []byte(content), fileMode); err != nil {
		return fmt.Errorf("error writing %s: %w", doc.CanonicalPath, err)
	}
	doc.ContentHash = hash
	return nil
}

// bootstrapPath picks the file path of a document first seen from the
// relay: its recorded path when free, else a name derived from its content.
func (s *documentService) bootstrapPath(ctx context.Context, docID string, replica *automerge.Doc, content string) (string, error) {
	taken := func(p string) bool {
		doc, err := s.documents.GetByPath(ctx, s.root, p)
		if err == nil && doc.DocID != docID {
			return true
		}
		_, err = os.Stat(s.abs(p))
		return err == nil
	}

	if p := converter.Path(replica); p != "" {
		if canonical, err := docpath.Canonicalize(s.root, p); err == nil && !taken(canonical) {
			return canonical, nil
		}
	}

	kind := converter.Kind(replica)
	return docpath.UniquePath(docpath.PathForNewDocument(kind, content, docID), docID, taken), nil
}

// ── migration and reconcile ──────────────────────────────────────────────────

func (s *documentService) MigrateLegacyPaths(ctx context.Context) (int, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("error listing documents: %w", err)
	}

	migrated := 0
	for _, doc := range docs {
		if doc.CanonicalPath == "" || docpath.IsCanonical(doc.CanonicalPath) {
			continue
		}

		canonical, err := docpath.Canonicalize(s.root, doc.CanonicalPath)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("func", "documentService.MigrateLegacyPaths").
				Str("doc_id", doc.DocID).
				Str("path", doc.CanonicalPath).
				Msg("cannot migrate path")
			continue
		}

		if err = s.migrate(ctx, doc, canonical); err != nil {
			return migrated, err
		}
		migrated++
	}

	s.logger.Info().Str("func", "documentService.MigrateLegacyPaths").Int("migrated", migrated).Msg("path migration finished")
	return migrated, nil
}

func (s *documentService) migrate(ctx context.Context, legacy models.Document, canonical string) error {
	survivor, err := s.documents.GetByPath(ctx, "", canonical)
	if errors.Is(err, store.ErrDocumentNotFound) {
		return s.rename(ctx, legacy, canonical)
	}
	if err != nil {
		return fmt.Errorf("error getting document by path: %w", err)
	}

	unlockA := s.locks.Lock(survivor.DocID)
	defer unlockA()

	merged, err := s.load(survivor)
	if err != nil {
		return err
	}
	if dup, err := s.load(legacy); err == nil {
		if _, err = merged.Merge(dup); err != nil {
			return fmt.Errorf("%w: %w", models.ErrStoreCorruption, err)
		}
	}

	s.fillState(&survivor, merged)
	// the duplicate's history is only reachable through a snapshot
	if survivor.PendingChanges < s.compactionChanges {
		survivor.PendingChanges = s.compactionChanges
	}

	if err = s.documents.ReplaceDuplicate(ctx, survivor, legacy.DocID); err != nil {
		return fmt.Errorf("error replacing duplicate: %w", err)
	}

	s.logger.Info().
		Str("func", "documentService.migrate").
		Str("doc_id", survivor.DocID).
		Str("duplicate", legacy.DocID).
		Msg("merged duplicate document")
	s.notify()
	return nil
}

// rename moves a document record to its canonical path and records the
// path in the replica when it differs.
func (s *documentService) rename(ctx context.Context, doc models.Document, canonical string) error {
	unlock := s.locks.Lock(doc.DocID)
	defer unlock()

	replica, err := s.load(doc)
	if err != nil {
		return err
	}
	base := replica.Heads()
	ok, err := converter.SetPath(replica, canonical)
	if err != nil {
		return err
	}
	if !ok {
		return s.documents.UpdatePath(ctx, doc.DocID, canonical)
	}

	changes, err := converter.ChangesSince(replica, base)
	if err != nil {
		return err
	}
	s.fillState(&doc, replica)
	doc.CanonicalPath = canonical
	if err = s.documents.SaveLocalChange(ctx, doc, changes...); err != nil {
		return fmt.Errorf("error saving migrated path: %w", err)
	}
	s.notify()
	return nil
}

func (s *documentService) Reconcile(ctx context.Context) error {
	files, err := watcher.Scan(s.root)
	if err != nil {
		return err
	}

	for _, f := range files {
		if err = s.ApplyLocalFile(ctx, f); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn().Err(err).Str("func", "documentService.Reconcile").Str("path", f).Msg("skipping file")
		}
	}

	docs, err := s.documents.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing documents: %w", err)
	}
	for _, doc := range docs {
		if doc.CanonicalPath == "" || doc.ContentHash == "" {
			continue
		}
		abs := s.abs(doc.CanonicalPath)
		if _, err = os.Stat(abs); !errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err = s.ApplyLocalRemove(ctx, abs); err != nil {
			s.logger.Warn().Err(err).Str("func", "documentService.Reconcile").Str("doc_id", doc.DocID).Msg("cannot record removal")
		}
	}

	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *documentService) abs(canonical string) string {
	if filepath.IsAbs(canonical) {
		return canonical
	}
	return filepath.Join(s.root, filepath.FromSlash(canonical))
}

func (s *documentService) readFile(canonical string) ([]byte, error) {
	abs := s.abs(canonical)
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, canonical, info.Size())
	}
	return os.ReadFile(abs)
}

func (s *documentService) newReplica() (*automerge.Doc, error) {
	replica, err := converter.NewDoc(s.actor)
	if err != nil {
		return nil, fmt.Errorf("error creating replica: %w", err)
	}
	return replica, nil
}

func (s *documentService) load(doc models.Document) (*automerge.Doc, error) {
	replica, err := converter.LoadDoc(doc.State, s.actor)
	if err != nil {
		return nil, fmt.Errorf("%w: document %s: %w", models.ErrStoreCorruption, doc.DocID, err)
	}
	return replica, nil
}

func (s *documentService) fillState(doc *models.Document, replica *automerge.Doc) {
	doc.State = replica.Save()
	if kind := converter.Kind(replica); kind != "" {
		doc.DocType = kind
	}
}
