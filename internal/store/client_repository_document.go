package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/models"
)

// localDocumentRepository is the SQLite-backed implementation of
// [LocalDocumentRepository].
type localDocumentRepository struct {
	*DB
	logger *logger.Logger
}

func NewLocalDocumentRepository(db *DB, logger *logger.Logger) LocalDocumentRepository {
	return &localDocumentRepository{
		DB:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (models.Document, error) {
	var (
		doc              models.Document
		canonicalPath    sql.NullString
		docType          string
		writers, readers string
	)
	err := row.Scan(
		&doc.DocID,
		&canonicalPath,
		&docType,
		&doc.ContentHash,
		&doc.State,
		&doc.ACL.Owner,
		&writers,
		&readers,
		&doc.SyncedSeq,
		&doc.PendingChanges,
		&doc.PendingBytes,
		&doc.UpdatedAt,
	)
	if err != nil {
		return models.Document{}, err
	}
	doc.CanonicalPath = canonicalPath.String
	doc.DocType = models.ParseDocType(docType)

	if err = json.Unmarshal([]byte(writers), &doc.ACL.Writers); err != nil {
		return models.Document{}, fmt.Errorf("%w: writers of %s: %w", models.ErrStoreCorruption, doc.DocID, err)
	}
	if err = json.Unmarshal([]byte(readers), &doc.ACL.Readers); err != nil {
		return models.Document{}, fmt.Errorf("%w: readers of %s: %w", models.ErrStoreCorruption, doc.DocID, err)
	}
	return doc, nil
}

func encodeIdentities(ids []string) string {
	if len(ids) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

func (l *localDocumentRepository) getOne(ctx context.Context, query, arg string) (models.Document, error) {
	doc, err := scanDocument(l.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, ErrDocumentNotFound
	}
	if err != nil {
		if errors.Is(err, models.ErrStoreCorruption) {
			return models.Document{}, err
		}
		return models.Document{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return doc, nil
}

func (l *localDocumentRepository) Get(ctx context.Context, docID string) (models.Document, error) {
	log := logger.FromContext(ctx)

	doc, err := l.getOne(ctx, getDocumentByID, docID)
	if err != nil && !errors.Is(err, ErrDocumentNotFound) {
		log.Err(err).
			Str("func", "localDocumentRepository.Get").
			Str("doc_id", docID).
			Msg("failed to get document")
	}
	return doc, err
}

func (l *localDocumentRepository) GetByPath(ctx context.Context, root, canonicalPath string) (models.Document, error) {
	log := logger.FromContext(ctx)

	doc, err := l.getOne(ctx, getDocumentByPath, canonicalPath)
	if !errors.Is(err, ErrDocumentNotFound) || root == "" {
		return doc, err
	}

	// legacy records were keyed by absolute path
	legacy := path.Join(strings.ReplaceAll(root, `\`, "/"), canonicalPath)
	doc, err = l.getOne(ctx, getDocumentByPath, legacy)
	if err == nil {
		log.Debug().
			Str("func", "localDocumentRepository.GetByPath").
			Str("doc_id", doc.DocID).
			Str("legacy_path", legacy).
			Msg("resolved document through legacy absolute path")
	}
	return doc, err
}

func (l *localDocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	log := logger.FromContext(ctx)

	rows, err := l.DB.QueryContext(ctx, getAllDocuments)
	if err != nil {
		log.Err(err).Str("func", "localDocumentRepository.List").Msg("failed to query documents")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "localDocumentRepository.List").Msg("failed to scan document row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		docs = append(docs, doc)
	}
	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "localDocumentRepository.List").Msg("error iterating document rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return docs, nil
}

func (l *localDocumentRepository) Create(ctx context.Context, doc models.Document, changes ...[]byte) error {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, insertDocument,
			doc.DocID,
			doc.CanonicalPath,
			string(doc.DocType),
			doc.ContentHash,
			doc.State,
			doc.ACL.Owner,
			encodeIdentities(doc.ACL.Writers),
			encodeIdentities(doc.ACL.Readers),
			doc.SyncedSeq,
			doc.PendingChanges+len(changes),
			doc.PendingBytes+totalSize(changes),
			now,
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return enqueue(ctx, tx, doc.DocID, changes, now)
	})
	if err != nil {
		log.Err(err).
			Str("func", "localDocumentRepository.Create").
			Str("doc_id", doc.DocID).
			Str("path", doc.CanonicalPath).
			Msg("failed to insert document")
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrPathTaken, doc.CanonicalPath)
		}
	}
	return err
}

func (l *localDocumentRepository) SaveLocalChange(ctx context.Context, doc models.Document, changes ...[]byte) error {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, updateDocumentLocalChange,
			doc.CanonicalPath, doc.ContentHash, doc.State, len(changes), totalSize(changes), now, doc.DocID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if err = expectOneRow(res); err != nil {
			return err
		}
		return enqueue(ctx, tx, doc.DocID, changes, now)
	})
	if err != nil {
		log.Err(err).
			Str("func", "localDocumentRepository.SaveLocalChange").
			Str("doc_id", doc.DocID).
			Msg("failed to persist local change")
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrPathTaken, doc.CanonicalPath)
		}
	}
	return err
}

func enqueue(ctx context.Context, tx *sql.Tx, docID string, changes [][]byte, now time.Time) error {
	for _, change := range changes {
		if _, err := tx.ExecContext(ctx, insertOutboundChange, docID, change, now); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}
	return nil
}

func totalSize(changes [][]byte) int {
	n := 0
	for _, change := range changes {
		n += len(change)
	}
	return n
}

func (l *localDocumentRepository) SaveState(ctx context.Context, doc models.Document) error {
	log := logger.FromContext(ctx)

	res, err := l.DB.ExecContext(ctx, updateDocumentState,
		doc.CanonicalPath, doc.ContentHash, doc.State, time.Now().UTC(), doc.DocID)
	if err != nil {
		log.Err(err).
			Str("func", "localDocumentRepository.SaveState").
			Str("doc_id", doc.DocID).
			Msg("failed to update document state")
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrPathTaken, doc.CanonicalPath)
		}
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return expectOneRow(res)
}

func (l *localDocumentRepository) SetSyncedSeq(ctx context.Context, docID string, seq int64) error {
	return l.exec(ctx, "localDocumentRepository.SetSyncedSeq", docID, updateDocumentSyncedSeq, seq, docID)
}

func (l *localDocumentRepository) UpdatePath(ctx context.Context, docID, canonicalPath string) error {
	err := l.exec(ctx, "localDocumentRepository.UpdatePath", docID, updateDocumentPath, canonicalPath, time.Now().UTC(), docID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrPathTaken, canonicalPath)
	}
	return err
}

func (l *localDocumentRepository) UpdateACL(ctx context.Context, docID string, acl models.ACL) error {
	return l.exec(ctx, "localDocumentRepository.UpdateACL", docID, updateDocumentACL,
		acl.Owner, encodeIdentities(acl.Writers), encodeIdentities(acl.Readers), docID)
}

func (l *localDocumentRepository) ResetPending(ctx context.Context, docID string) error {
	return l.exec(ctx, "localDocumentRepository.ResetPending", docID, resetDocumentPending, docID)
}

func (l *localDocumentRepository) ReplaceDuplicate(ctx context.Context, survivor models.Document, duplicateID string) error {
	log := logger.FromContext(ctx)

	err := l.inTx(ctx, func(tx *sql.Tx) error {
		// the duplicate may hold the survivor's target path
		if _, err := tx.ExecContext(ctx, deleteOutboundChanges, duplicateID); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if _, err := tx.ExecContext(ctx, deleteDocument, duplicateID); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, insertMergedDocument, duplicateID, survivor.DocID, now); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		res, err := tx.ExecContext(ctx, updateDocumentMerged,
			survivor.CanonicalPath, survivor.ContentHash, survivor.State,
			survivor.PendingChanges, survivor.PendingBytes, now, survivor.DocID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return expectOneRow(res)
	})
	if err != nil {
		log.Err(err).
			Str("func", "localDocumentRepository.ReplaceDuplicate").
			Str("doc_id", survivor.DocID).
			Str("duplicate_id", duplicateID).
			Msg("failed to replace duplicate document")
	}
	return err
}

func (l *localDocumentRepository) MergedInto(ctx context.Context, docID string) (string, error) {
	var survivorID string
	err := l.DB.QueryRowContext(ctx, getMergedDocument, docID).Scan(&survivorID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrDocumentNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "localDocumentRepository.MergedInto").
			Str("doc_id", docID).
			Msg("failed to read merged document")
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return survivorID, nil
}

func (l *localDocumentRepository) PendingChanges(ctx context.Context, docID string) ([]models.OutboundChange, error) {
	log := logger.FromContext(ctx)

	rows, err := l.DB.QueryContext(ctx, getPendingChanges, docID)
	if err != nil {
		log.Err(err).Str("func", "localDocumentRepository.PendingChanges").Str("doc_id", docID).Msg("failed to query outbound changes")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var changes []models.OutboundChange
	for rows.Next() {
		var ch models.OutboundChange
		if err = rows.Scan(&ch.ID, &ch.DocID, &ch.Payload); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		changes = append(changes, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return changes, nil
}

func (l *localDocumentRepository) PendingDocuments(ctx context.Context) ([]string, error) {
	rows, err := l.DB.QueryContext(ctx, getPendingDocuments)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "localDocumentRepository.PendingDocuments").Msg("failed to query outbound documents")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return ids, nil
}

func (l *localDocumentRepository) AckChanges(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := l.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, deleteOutboundChange, id); err != nil {
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "localDocumentRepository.AckChanges").
			Int("count", len(ids)).
			Msg("failed to delete acknowledged changes")
	}
	return err
}

func (l *localDocumentRepository) exec(ctx context.Context, fn, docID, query string, args ...any) error {
	res, err := l.DB.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Str("doc_id", docID).Msg("failed to execute statement")
		if isUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
