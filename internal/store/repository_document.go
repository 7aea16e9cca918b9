package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"

	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/models"
)

// relayDocumentRepository is the PostgreSQL-backed implementation of
// [RelayDocumentRepository] and [PermissionRepository].
//
// Writes to one document serialize on its row lock (SELECT ... FOR UPDATE),
// so change ids of a document are committed in arrival order.
type relayDocumentRepository struct {
	*DB
	logger *logger.Logger
}

func NewRelayDocumentRepository(db *DB, logger *logger.Logger) *relayDocumentRepository {
	logger.Debug().Msg("creating relay document repository")
	return &relayDocumentRepository{
		DB:     db,
		logger: logger,
	}
}

// lockForWrite creates the document when it is missing and takes its row
// lock. It returns whether this call created it.
func lockForWrite(ctx context.Context, tx *sql.Tx, identity, docID string) (models.StoredSnapshot, bool, error) {
	res, err := tx.ExecContext(ctx, createDocumentIfMissing, docID, identity)
	if err != nil {
		return models.StoredSnapshot{}, false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	created, err := res.RowsAffected()
	if err != nil {
		return models.StoredSnapshot{}, false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	doc := models.StoredSnapshot{DocID: docID}
	if err = tx.QueryRowContext(ctx, lockDocument, docID).Scan(&doc.Owner, &doc.Seq); err != nil {
		return models.StoredSnapshot{}, false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if created == 1 {
		if _, err = tx.ExecContext(ctx, upsertPermission, docID, identity, string(models.PermissionOwner)); err != nil {
			return models.StoredSnapshot{}, false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return doc, true, nil
	}

	perm, err := permissionTx(ctx, tx, docID, identity)
	if err != nil {
		return models.StoredSnapshot{}, false, err
	}
	if !perm.Allows(models.PermissionWriter) {
		return models.StoredSnapshot{}, false, fmt.Errorf("%w: %s cannot write %s", ErrPermissionDenied, identity, docID)
	}
	return doc, false, nil
}

func permissionTx(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, docID, identity string) (models.Permission, error) {
	var perm string
	err := q.QueryRowContext(ctx, getPermission, docID, identity).Scan(&perm)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrPermissionDenied
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return models.Permission(perm), nil
}

func (r *relayDocumentRepository) AppendChanges(ctx context.Context, identity, deviceID, docID string, changes [][]byte) (models.AppendResult, error) {
	log := logger.FromContext(ctx)

	var result models.AppendResult
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		result = models.AppendResult{}

		snap, created, err := lockForWrite(ctx, tx, identity, docID)
		if err != nil {
			return err
		}
		result.Created = created

		var count, latest int64
		if err = tx.QueryRowContext(ctx, countChanges, docID).Scan(&count, &latest); err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		// changes up to the snapshot may have been truncated
		result.PrevSeq = max(latest, snap.Seq)
		result.Seq = result.PrevSeq
		result.LogLength = count + int64(len(changes))

		for _, ch := range changes {
			if err = tx.QueryRowContext(ctx, insertChange, docID, deviceID, ch).Scan(&result.Seq); err != nil {
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "relayDocumentRepository.AppendChanges").
			Str("doc_id", docID).
			Str("device_id", deviceID).
			Int("changes", len(changes)).
			Msg("failed to append changes")
		return models.AppendResult{}, err
	}

	return result, nil
}

func (r *relayDocumentRepository) ChangesAfter(ctx context.Context, docID string, after int64) ([]models.StoredChange, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildChangesAfterQuery(docID, after)
	if err != nil {
		log.Err(err).Str("func", "relayDocumentRepository.ChangesAfter").Msg("failed to create query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "relayDocumentRepository.ChangesAfter").
			Str("doc_id", docID).
			Int64("after", after).
			Msg("failed to query changes")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var changes []models.StoredChange
	for rows.Next() {
		var ch models.StoredChange
		if err = rows.Scan(&ch.Seq, &ch.DeviceID, &ch.Payload); err != nil {
			log.Err(err).Str("func", "relayDocumentRepository.ChangesAfter").Msg("failed to scan change row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		changes = append(changes, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return changes, nil
}

func (r *relayDocumentRepository) GetSnapshot(ctx context.Context, docID string) (models.StoredSnapshot, error) {
	var snap models.StoredSnapshot
	err := r.DB.QueryRowContext(ctx, getDocumentSnapshot, docID).Scan(&snap.DocID, &snap.Owner, &snap.Payload, &snap.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StoredSnapshot{}, ErrDocumentNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "relayDocumentRepository.GetSnapshot").
			Str("doc_id", docID).
			Msg("failed to read snapshot")
		return models.StoredSnapshot{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return snap, nil
}

func (r *relayDocumentRepository) SaveSnapshot(ctx context.Context, identity, docID string, snapshot []byte, coversSeq int64) error {
	log := logger.FromContext(ctx)

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		current, _, err := lockForWrite(ctx, tx, identity, docID)
		if err != nil {
			return err
		}

		var count, latest int64
		if err = tx.QueryRowContext(ctx, countChanges, docID).Scan(&count, &latest); err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if coversSeq < current.Seq || coversSeq > max(latest, current.Seq) {
			return fmt.Errorf("%w: covers %d, stored %d, latest %d", ErrStaleSnapshot, coversSeq, current.Seq, latest)
		}

		if _, err = tx.ExecContext(ctx, updateSnapshot, docID, snapshot, coversSeq); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if _, err = tx.ExecContext(ctx, truncateChanges, docID, coversSeq); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "relayDocumentRepository.SaveSnapshot").
			Str("doc_id", docID).
			Int64("covers_seq", coversSeq).
			Msg("failed to save snapshot")
	}
	return err
}

func (r *relayDocumentRepository) ListDocuments(ctx context.Context, identity string) ([]models.DocumentInfo, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListDocumentsQuery(identity)
	if err != nil {
		log.Err(err).Str("func", "relayDocumentRepository.ListDocuments").Msg("failed to create query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "relayDocumentRepository.ListDocuments").Str("identity", identity).Msg("failed to query documents")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var infos []models.DocumentInfo
	for rows.Next() {
		var info models.DocumentInfo
		if err = rows.Scan(&info.DocID, &info.SnapshotSeq, &info.LatestSeq); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return infos, nil
}

// ── permissions ──────────────────────────────────────────────────────────────

func (r *relayDocumentRepository) Permission(ctx context.Context, docID, identity string) (models.Permission, error) {
	perm, err := permissionTx(ctx, r.DB, docID, identity)
	if !errors.Is(err, ErrPermissionDenied) {
		return perm, err
	}

	var exists bool
	if err = r.DB.QueryRowContext(ctx, documentExists, docID).Scan(&exists); err != nil {
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	if !exists {
		return "", ErrDocumentNotFound
	}
	return "", ErrPermissionDenied
}

func (r *relayDocumentRepository) ListPermissions(ctx context.Context, docID string) ([]models.DocumentPermission, error) {
	query, args, err := buildListPermissionsQuery(docID)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "relayDocumentRepository.ListPermissions").Str("doc_id", docID).Msg("failed to query permissions")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var perms []models.DocumentPermission
	for rows.Next() {
		var p models.DocumentPermission
		var level string
		if err = rows.Scan(&p.DocID, &p.Identity, &level); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		p.Permission = models.Permission(level)
		perms = append(perms, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	if len(perms) == 0 {
		return nil, ErrDocumentNotFound
	}
	return perms, nil
}

func (r *relayDocumentRepository) Grant(ctx context.Context, docID, identity string, permission models.Permission) error {
	_, err := r.DB.ExecContext(ctx, upsertPermission, docID, identity, string(permission))
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "relayDocumentRepository.Grant").
			Str("doc_id", docID).
			Str("identity", identity).
			Msg("failed to grant permission")
		if postgresError(err) == pgerrcode.ForeignKeyViolation {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *relayDocumentRepository) Revoke(ctx context.Context, docID, identity string) error {
	res, err := r.DB.ExecContext(ctx, deletePermission, docID, identity)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "relayDocumentRepository.Revoke").
			Str("doc_id", docID).
			Str("identity", identity).
			Msg("failed to revoke permission")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n > 0 {
		return nil
	}

	perm, err := permissionTx(ctx, r.DB, docID, identity)
	switch {
	case err == nil && perm == models.PermissionOwner:
		return ErrCannotRevokeOwner
	case err == nil, errors.Is(err, ErrPermissionDenied):
		return ErrPermissionNotFound
	default:
		return err
	}
}
