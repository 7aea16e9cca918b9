package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	createDocumentIfMissing = `
		INSERT INTO documents (doc_id, owner)
		VALUES ($1, $2)
		ON CONFLICT (doc_id) DO NOTHING;`

	lockDocument = `
		SELECT owner, snapshot_seq
		FROM documents
		WHERE doc_id = $1
		FOR UPDATE;`

	getDocumentSnapshot = `
		SELECT doc_id, owner, encrypted_snapshot, snapshot_seq
		FROM documents
		WHERE doc_id = $1;`

	insertChange = `
		INSERT INTO document_changes (doc_id, device_id, encrypted_change)
		VALUES ($1, $2, $3)
		RETURNING change_id;`

	countChanges = `
		SELECT COUNT(*), COALESCE(MAX(change_id), 0)
		FROM document_changes
		WHERE doc_id = $1;`

	updateSnapshot = `
		UPDATE documents
		SET encrypted_snapshot = $2, snapshot_seq = $3, updated_at = NOW()
		WHERE doc_id = $1;`

	truncateChanges = `
		DELETE FROM document_changes
		WHERE doc_id = $1 AND change_id <= $2;`

	getPermission = `
		SELECT permission
		FROM document_permissions
		WHERE doc_id = $1 AND identity = $2;`

	documentExists = `
		SELECT EXISTS (SELECT 1 FROM documents WHERE doc_id = $1);`

	upsertPermission = `
		INSERT INTO document_permissions (doc_id, identity, permission)
		VALUES ($1, $2, $3)
		ON CONFLICT (doc_id, identity) DO UPDATE
		SET permission = EXCLUDED.permission
		WHERE document_permissions.permission <> 'owner';`

	deletePermission = `
		DELETE FROM document_permissions
		WHERE doc_id = $1 AND identity = $2 AND permission <> 'owner';`
)

// buildChangesAfterQuery selects the changes of a document that arrived
// after the given sequence, in arrival order.
func buildChangesAfterQuery(docID string, after int64) (string, []any, error) {
	query, args, err := psql.
		Select("change_id", "device_id", "encrypted_change").
		From("document_changes").
		Where(sq.Eq{"doc_id": docID}).
		Where(sq.Gt{"change_id": after}).
		OrderBy("change_id ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildListDocumentsQuery selects every document the identity can see,
// with the newest arrival sequence of each.
func buildListDocumentsQuery(identity string) (string, []any, error) {
	query, args, err := psql.
		Select("d.doc_id", "d.snapshot_seq", "COALESCE(MAX(c.change_id), d.snapshot_seq)").
		From("documents d").
		Join("document_permissions p ON p.doc_id = d.doc_id").
		LeftJoin("document_changes c ON c.doc_id = d.doc_id").
		Where(sq.Eq{"p.identity": identity}).
		GroupBy("d.doc_id", "d.snapshot_seq").
		OrderBy("d.doc_id").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildListPermissionsQuery selects the ACL of a document, owner first.
func buildListPermissionsQuery(docID string) (string, []any, error) {
	query, args, err := psql.
		Select("doc_id", "identity", "permission").
		From("document_permissions").
		Where(sq.Eq{"doc_id": docID}).
		OrderBy("CASE permission WHEN 'owner' THEN 0 WHEN 'writer' THEN 1 ELSE 2 END", "identity").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
