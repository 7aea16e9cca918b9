package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrDocumentNotFound is returned when no document matches the requested
	// id or path.
	ErrDocumentNotFound = errors.New("document was not found")

	// ErrPathTaken is returned when a document is created or moved onto a
	// canonical path that another document already uses.
	ErrPathTaken = errors.New("canonical path is used by another document")

	// ErrSettingNotFound is returned for a device setting that was never set.
	ErrSettingNotFound = errors.New("device setting was not found")

	// ErrPermissionDenied is returned when an identity lacks the access level
	// an operation needs.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPermissionNotFound is returned when revoking access an identity
	// does not hold.
	ErrPermissionNotFound = errors.New("permission was not found")

	// ErrCannotRevokeOwner is returned when revoking the owner's access.
	ErrCannotRevokeOwner = errors.New("owner access cannot be revoked")

	// ErrStaleSnapshot is returned when a pushed snapshot covers less of the
	// change log than the stored one, or more than the log holds.
	ErrStaleSnapshot = errors.New("snapshot is older than the stored one")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning fails during multi-row
	// iteration, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
