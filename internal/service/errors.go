package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrVersionIsNotSpecified   = errors.New("application version is not specified")

	ErrValidationNoDocID         = errors.New("no document id provided")
	ErrValidationNoIdentity      = errors.New("no identity provided")
	ErrValidationNoChanges       = errors.New("no changes provided")
	ErrValidationNoSnapshot      = errors.New("no snapshot provided")
	ErrValidationNegativeSeq     = errors.New("sequence must not be negative")
	ErrValidationBadPermission   = errors.New("unknown permission")
	ErrValidationGrantOwner      = errors.New("owner permission cannot be granted")
	ErrValidationPayloadTooLarge = errors.New("payload is too large")

	// ErrChangesTruncated is returned when the requested changes were
	// already folded into the document snapshot.
	ErrChangesTruncated = errors.New("changes were compacted into the snapshot")

	// ErrFileTooLarge is returned for files above the configured size limit.
	ErrFileTooLarge = errors.New("file is too large")
)
