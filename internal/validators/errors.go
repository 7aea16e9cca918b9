package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrUnexpectedFrame = errors.New("unexpected frame")
	ErrNoToken         = errors.New("token is required")
	ErrNoDocID         = errors.New("document id is required")
	ErrNoPushID        = errors.New("push id is required")
	ErrNoChanges       = errors.New("changes are required")
	ErrNoSnapshot      = errors.New("snapshot is required")
	ErrNegativeSeq     = errors.New("sequence must not be negative")
)
