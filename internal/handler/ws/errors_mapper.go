package ws

import (
	"errors"

	"github.com/MKhiriev/go-lst-sync/internal/app"
	"github.com/MKhiriev/go-lst-sync/internal/service"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/internal/validators"
)

// clientErrors are the failures caused by the request itself. Their text is
// safe to send back; anything else is reported as an internal error.
var clientErrors = []error{
	validators.ErrUnexpectedFrame,
	validators.ErrNoToken,
	validators.ErrNoDocID,
	validators.ErrNoPushID,
	validators.ErrNoChanges,
	validators.ErrNoSnapshot,
	validators.ErrNegativeSeq,

	service.ErrValidationNoDocID,
	service.ErrValidationNoIdentity,
	service.ErrValidationNoChanges,
	service.ErrValidationNoSnapshot,
	service.ErrValidationNegativeSeq,
	service.ErrValidationPayloadTooLarge,

	store.ErrPermissionDenied,
	store.ErrDocumentNotFound,
	store.ErrStaleSnapshot,
}

func isClientError(err error) bool {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func reason(err error) string {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return app.MsgInternalError
}
