package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-lst-sync/internal/app"
	"github.com/MKhiriev/go-lst-sync/internal/service"
	"github.com/MKhiriev/go-lst-sync/internal/store"
)

type errorStatus struct {
	err    error
	status int
}

// errorStatuses is checked in order; the first match wins.
var errorStatuses = []errorStatus{
	{service.ErrInvalidDataProvided, http.StatusBadRequest},
	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},
	{service.ErrVersionIsNotSpecified, http.StatusBadRequest},
	{service.ErrValidationNoDocID, http.StatusBadRequest},
	{service.ErrValidationNoIdentity, http.StatusBadRequest},
	{service.ErrValidationBadPermission, http.StatusBadRequest},
	{service.ErrValidationGrantOwner, http.StatusBadRequest},

	{store.ErrPermissionDenied, http.StatusForbidden},
	{store.ErrDocumentNotFound, http.StatusNotFound},
	{store.ErrPermissionNotFound, http.StatusNotFound},
	{store.ErrCannotRevokeOwner, http.StatusConflict},

	{store.ErrBuildingSQLQuery, http.StatusInternalServerError},
	{store.ErrExecutingQuery, http.StatusInternalServerError},
	{store.ErrBeginningTransaction, http.StatusInternalServerError},
	{store.ErrCommitingTransaction, http.StatusInternalServerError},
	{store.ErrExecutingStatement, http.StatusInternalServerError},
	{store.ErrScanningRow, http.StatusInternalServerError},
	{store.ErrScanningRows, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// errorMessage hides internal failures from callers.
func errorMessage(err error) string {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) && e.status < http.StatusInternalServerError {
			return e.err.Error()
		}
	}
	return app.MsgInternalServerError
}
