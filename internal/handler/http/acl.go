package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-lst-sync/internal/app"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/utils"
	"github.com/MKhiriev/go-lst-sync/models"
)

// getACL returns every permission row of the document.
func (h *Handler) getACL(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	identity, _ := utils.GetIdentityFromContext(r.Context())
	docID := chi.URLParam(r, "docID")

	acl, err := h.services.RelayService.ListACL(r.Context(), identity, docID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getACL").Str("doc_id", docID).Msg("failed to list permissions")
		utils.WriteError(w, errorMessage(err), statusFromError(err))
		return
	}
	if acl == nil {
		acl = []models.DocumentPermission{}
	}

	if _, err = utils.WriteJSON(w, acl, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.getACL").Msg("failed to write response")
	}
}

// grant gives the identity in the path the permission from the body.
func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	identity, _ := utils.GetIdentityFromContext(r.Context())
	docID := chi.URLParam(r, "docID")
	target := chi.URLParam(r, "identity")

	var req models.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.grant").Msg("invalid request body")
		utils.WriteError(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	if err := h.services.RelayService.Grant(r.Context(), identity, docID, target, req.Permission); err != nil {
		log.Err(err).Str("func", "*Handler.grant").Str("doc_id", docID).Str("target", target).Msg("failed to grant permission")
		utils.WriteError(w, errorMessage(err), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// revoke removes the permission of the identity in the path.
func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	identity, _ := utils.GetIdentityFromContext(r.Context())
	docID := chi.URLParam(r, "docID")
	target := chi.URLParam(r, "identity")

	if err := h.services.RelayService.Revoke(r.Context(), identity, docID, target); err != nil {
		log.Err(err).Str("func", "*Handler.revoke").Str("doc_id", docID).Str("target", target).Msg("failed to revoke permission")
		utils.WriteError(w, errorMessage(err), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
