package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/utils"
)

// auth is an HTTP middleware that enforces bearer token authentication.
//
// It parses the "Authorization" header, validates the token via
// [service.AuthService.ParseToken] and stores the token's identity in the
// request context under [utils.IdentityCtxKey].
//
// The middleware rejects requests with HTTP 401 Unauthorized when:
//   - the header is absent ([ErrEmptyAuthorizationHeader]);
//   - the header is not of the form "Bearer <token>"
//     ([ErrInvalidAuthorizationHeader]);
//   - the token is expired, signed with another key or otherwise invalid.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			utils.WriteError(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			utils.WriteError(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			log.Err(err).Msg("error occurred during parsing token")
			utils.WriteError(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx = context.WithValue(ctx, utils.IdentityCtxKey, token.Identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
