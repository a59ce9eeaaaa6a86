package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
	"github.com/aussiebroadwan/foodcar/internal/identity/service"
	"github.com/aussiebroadwan/foodcar/pkg/httpx"
	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"
)

func identityResponse(id domain.Identity) phoneauth.IdentityResponse {
	return phoneauth.IdentityResponse{ID: id.ID, Phone: id.Phone, Email: id.Email}
}

type SessionHandler struct {
	IdentityService *service.IdentityService
}

// ServeHTTP godoc
//
//	@Summary		Current identity
//	@Description	Resolves the bearer identity token to its identity. Clients call it at startup to restore a session.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	phoneauth.IdentityResponse	"id, phone, email"
//	@Failure		401	{object}	phoneauth.ErrorResponse		"invalid_token"
//	@Router			/v1/session [get].
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sub, ok := httpx.SubjectFromContext(ctx)
	if !ok {
		phoneauth.ErrInvalidTokenResp.WriteError(w)
		return
	}

	ident, err := h.IdentityService.Get(ctx, sub)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			phoneauth.ErrInvalidTokenResp.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to load identity", "identity_id", sub, "err", err)
		phoneauth.ErrServerErrorResp.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identityResponse(ident))
}
