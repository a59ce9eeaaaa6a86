package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/foodcar/internal/identity/service"
	"github.com/aussiebroadwan/foodcar/pkg/httpx"
	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"
)

type ChallengeHandler struct {
	ChallengeService *service.ChallengeService
}

// ServeHTTP godoc
//
//	@Summary		Render a challenge
//	@Description	Issues an anti-automation token bound to a container. The token is required to send a code and may be
//	@Description	reused for a few sends until it expires.
//	@Tags			Challenges
//	@Accept			json
//	@Produce		json
//	@Param			request	body		phoneauth.ChallengeRequest	true	"container_id"
//	@Success		201		{object}	phoneauth.ChallengeResponse	"challenge_token, expires_at"
//	@Failure		400		{object}	phoneauth.ErrorResponse		"error, error_description"
//	@Failure		429		{object}	phoneauth.ErrorResponse		"rate limited"
//	@Router			/v1/challenges [post].
func (h *ChallengeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req phoneauth.ChallengeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		phoneauth.ErrInvalidRequest.WriteError(w)
		return
	}

	token, expiresAt, err := h.ChallengeService.Issue(ctx, req.ContainerID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContainer) {
			phoneauth.NewServiceError(http.StatusBadRequest, phoneauth.CodeInvalidRequest, "container_id is required").WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("failed to issue challenge", "err", err)
		phoneauth.ErrServerErrorResp.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, phoneauth.ChallengeResponse{
		ChallengeToken: token,
		ExpiresAt:      expiresAt,
	})
}
