package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/service"
	"github.com/aussiebroadwan/foodcar/pkg/httpx"
	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
	"github.com/aussiebroadwan/foodcar/pkg/slogx"
)

type SendCodeHandler struct {
	OTPService *service.OTPService
}

// ServeHTTP godoc
//
//	@Summary		Send a verification code
//	@Description	Sends a six digit code by SMS to an E.164 phone number. Any earlier code for the number stops working.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			request	body		phoneauth.SendCodeRequest	true	"phone, challenge_token"
//	@Success		202		{object}	phoneauth.SendCodeResponse	"verification_id, expires_at"
//	@Failure		400		{object}	phoneauth.ErrorResponse		"invalid_request, invalid_phone"
//	@Failure		403		{object}	phoneauth.ErrorResponse		"challenge_rejected"
//	@Failure		429		{object}	phoneauth.ErrorResponse		"rate_limited"
//	@Failure		503		{object}	phoneauth.ErrorResponse		"the SMS gateway is unavailable"
//	@Router			/v1/otp/send [post].
func (h *SendCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req phoneauth.SendCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.Phone == "" {
		phoneauth.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.OTPService.Send(ctx, req.Phone, req.ChallengeToken)
	if err != nil {
		var rl *service.RateLimitedError
		switch {
		case errors.Is(err, service.ErrInvalidPhone):
			phoneauth.ErrInvalidPhoneResp.WriteError(w)
		case errors.Is(err, service.ErrChallengeRejected):
			phoneauth.ErrChallengeResp.WriteError(w)
		case errors.As(err, &rl):
			retryAfter := max(int(rl.RetryAfter.Round(time.Second)/time.Second), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			phoneauth.NewServiceError(http.StatusTooManyRequests, phoneauth.CodeRateLimited,
				"a code was sent to this number recently, try again later").WriteError(w)
		case errors.Is(err, service.ErrDelivery):
			log.Warn("code delivery failed", "err", err)
			phoneauth.ErrUnavailableResp.WriteError(w)
		default:
			log.Error("failed to send code", "err", err)
			phoneauth.ErrServerErrorResp.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, phoneauth.SendCodeResponse{
		VerificationID: res.VerificationID,
		ExpiresAt:      res.ExpiresAt,
	})
}

type ConfirmCodeHandler struct {
	OTPService *service.OTPService
}

// ServeHTTP godoc
//
//	@Summary		Confirm a verification code
//	@Description	Exchanges a code for an identity token. The first successful confirm consumes the verification; the
//	@Description	identity id is stable for the phone number.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			request	body		phoneauth.ConfirmCodeRequest	true	"verification_id, code"
//	@Success		200		{object}	phoneauth.ConfirmCodeResponse	"id_token, token_type, expires_in, identity"
//	@Failure		400		{object}	phoneauth.ErrorResponse			"invalid_request"
//	@Failure		401		{object}	phoneauth.ErrorResponse			"invalid_code"
//	@Failure		410		{object}	phoneauth.ErrorResponse			"expired"
//	@Router			/v1/otp/confirm [post].
func (h *ConfirmCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req phoneauth.ConfirmCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil || req.VerificationID == "" {
		phoneauth.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.OTPService.Confirm(ctx, req.VerificationID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			phoneauth.ErrInvalidCodeResp.WriteError(w)
		case errors.Is(err, service.ErrExpired):
			phoneauth.ErrExpiredResp.WriteError(w)
		default:
			slogx.FromContext(ctx).Error("failed to confirm code", "err", err)
			phoneauth.ErrServerErrorResp.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, phoneauth.ConfirmCodeResponse{
		IDToken:   res.IDToken,
		TokenType: "Bearer",
		ExpiresIn: int(res.ExpiresIn.Seconds()),
		Identity:  identityResponse(res.Identity),
	})
}
