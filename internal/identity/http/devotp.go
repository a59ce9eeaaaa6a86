package http

import (
	"net/http"

	"github.com/aussiebroadwan/foodcar/internal/identity/sms"
	"github.com/aussiebroadwan/foodcar/pkg/httpx"
	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
)

// DevCodeHandler godoc
//
//	@Summary		Read a sent code (development only)
//	@Description	Returns the code sent for a verification by the logging SMS sender. Only mounted when
//	@Description	DEV_OTP_ENABLED is set.
//	@Tags			Development
//	@Produce		json
//	@Param			verification_id	path		string						true	"Verification id"
//	@Success		200				{object}	phoneauth.DevCodeResponse	"verification_id, code"
//	@Failure		404				{object}	phoneauth.ErrorResponse		"not_found"
//	@Router			/v1/dev/otp/{verification_id} [get].
func DevCodeHandler(codes *sms.DevCodes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("verification_id")
		code, ok := codes.Get(id)
		if !ok {
			phoneauth.ErrNotFoundResp.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, phoneauth.DevCodeResponse{VerificationID: id, Code: code})
	}
}
