package http

import (
	"net/http"

	"github.com/aussiebroadwan/foodcar/pkg/httpx"
	"github.com/aussiebroadwan/foodcar/pkg/jwtx"
)

// JWKSHandler godoc
//
//	@Summary		Get JWKS
//	@Description	Public keys that verify identity tokens. Services accepting FoodCar identity tokens fetch this once and verify offline.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
