package httpx

import "net/http"

// RequireSubjectParam only lets a caller touch the resource whose path
// parameter equals the token subject. Must run after AuthnMiddleware.
func RequireSubjectParam(param string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, ok := SubjectFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing subject")
				return
			}
			if r.PathValue(param) != sub {
				WriteError(w, http.StatusForbidden, "access_denied", "the token does not own this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
