package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"airtraffic/statboard/internal/auth"
	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/logging"
)

// AdminAuth requires a Bearer token signed by signer whose claims allow
// action.
func AdminAuth(signer *common.TokenSigner, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()
			unauthorized := func(msg string) {
				common.RespondError(w, initTime, errors.New(msg), constants.ErrCodeUnauthorized, http.StatusUnauthorized)
			}

			if !signer.Enabled() {
				unauthorized("Admin endpoints are disabled")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized("Unauthorized. Missing bearer token")
				return
			}

			claims, err := signer.Validate(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				logging.Warn("Rejected admin token", "error", err, "request_id", RequestIDFromContext(r.Context()))
				unauthorized("Unauthorized. Invalid token")
				return
			}
			if !claims.HasPermission(action) {
				common.RespondError(w, initTime, errors.New("Forbidden. Insufficient role"), constants.ErrCodeUnauthorized, http.StatusForbidden)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
