package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/kurokeita/quotable/internal/platform/apperr"
	"github.com/kurokeita/quotable/internal/platform/constants"
	"github.com/kurokeita/quotable/internal/platform/respond"
)

// ProtectionConfig is the subset of configuration consumed by [RequireAPIKey].
type ProtectionConfig struct {
	Enabled bool
	APIKey  string
}

// RequireAPIKey guards mutating routes with a shared secret sent in the
// x-api-key header.
//
// When protection is disabled every request passes through unchanged.
func RequireAPIKey(cfg ProtectionConfig) func(http.Handler) http.Handler {
	expected := []byte(cfg.APIKey)

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			presented := []byte(request.Header.Get(constants.HeaderAPIKey))

			if len(presented) == 0 || subtle.ConstantTimeCompare(presented, expected) != 1 {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or missing API key"))
				return
			}

			next.ServeHTTP(writer, request.WithContext(markAuthorized(request.Context())))
		})
	}
}
