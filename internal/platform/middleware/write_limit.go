package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kurokeita/quotable/internal/platform/apperr"
	"github.com/kurokeita/quotable/internal/platform/constants"
	"github.com/kurokeita/quotable/internal/platform/ctxutil"
	"github.com/kurokeita/quotable/internal/platform/respond"
)

// WindowCounter counts hits for a key within a fixed window.
//
// Hit returns the count including the current hit and the time left in the window.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// WriteRateLimit caps mutating requests per client across every replica
// sharing the same counter.
//
// A nil counter or a non-positive limit disables the check. Counter failures
// fail open and are logged.
func WriteRateLimit(counter WindowCounter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if counter == nil || limit <= 0 {
			return next
		}

		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if isReadOnly(request.Method) {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := request.Context()
			key := constants.RedisPrefixWriteLimit + RealIP(request)

			count, remaining, err := counter.Hit(ctx, key, window)
			if err != nil {
				ctxutil.GetLogger(ctx).WarnContext(ctx, "write_rate_limit_unavailable", slog.Any("error", err))
				next.ServeHTTP(writer, request)
				return
			}

			if count > int64(limit) {
				retryAfter := max(int(remaining.Round(time.Second).Seconds()), 1)
				ctxutil.GetLogger(ctx).WarnContext(ctx, "write_rate_limited",
					slog.Int64("count", count),
					slog.Bool("write_authorized", ctxutil.IsWriteAuthorized(ctx)),
				)
				writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
				respond.Error(writer, request, apperr.RateLimited(retryAfter))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

func isReadOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
