package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/pointsdash/internal/upstream"
	"github.com/angelmondragon/pointsdash/pkg/logger"
)

const maxRequestIDLen = 64

// RequestID tags the request, its logs and every remote fetch it triggers with one id.
// Caller-supplied ids are kept only when they are short and plain.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(upstream.RequestIDHeader)
			if !validRequestID(reqID) {
				reqID = uuid.NewString()
			}

			w.Header().Set(upstream.RequestIDHeader, reqID)

			ctx := upstream.WithRequestID(r.Context(), reqID)
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
