package middleware

import (
	"net/http"

	"github.com/angelmondragon/pointsdash/api/responses"
	pkgAuth "github.com/angelmondragon/pointsdash/pkg/auth"
	"github.com/angelmondragon/pointsdash/pkg/config"
	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
	"github.com/angelmondragon/pointsdash/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the caller's
// user id, role and raw token. The raw token is forwarded to the points service.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := pkgAuth.ExtractBearer(r.Header.Get("Authorization"))
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = WithRole(ctx, claims.Role)
			ctx = pkgAuth.WithBearer(ctx, token)

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
				ctx = logg.WithActorRole(ctx, claims.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
