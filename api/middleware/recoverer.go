package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/angelmondragon/pointsdash/api/responses"
	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
	"github.com/angelmondragon/pointsdash/pkg/logger"
)

// Recoverer turns a panic in a dashboard handler into a 500 envelope. Aborted
// handlers are re-panicked so net/http can drop the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if recErr, ok := rec.(error); ok && errors.Is(recErr, http.ErrAbortHandler) {
					panic(rec)
				}

				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					fields := map[string]any{
						"panic": fmt.Sprint(rec),
						"path":  r.URL.Path,
					}
					if userID := UserIDFromContext(ctx); userID != "" {
						fields["user_id"] = userID
					}
					if role := RoleFromContext(ctx); role != "" {
						fields["actor_role"] = role
					}
					ctx = logg.WithFields(ctx, fields)
					logg.Error(ctx, "panic.recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "dashboard handler panicked"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
