package controllers

import (
	"net/http"

	"github.com/angelmondragon/pointsdash/api/middleware"
	"github.com/angelmondragon/pointsdash/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// WhoAmI echoes the identity the auth middleware resolved for the caller.
func WhoAmI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		responses.WriteSuccess(w, map[string]string{
			"user_id":        middleware.UserIDFromContext(ctx),
			"role":           middleware.RoleFromContext(ctx).String(),
			"dashboard_role": middleware.RoleFromContext(ctx).DashboardRole().String(),
		})
	}
}
