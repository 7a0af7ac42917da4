package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pointsdash/api/middleware"
	"github.com/angelmondragon/pointsdash/api/responses"
	"github.com/angelmondragon/pointsdash/internal/analytics"
	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
	"github.com/angelmondragon/pointsdash/pkg/logger"
)

// Dashboard computes the caller's snapshot for their role.
func Dashboard(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context required"))
			return
		}

		params, err := parseDashboardParams(r, timeNowUTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := service.Dashboard(ctx, analytics.Request{
			UserID: userID,
			Role:   middleware.RoleFromContext(ctx),
			Now:    params.anchor,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		writeSnapshot(w, snapshot, params)
	}
}

// DashboardLatest serves the last committed snapshot without refetching.
func DashboardLatest(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context required"))
			return
		}

		params, err := parseDashboardParams(r, timeNowUTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := service.Latest(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		writeSnapshot(w, snapshot, params)
	}
}

func DashboardState(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context required"))
			return
		}
		responses.WriteSuccess(w, service.State(ctx, userID))
	}
}

// DashboardFacet recomputes a single manager facet named by the {facet} URL param.
func DashboardFacet(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := middleware.UserIDFromContext(ctx)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context required"))
			return
		}

		params, err := parseDashboardParams(r, timeNowUTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		facet := analytics.Facet(chi.URLParam(r, "facet"))
		snapshot, err := service.Facet(ctx, analytics.Request{
			UserID: userID,
			Role:   middleware.RoleFromContext(ctx),
			Now:    params.anchor,
		}, facet)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		writeSnapshot(w, snapshot, params)
	}
}

func writeSnapshot(w http.ResponseWriter, snapshot *analytics.Snapshot, params dashboardParams) {
	sorted, state := sortSnapshot(snapshot, params.sort, params.dir)
	if state == nil {
		responses.WriteSuccess(w, sorted)
		return
	}
	responses.WriteSuccessMeta(w, sorted, map[string]any{"sort": state})
}
