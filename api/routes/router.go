package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pointsdash/api/controllers"
	dashboardcontrollers "github.com/angelmondragon/pointsdash/api/controllers/analytics"
	"github.com/angelmondragon/pointsdash/api/middleware"
	"github.com/angelmondragon/pointsdash/internal/analytics"
	"github.com/angelmondragon/pointsdash/pkg/config"
	"github.com/angelmondragon/pointsdash/pkg/enums"
	"github.com/angelmondragon/pointsdash/pkg/logger"
	"github.com/angelmondragon/pointsdash/pkg/redis"
)

// NewRouter wires the dashboard API. cache and limiter are nil when Redis is not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cache redis.Pinger,
	limiter middleware.RateLimiterStore,
	gatherer prometheus.Gatherer,
	dashboardService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	dashboardPolicy := middleware.NewRateLimitPolicy(
		"dashboard",
		cfg.RateLimit.DashboardWindow,
		cfg.RateLimit.DashboardLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, cache))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/me", controllers.WhoAmI())

		r.Route("/dashboard", func(r chi.Router) {
			r.With(middleware.RateLimit(dashboardPolicy, limiter, logg)).
				Get("/", dashboardcontrollers.Dashboard(dashboardService, logg))
			r.Get("/latest", dashboardcontrollers.DashboardLatest(dashboardService, logg))
			r.Get("/state", dashboardcontrollers.DashboardState(dashboardService, logg))
			r.With(
				middleware.RequireRole(logg, enums.RoleManager, enums.RoleSuperuser),
				middleware.RateLimit(dashboardPolicy, limiter, logg),
			).Get("/facets/{facet}", dashboardcontrollers.DashboardFacet(dashboardService, logg))
		})
	})

	return r
}
