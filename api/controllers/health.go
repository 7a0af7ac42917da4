package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/pointsdash/api/responses"
	"github.com/angelmondragon/pointsdash/pkg/config"
	pkgerrors "github.com/angelmondragon/pointsdash/pkg/errors"
	"github.com/angelmondragon/pointsdash/pkg/logger"
	"github.com/angelmondragon/pointsdash/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pointsdash-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the cache when one is configured. A nil pinger means the
// cache is disabled and the service is ready without it.
func HealthReady(cfg *config.Config, logg *logger.Logger, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pointsdash-Env", cfg.App.Env)

		checks := map[string]string{"redis": "disabled"}
		if cache != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
			defer cancel()
			if err := cache.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready").
					WithDetails(map[string]any{"check": "redis"}))
				return
			}
			checks["redis"] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
