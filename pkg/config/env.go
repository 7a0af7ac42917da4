package config

const (
	EnvPrefix = "POINTSDASH"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv             = "POINTSDASH_APP_ENV"
	EnvPort               = "POINTSDASH_APP_PORT"
	EnvLogLevel           = "POINTSDASH_LOG_LEVEL"
	EnvLogFormat          = "POINTSDASH_LOG_FORMAT"
	EnvUpstreamBaseURL    = "POINTSDASH_UPSTREAM_BASE_URL"
	EnvUpstreamTimeout    = "POINTSDASH_UPSTREAM_TIMEOUT"
	EnvRedisURL           = "POINTSDASH_REDIS_URL"
	EnvFetchCacheTTL      = "POINTSDASH_FETCH_CACHE_TTL"
	EnvJWTSecret          = "POINTSDASH_JWT_SECRET"
	EnvJWTIssuer          = "POINTSDASH_JWT_ISSUER"
	EnvJoinPolicy         = "POINTSDASH_JOIN_POLICY"
	EnvMostCommonFallback = "POINTSDASH_MOST_COMMON_FALLBACK"
	EnvTimezone           = "POINTSDASH_TIMEZONE"
	EnvRecentLimit        = "POINTSDASH_RECENT_LIMIT"
	EnvTopK               = "POINTSDASH_TOP_K"
	EnvTrackerIdleTTL     = "POINTSDASH_TRACKER_IDLE_TTL"
	EnvCORSOrigins        = "POINTSDASH_CORS_ORIGINS"
)

const (
	EnvDashboardRateLimit  = "POINTSDASH_DASHBOARD_RATE_LIMIT"
	EnvDashboardRateWindow = "POINTSDASH_DASHBOARD_RATE_WINDOW"
)
