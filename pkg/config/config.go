package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/pointsdash/pkg/enums"
)

type Config struct {
	App       AppConfig
	Upstream  UpstreamConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Analytics AnalyticsConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Analytics.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POINTSDASH_APP_ENV" required:"true"`
	Port         string `envconfig:"POINTSDASH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"POINTSDASH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POINTSDASH_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"POINTSDASH_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type UpstreamConfig struct {
	BaseURL        string        `envconfig:"POINTSDASH_UPSTREAM_BASE_URL" required:"true"`
	Timeout        time.Duration `envconfig:"POINTSDASH_UPSTREAM_TIMEOUT" default:"10s"`
	PageSize       int           `envconfig:"POINTSDASH_UPSTREAM_PAGE_SIZE" default:"100"`
	MaxPages       int           `envconfig:"POINTSDASH_UPSTREAM_MAX_PAGES" default:"50"`
	RetryAttempts  int           `envconfig:"POINTSDASH_UPSTREAM_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"POINTSDASH_UPSTREAM_RETRY_BASE_DELAY" default:"200ms"`
	CacheTTL       time.Duration `envconfig:"POINTSDASH_FETCH_CACHE_TTL" default:"30s"`
}

// RedisConfig is optional; the fetch cache is disabled when neither URL nor Address is set.
type RedisConfig struct {
	URL          string        `envconfig:"POINTSDASH_REDIS_URL"`
	Address      string        `envconfig:"POINTSDASH_REDIS_ADDR"`
	Password     string        `envconfig:"POINTSDASH_REDIS_PASSWORD"`
	DB           int           `envconfig:"POINTSDASH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POINTSDASH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POINTSDASH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POINTSDASH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POINTSDASH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POINTSDASH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret string `envconfig:"POINTSDASH_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"POINTSDASH_JWT_ISSUER" required:"true"`
}

type AnalyticsConfig struct {
	JoinPolicy         string `envconfig:"POINTSDASH_JOIN_POLICY" default:"failFast"`
	MostCommonFallback string `envconfig:"POINTSDASH_MOST_COMMON_FALLBACK" default:"purchase"`
	Timezone           string `envconfig:"POINTSDASH_TIMEZONE" default:"UTC"`
	RecentLimit        int    `envconfig:"POINTSDASH_RECENT_LIMIT" default:"5"`
	TopK               int    `envconfig:"POINTSDASH_TOP_K" default:"5"`

	// TrackerIdleTTL evicts settled per-user dashboard state; zero keeps it forever.
	TrackerIdleTTL time.Duration `envconfig:"POINTSDASH_TRACKER_IDLE_TTL" default:"30m"`

	policy   enums.JoinPolicy
	fallback enums.TransactionType
	location *time.Location
}

func (a AnalyticsConfig) Policy() enums.JoinPolicy {
	if a.policy == "" {
		return enums.JoinFailFast
	}
	return a.policy
}

func (a AnalyticsConfig) Fallback() enums.TransactionType {
	if a.fallback == "" {
		return enums.TransactionPurchase
	}
	return a.fallback
}

func (a AnalyticsConfig) Location() *time.Location {
	if a.location == nil {
		return time.UTC
	}
	return a.location
}

func (a *AnalyticsConfig) resolve() error {
	policy, err := enums.ParseJoinPolicy(a.JoinPolicy)
	if err != nil {
		return fmt.Errorf("%s: %w", EnvJoinPolicy, err)
	}
	fallback, err := enums.ParseTransactionType(strings.TrimSpace(a.MostCommonFallback))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvMostCommonFallback, err)
	}
	location, err := time.LoadLocation(strings.TrimSpace(a.Timezone))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvTimezone, err)
	}
	if a.RecentLimit <= 0 || a.TopK <= 0 {
		return fmt.Errorf("%s and %s must be positive", EnvRecentLimit, EnvTopK)
	}
	a.policy = policy
	a.fallback = fallback
	a.location = location
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"POINTSDASH_CORS_ORIGINS" default:"*"`
}

// RateLimitConfig throttles dashboard recomputes per user. Requires Redis; zero disables it.
type RateLimitConfig struct {
	DashboardLimit  int           `envconfig:"POINTSDASH_DASHBOARD_RATE_LIMIT" default:"30"`
	DashboardWindow time.Duration `envconfig:"POINTSDASH_DASHBOARD_RATE_WINDOW" default:"1m"`
}
