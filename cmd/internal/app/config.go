package app

import (
	"strings"
	"time"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // "json" or "pretty"

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	AutoMigrate bool

	// If true, /readyz returns 503 unless the database is configured and
	// reachable.
	ReadinessRequireDB bool

	// Token signing.
	TokenSecret string
	TokenIssuer string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration

	// If true, the token secret must be at least 32 bytes and must not be the
	// development default.
	RequireStrongSecret bool

	BcryptCost int

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	// Stream gateway tuning.
	WSSendQueueSize    int
	WSWriteTimeout     time.Duration
	WSHeartbeatEvery   time.Duration
	WSHeartbeatTimeout time.Duration
	WSOriginPatterns   []string
}

// devTokenSecret is the development fallback. Production deployments must
// override it; see ValidateSecurityConfig.
const devTokenSecret = "supersecretkey"

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("AUTH_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("AUTH_LOG_LEVEL", "info"),
		LogFormat: EnvString("AUTH_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("AUTH_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("AUTH_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("AUTH_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("AUTH_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("AUTH_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("AUTH_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("AUTH_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("AUTH_DB_MIN_CONNS", 0),
		AutoMigrate: EnvBool("AUTH_DB_AUTO_MIGRATE", true),

		ReadinessRequireDB: EnvBool("AUTH_READINESS_REQUIRE_DB", false),

		TokenSecret: EnvString("AUTH_TOKEN_SECRET", devTokenSecret),
		TokenIssuer: EnvString("AUTH_TOKEN_ISSUER", "authapp"),
		AccessTTL:   EnvDuration("AUTH_ACCESS_TOKEN_TTL", 3*time.Minute),
		RefreshTTL:  EnvDuration("AUTH_REFRESH_TOKEN_TTL", 7*24*time.Hour),

		RequireStrongSecret: EnvBool("AUTH_REQUIRE_STRONG_SECRET", false),

		BcryptCost: EnvInt("AUTH_BCRYPT_COST", 0),

		CORSAllowedOrigins:   envList("AUTH_CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		CORSAllowCredentials: EnvBool("AUTH_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("AUTH_CORS_MAX_AGE_SECONDS", 600),

		WSSendQueueSize:    EnvInt("AUTH_WS_SEND_QUEUE_SIZE", 256),
		WSWriteTimeout:     EnvDuration("AUTH_WS_WRITE_TIMEOUT", 5*time.Second),
		WSHeartbeatEvery:   EnvDuration("AUTH_WS_HEARTBEAT_EVERY", 30*time.Second),
		WSHeartbeatTimeout: EnvDuration("AUTH_WS_HEARTBEAT_TIMEOUT", 10*time.Second),
		WSOriginPatterns:   envList("AUTH_WS_ORIGIN_PATTERNS", nil),
	}
}

func envList(key string, def []string) []string {
	v := EnvString(key, "")
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
