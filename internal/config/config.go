// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :3000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim set on and checked for every token.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim set on and checked for every token.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`

	// Argon2MemoryKiB, Argon2Iterations and Argon2Parallelism tune password hashing.
	Argon2MemoryKiB   uint32 `mapstructure:"ARGON2_MEMORY_KIB"`
	Argon2Iterations  uint32 `mapstructure:"ARGON2_ITERATIONS"`
	Argon2Parallelism uint8  `mapstructure:"ARGON2_PARALLELISM"`

	// OTPExpiryMinutes is how long an issued OTP stays valid.
	OTPExpiryMinutes int `mapstructure:"OTP_EXPIRY_MINUTES"`
	// OTPReturnToClient when true keeps issued codes in memory for GET /dev/otp. Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is "json" or "console".
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// CORSOrigins is a comma-separated list of allowed origins; "*" allows any.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	// RateLimitRequests is the number of requests a client IP may make per RateLimitWindow.
	RateLimitRequests int `mapstructure:"RATE_LIMIT_REQUESTS"`
	// RateLimitWindow is the throttle window (e.g. "60s").
	RateLimitWindow string `mapstructure:"RATE_LIMIT_WINDOW"`
	// TrustedProxies is how many reverse proxies in front of the server append to X-Forwarded-For.
	// Zero ignores forwarding headers and uses the TCP peer address as the client IP.
	TrustedProxies int `mapstructure:"TRUSTED_PROXIES"`
	// OTPVerifyAttempts is how many verify-otp requests one email may make per OTP expiry window.
	OTPVerifyAttempts int `mapstructure:"OTP_VERIFY_ATTEMPTS"`
	// RedisURL enables the shared Redis throttle (e.g. redis://localhost:6379/0). Empty uses the in-memory limiter.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Mail settings for the transactional email API. Empty MailAPIKey logs mail instead of sending it.
	MailAPIKey    string `mapstructure:"MAIL_API_KEY"`
	MailAPIURL    string `mapstructure:"MAIL_API_URL"`
	MailFromEmail string `mapstructure:"MAIL_FROM_EMAIL"`
	MailFromName  string `mapstructure:"MAIL_FROM_NAME"`

	// Events (optional). When Kafka brokers are set, domain and request events are published to Kafka.
	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the Kafka topic for events.
	EventsKafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext gRPC to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "servease-auth")
	v.SetDefault("JWT_AUDIENCE", "servease-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("ARGON2_MEMORY_KIB", 64*1024)
	v.SetDefault("ARGON2_ITERATIONS", 3)
	v.SetDefault("ARGON2_PARALLELISM", 2)
	v.SetDefault("OTP_EXPIRY_MINUTES", 5)
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "60s")
	v.SetDefault("TRUSTED_PROXIES", 0)
	v.SetDefault("OTP_VERIFY_ATTEMPTS", 5)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("MAIL_API_KEY", "")
	v.SetDefault("MAIL_API_URL", "https://api.brevo.com/v3/smtp/email")
	v.SetDefault("MAIL_FROM_EMAIL", "no-reply@servease.com")
	v.SetDefault("MAIL_FROM_NAME", "Servease")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "servease-events")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "servease-events-worker")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.OTPExpiryMinutes <= 0 {
		cfg.OTPExpiryMinutes = 5
	}
	if cfg.Argon2Iterations == 0 {
		return nil, errors.New("config: ARGON2_ITERATIONS must be at least 1")
	}
	if cfg.Argon2MemoryKiB < 8*1024 {
		return nil, errors.New("config: ARGON2_MEMORY_KIB must be at least 8192")
	}
	if cfg.Argon2Parallelism == 0 {
		cfg.Argon2Parallelism = 1
	}
	if cfg.RateLimitRequests < 0 {
		return nil, errors.New("config: RATE_LIMIT_REQUESTS must not be negative")
	}
	if cfg.TrustedProxies < 0 {
		return nil, errors.New("config: TRUSTED_PROXIES must not be negative")
	}
	if cfg.OTPVerifyAttempts < 0 {
		return nil, errors.New("config: OTP_VERIFY_ATTEMPTS must not be negative")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// OTPTTL returns the OTP validity window.
func (c *Config) OTPTTL() time.Duration {
	if c.OTPExpiryMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.OTPExpiryMinutes) * time.Minute
}

// RateLimitWindowDuration parses RateLimitWindow. Returns 60s if unset or invalid.
func (c *Config) RateLimitWindowDuration() time.Duration {
	d, err := time.ParseDuration(c.RateLimitWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event publishing is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.KafkaBrokers)
}

// CORSOriginsList returns the allowed CORS origins. Defaults to "*".
func (c *Config) CORSOriginsList() []string {
	if c == nil {
		return []string{"*"}
	}
	out := splitList(c.CORSOrigins)
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
