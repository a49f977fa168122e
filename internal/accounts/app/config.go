package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	httpapi "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/caarlos0/env/v11"
)

const envProduction = "production"

type Config struct {
	DatabaseURL string `env:"USR_DATABASE_URL" envDefault:"file:accounts.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"`
	DBMaxConns  int32  `env:"USR_DB_MAX_CONNS" envDefault:"15"` // Postgres only

	JWTSecretKey     string `env:"USR_JWT_SECRET_KEY,required,unset"`
	JWTAlgorithm     string `env:"USR_JWT_ALGORITHM" envDefault:"HS256"`
	JWTExpirySeconds int    `env:"USR_JWT_EXPIRY_SECONDS" envDefault:"3600"`
	JWTIssuer        string `env:"USR_JWT_ISSUER"` // Optional: iss claim

	DefaultRole        string `env:"USR_DEFAULT_ROLE" envDefault:"customer"`
	AllowInactiveLogin bool   `env:"USR_ALLOW_INACTIVE_LOGIN" envDefault:"false"`
	PepperFile         string `env:"USR_PEPPER_FILE"` // Optional: created on first start when set

	Env                 string        `env:"USR_ENV" envDefault:"development"` // development, staging, production
	AppVersion          string        `env:"USR_APP_VERSION" envDefault:"1.0.0"`
	LogLevel            string        `env:"USR_LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"USR_LOG_FORMAT" envDefault:"json"`
	Port                int           `env:"USR_PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"USR_SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// Populated from RATELIMIT_{STRICT,MODERATE,LENIENT}_* rather than env tags.
	RateLimits httpapi.RateLimits
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	limits, err := loadRateLimits()
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimits = limits

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadRateLimits() (httpapi.RateLimits, error) {
	strict, errStrict := httpx.RateLimitFromEnv("STRICT", httpx.StrictLimit)
	moderate, errModerate := httpx.RateLimitFromEnv("MODERATE", httpx.ModerateLimit)
	lenient, errLenient := httpx.RateLimitFromEnv("LENIENT", httpx.LenientLimit)
	if err := errors.Join(errStrict, errModerate, errLenient); err != nil {
		return httpapi.RateLimits{}, err
	}
	return httpapi.RateLimits{Strict: strict, Moderate: moderate, Lenient: lenient}, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("USR_JWT_SECRET_KEY is required"))
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("USR_JWT_ALGORITHM %q is not supported (HS256, HS384, HS512)", c.JWTAlgorithm))
	}
	if c.JWTExpirySeconds <= 0 {
		errs = append(errs, errors.New("USR_JWT_EXPIRY_SECONDS must be positive"))
	}
	if strings.TrimSpace(c.DefaultRole) == "" {
		errs = append(errs, errors.New("USR_DEFAULT_ROLE must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("USR_PORT %d is out of range", c.Port))
	}

	return errors.Join(errs...)
}

// AccessTTL is the access token lifetime.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTExpirySeconds) * time.Second
}

// ExposeDocs reports whether the Swagger UI is served.
func (c Config) ExposeDocs() bool {
	return c.Env != envProduction
}
