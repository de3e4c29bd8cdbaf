package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
}

// Load reads the whole configuration once at process start and fails fast on
// missing required values.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Stripe.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HBP_APP_ENV" required:"true"`
	Port         string `envconfig:"HBP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HBP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HBP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HBP_DB_DSN"`
	Driver string `envconfig:"HBP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HBP_DB_HOST"`
	LegacyPort     int    `envconfig:"HBP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HBP_DB_USER"`
	LegacyPassword string `envconfig:"HBP_DB_PASSWORD"`
	LegacyName     string `envconfig:"HBP_DB_NAME"`
	LegacySSLMode  string `envconfig:"HBP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HBP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HBP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HBP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HBP_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"HBP_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HBP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HBP_REDIS_ADDR"`
	Password     string        `envconfig:"HBP_REDIS_PASSWORD"`
	DB           int           `envconfig:"HBP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HBP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HBP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HBP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HBP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HBP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"HBP_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"HBP_JWT_ISSUER" required:"true"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"HBP_STRIPE_API_KEY" required:"true"`
	WebhookSecret string `envconfig:"HBP_STRIPE_WEBHOOK_SECRET" required:"true"`
	Env           string `envconfig:"HBP_STRIPE_ENV" default:"test"`
}

// CheckoutConfig fixes the subscription checkout policy. The app sells a
// single premium tier to an Australian audience, hence the AUD defaults.
type CheckoutConfig struct {
	TrialPeriodDays int64  `envconfig:"HBP_CHECKOUT_TRIAL_DAYS" default:"7"`
	Currency        string `envconfig:"HBP_CHECKOUT_CURRENCY" default:"aud"`
	Locale          string `envconfig:"HBP_CHECKOUT_LOCALE" default:"en-AU"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

func (s StripeConfig) validate() error {
	if strings.TrimSpace(s.APIKey) == "" {
		return fmt.Errorf("stripe api key is required")
	}
	if strings.TrimSpace(s.WebhookSecret) == "" {
		return fmt.Errorf("stripe webhook secret is required")
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
