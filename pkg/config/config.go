package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cache        CacheConfig
	JWT          JWTConfig
	Quote        QuoteConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Cache.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARHIRE_APP_ENV" required:"true"`
	Port         string `envconfig:"CARHIRE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CARHIRE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARHIRE_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"CARHIRE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CARHIRE_DB_DSN"`
	Driver string `envconfig:"CARHIRE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CARHIRE_DB_HOST"`
	LegacyPort     int    `envconfig:"CARHIRE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARHIRE_DB_USER"`
	LegacyPassword string `envconfig:"CARHIRE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARHIRE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARHIRE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARHIRE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARHIRE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARHIRE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARHIRE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARHIRE_REDIS_URL"`
	Address      string        `envconfig:"CARHIRE_REDIS_ADDR"`
	Password     string        `envconfig:"CARHIRE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARHIRE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARHIRE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARHIRE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARHIRE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARHIRE_REDIS_READ_TIMEOUT" default:"2s"`
	WriteTimeout time.Duration `envconfig:"CARHIRE_REDIS_WRITE_TIMEOUT" default:"2s"`
}

// CacheConfig selects the read-cache backend placed in front of location and pricing lookups.
type CacheConfig struct {
	Driver string        `envconfig:"CARHIRE_CACHE_DRIVER" default:"redis"`
	TTL    time.Duration `envconfig:"CARHIRE_CACHE_TTL" default:"1h"`
}

func (c CacheConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case CacheDriverRedis, CacheDriverMemory, CacheDriverNone:
	default:
		return fmt.Errorf("%s must be one of redis, memory, none (got %q)", EnvCacheDriver, c.Driver)
	}
	if c.TTL < 0 {
		return fmt.Errorf("%s must not be negative", EnvCacheTTL)
	}
	return nil
}

// Backend returns the normalized driver name.
func (c CacheConfig) Backend() string {
	return strings.ToLower(strings.TrimSpace(c.Driver))
}

type JWTConfig struct {
	Secret            string `envconfig:"CARHIRE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CARHIRE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CARHIRE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type QuoteConfig struct {
	Timeout time.Duration `envconfig:"CARHIRE_QUOTE_TIMEOUT" default:"3s"`
}

type RateLimitConfig struct {
	QuoteWindow time.Duration `envconfig:"CARHIRE_RATE_LIMIT_QUOTE_WINDOW" default:"1m"`
	QuoteLimit  int           `envconfig:"CARHIRE_RATE_LIMIT_QUOTE_LIMIT" default:"600"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CARHIRE_AUTO_MIGRATE" default:"false"`
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
