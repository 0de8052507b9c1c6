package config

// EnvPrefix is handed to envconfig; every field carries its full key explicitly.
const EnvPrefix = "CARHIRE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
	CacheDriverNone   = "none"
)

const (
	EnvAppEnv       = "CARHIRE_APP_ENV"
	EnvPort         = "CARHIRE_APP_PORT"
	EnvLogLevel     = "CARHIRE_LOG_LEVEL"
	EnvDBDSN        = "CARHIRE_DB_DSN"
	EnvDBHost       = "CARHIRE_DB_HOST"
	EnvDBUser       = "CARHIRE_DB_USER"
	EnvDBName       = "CARHIRE_DB_NAME"
	EnvRedisURL     = "CARHIRE_REDIS_URL"
	EnvCacheDriver  = "CARHIRE_CACHE_DRIVER"
	EnvCacheTTL     = "CARHIRE_CACHE_TTL"
	EnvJWTSecret    = "CARHIRE_JWT_SECRET"
	EnvJWTIssuer    = "CARHIRE_JWT_ISSUER"
	EnvQuoteTimeout = "CARHIRE_QUOTE_TIMEOUT"
	EnvCORSOrigins  = "CARHIRE_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
