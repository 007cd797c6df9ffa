package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// MEDINA_-prefixed names so the prefix stays empty here.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv         = "MEDINA_APP_ENV"
	EnvPort           = "MEDINA_APP_PORT"
	EnvDBDSN          = "MEDINA_DB_DSN"
	EnvDBHost         = "MEDINA_DB_HOST"
	EnvDBUser         = "MEDINA_DB_USER"
	EnvDBName         = "MEDINA_DB_NAME"
	EnvRedisURL       = "MEDINA_REDIS_URL"
	EnvJWTSecret      = "MEDINA_JWT_SECRET"
	EnvJWTIssuer      = "MEDINA_JWT_ISSUER"
	EnvJWTExpMins     = "MEDINA_JWT_EXPIRATION_MINUTES"
	EnvSessionTTLMins = "MEDINA_SESSION_TTL_MINUTES"
	EnvStorageBaseURL = "MEDINA_STORAGE_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
