package config

// EnvPrefix namespaces every environment variable the app reads.
const EnvPrefix = "AURADECOR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "AURADECOR_APP_ENV"
	EnvPort                   = "AURADECOR_APP_PORT"
	EnvDBDSN                  = "AURADECOR_DB_DSN"
	EnvDBHost                 = "AURADECOR_DB_HOST"
	EnvDBUser                 = "AURADECOR_DB_USER"
	EnvDBName                 = "AURADECOR_DB_NAME"
	EnvRedisURL               = "AURADECOR_REDIS_URL"
	EnvJWTSecret              = "AURADECOR_JWT_SECRET"
	EnvJWTIssuer              = "AURADECOR_JWT_ISSUER"
	EnvJWTExpMins             = "AURADECOR_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "AURADECOR_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
