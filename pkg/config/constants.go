package config

// EnvPrefix scopes every envconfig lookup; individual fields carry the full
// MATRIMONY_* names so the prefix stays empty here.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MATRIMONY_DB_DSN"
	EnvDBHost = "MATRIMONY_DB_HOST"
	EnvDBUser = "MATRIMONY_DB_USER"
	EnvDBName = "MATRIMONY_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
