package config

const (
	EnvPrefix = "hbp"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "HBP_DB_DSN"
	EnvDBHost = "HBP_DB_HOST"
	EnvDBUser = "HBP_DB_USER"
	EnvDBName = "HBP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
