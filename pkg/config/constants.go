package config

const (
	EnvPrefix = "shoplane"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SHOPLANE_DB_DSN"
	EnvDBHost = "SHOPLANE_DB_HOST"
	EnvDBUser = "SHOPLANE_DB_USER"
	EnvDBName = "SHOPLANE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
