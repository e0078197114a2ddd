package config

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	EnvAppEnv    = "STOREFRONT_APP_ENV"
	EnvPort      = "STOREFRONT_APP_PORT"
	EnvDBDSN     = "STOREFRONT_DB_DSN"
	EnvDBDriver  = "STOREFRONT_DB_DRIVER"
	EnvDBHost    = "STOREFRONT_DB_HOST"
	EnvDBUser    = "STOREFRONT_DB_USER"
	EnvDBName    = "STOREFRONT_DB_NAME"
	EnvRedisURL  = "STOREFRONT_REDIS_URL"
	EnvJWTSecret = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMin = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvUpstreamInventoryURL = "STOREFRONT_UPSTREAM_INVENTORY_URL"
	EnvUpstreamCustomerURL  = "STOREFRONT_UPSTREAM_CUSTOMER_URL"
	EnvUpstreamRetries      = "STOREFRONT_UPSTREAM_RETRIES"
	EnvPurchaseCompensate   = "STOREFRONT_PURCHASE_COMPENSATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
