package config

// EnvPrefix namespaces every engine environment variable.
const EnvPrefix = "SHOPEASE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names, referenced by tests and bootstrap diagnostics.
const (
	EnvAppEnv            = "SHOPEASE_APP_ENV"
	EnvAppPort           = "SHOPEASE_APP_PORT"
	EnvLogLevel          = "SHOPEASE_LOG_LEVEL"
	EnvStorageDriver     = "SHOPEASE_STORAGE_DRIVER"
	EnvStorageSQLitePath = "SHOPEASE_STORAGE_SQLITE_PATH"
	EnvStorageNamespace  = "SHOPEASE_STORAGE_NAMESPACE"
	EnvRedisURL          = "SHOPEASE_REDIS_URL"
	EnvAPIBaseURL        = "SHOPEASE_API_BASE_URL"
	EnvAPITimeout        = "SHOPEASE_API_TIMEOUT"
	EnvDeliveryFee       = "SHOPEASE_CHECKOUT_DELIVERY_FEE"
	EnvPromoCodes        = "SHOPEASE_CHECKOUT_PROMO_CODES"
	EnvOrdersPoll        = "SHOPEASE_ORDERS_POLL_INTERVAL"
)
