package config

const EnvPrefix = "QUOTEDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Rate selection policies for label purchases.
const (
	RatePolicyCheapest = "cheapest"
	RatePolicyFastest  = "fastest"
)

// Environment variable names shared with tests and deploy manifests.
const (
	EnvAppEnv          = "QUOTEDESK_APP_ENV"
	EnvPort            = "QUOTEDESK_APP_PORT"
	EnvDBDSN           = "QUOTEDESK_DB_DSN"
	EnvRedisURL        = "QUOTEDESK_REDIS_URL"
	EnvShopURL         = "QUOTEDESK_SHOP_URL"
	EnvShopifyAPIKey   = "QUOTEDESK_SHOPIFY_API_KEY"
	EnvShopifyPassword = "QUOTEDESK_SHOPIFY_PASSWORD"
	EnvSendgridAPIKey  = "QUOTEDESK_SENDGRID_API_KEY"
	EnvSendgridFrom    = "QUOTEDESK_SENDGRID_FROM_EMAIL"
	EnvShippoAPIKey    = "QUOTEDESK_SHIPPO_API_KEY"
	EnvRatePolicy      = "QUOTEDESK_SHIPPO_RATE_POLICY"
)
