package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Shopify   ShopifyConfig
	Sendgrid  SendgridConfig
	Shippo    ShippoConfig
	Upload    UploadConfig
	Outbox    OutboxConfig
	RateLimit RateLimitConfig
	Migrate   MigrateConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Shopify.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Shippo.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"QUOTEDESK_APP_ENV" required:"true"`
	Port         string   `envconfig:"QUOTEDESK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"QUOTEDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"QUOTEDESK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"QUOTEDESK_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"QUOTEDESK_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"QUOTEDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUOTEDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTEDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUOTEDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUOTEDESK_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"QUOTEDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTEDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTEDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTEDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUOTEDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ShopifyConfig carries the admin API credentials for the shop.
type ShopifyConfig struct {
	ShopURL    string        `envconfig:"QUOTEDESK_SHOP_URL" required:"true"`
	APIKey     string        `envconfig:"QUOTEDESK_SHOPIFY_API_KEY" required:"true"`
	Password   string        `envconfig:"QUOTEDESK_SHOPIFY_PASSWORD" required:"true"`
	APIVersion string        `envconfig:"QUOTEDESK_SHOPIFY_API_VERSION" default:"2023-10"`
	Timeout    time.Duration `envconfig:"QUOTEDESK_SHOPIFY_TIMEOUT" default:"30s"`
}

func (s ShopifyConfig) validate() error {
	if strings.Contains(s.ShopURL, "://") {
		return fmt.Errorf("shop url must be a bare host, got %q", s.ShopURL)
	}
	return nil
}

type SendgridConfig struct {
	APIKey   string `envconfig:"QUOTEDESK_SENDGRID_API_KEY"`
	From     string `envconfig:"QUOTEDESK_SENDGRID_FROM_EMAIL"`
	FromName string `envconfig:"QUOTEDESK_SENDGRID_FROM_NAME" default:"Quote Desk"`
}

// Enabled reports whether outbound email is configured at all.
func (s SendgridConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != "" && strings.TrimSpace(s.From) != ""
}

// ShippoConfig holds the label provider token plus the fixed return
// destination and parcel used for every label purchase.
type ShippoConfig struct {
	APIKey  string        `envconfig:"QUOTEDESK_SHIPPO_API_KEY"`
	Timeout time.Duration `envconfig:"QUOTEDESK_SHIPPO_TIMEOUT" default:"45s"`

	RatePolicy string `envconfig:"QUOTEDESK_SHIPPO_RATE_POLICY" default:"cheapest"`

	WarehouseName    string `envconfig:"QUOTEDESK_WAREHOUSE_NAME" default:"Quote Desk Receiving"`
	WarehouseStreet1 string `envconfig:"QUOTEDESK_WAREHOUSE_STREET1"`
	WarehouseCity    string `envconfig:"QUOTEDESK_WAREHOUSE_CITY"`
	WarehouseState   string `envconfig:"QUOTEDESK_WAREHOUSE_STATE"`
	WarehouseZip     string `envconfig:"QUOTEDESK_WAREHOUSE_ZIP"`
	WarehouseCountry string `envconfig:"QUOTEDESK_WAREHOUSE_COUNTRY" default:"US"`
	WarehousePhone   string `envconfig:"QUOTEDESK_WAREHOUSE_PHONE"`
	WarehouseEmail   string `envconfig:"QUOTEDESK_WAREHOUSE_EMAIL"`

	ParcelLengthIn string `envconfig:"QUOTEDESK_PARCEL_LENGTH_IN" default:"60"`
	ParcelWidthIn  string `envconfig:"QUOTEDESK_PARCEL_WIDTH_IN" default:"40"`
	ParcelHeightIn string `envconfig:"QUOTEDESK_PARCEL_HEIGHT_IN" default:"35"`
	ParcelWeightLb string `envconfig:"QUOTEDESK_PARCEL_WEIGHT_LB" default:"45"`
}

func (s ShippoConfig) validate() error {
	switch s.RatePolicy {
	case RatePolicyCheapest, RatePolicyFastest:
		return nil
	default:
		return fmt.Errorf("shippo rate policy must be %q or %q, got %q", RatePolicyCheapest, RatePolicyFastest, s.RatePolicy)
	}
}

type UploadConfig struct {
	MaxPhotos int   `envconfig:"QUOTEDESK_UPLOAD_MAX_PHOTOS" default:"4"`
	MaxBytes  int64 `envconfig:"QUOTEDESK_UPLOAD_MAX_BYTES" default:"5368709120"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"QUOTEDESK_OUTBOX_BATCH_SIZE" default:"25"`
	PollIntervalMS int `envconfig:"QUOTEDESK_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int `envconfig:"QUOTEDESK_OUTBOX_MAX_ATTEMPTS" default:"8"`
}

type RateLimitConfig struct {
	QuoteWindow  time.Duration `envconfig:"QUOTEDESK_RATE_LIMIT_QUOTE_WINDOW" default:"1m"`
	QuoteIPLimit int           `envconfig:"QUOTEDESK_RATE_LIMIT_QUOTE_IP_LIMIT" default:"10"`
}

type MigrateConfig struct {
	AutoRun bool   `envconfig:"QUOTEDESK_MIGRATE_AUTORUN" default:"false"`
	Dir     string `envconfig:"QUOTEDESK_MIGRATE_DIR" default:"pkg/migrate/migrations"`
}
