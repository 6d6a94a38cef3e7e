package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "AUTOSERVICE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	HTTP         HTTPConfig
	FeatureFlags FeatureFlagsConfig
	Invoice      InvoiceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.DSN == "" && !cfg.FeatureFlags.UseSQLite {
		return nil, fmt.Errorf("AUTOSERVICE_DB_DSN is required unless sqlite mode is enabled")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AUTOSERVICE_APP_ENV" default:"dev"`
	Port         string `envconfig:"AUTOSERVICE_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"AUTOSERVICE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTOSERVICE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOSERVICE_DB_DSN"`
	Driver string `envconfig:"AUTOSERVICE_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"AUTOSERVICE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUTOSERVICE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOSERVICE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOSERVICE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOSERVICE_REDIS_URL"`
	Address      string        `envconfig:"AUTOSERVICE_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOSERVICE_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOSERVICE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOSERVICE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOSERVICE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOSERVICE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOSERVICE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOSERVICE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint is configured at all. The API
// degrades to uncached reads when it is not.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type HTTPConfig struct {
	CORSOrigins []string `envconfig:"AUTOSERVICE_CORS_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"AUTOSERVICE_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"AUTOSERVICE_SQLITE_PATH" default:"autoservice.db"`
	AutoMigrate bool   `envconfig:"AUTOSERVICE_AUTO_MIGRATE" default:"false"`
}

type InvoiceConfig struct {
	SellerName    string `envconfig:"AUTOSERVICE_INVOICE_SELLER_NAME" default:"AutoService Manager"`
	SellerAddress string `envconfig:"AUTOSERVICE_INVOICE_SELLER_ADDRESS" default:""`
	FooterNote    string `envconfig:"AUTOSERVICE_INVOICE_FOOTER_NOTE" default:"Thank you for choosing our workshop."`
}
