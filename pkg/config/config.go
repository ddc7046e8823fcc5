package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopease/shopease-engine/pkg/enums"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Redis    RedisConfig
	API      APIConfig
	Checkout CheckoutConfig
	Orders   OrdersConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Checkout.PromoRegistry(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPEASE_APP_ENV" default:"dev"`
	Port         string `envconfig:"SHOPEASE_APP_PORT" default:"7780"`
	LogLevel     string `envconfig:"SHOPEASE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPEASE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StorageConfig struct {
	Driver     string `envconfig:"SHOPEASE_STORAGE_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"SHOPEASE_STORAGE_SQLITE_PATH" default:"shopease.db"`
	Namespace  string `envconfig:"SHOPEASE_STORAGE_NAMESPACE" default:"shopease"`
}

// DriverKind returns the parsed storage driver.
func (s StorageConfig) DriverKind() enums.StorageDriver {
	driver, err := enums.ParseStorageDriver(strings.ToLower(strings.TrimSpace(s.Driver)))
	if err != nil {
		return enums.StorageDriverSQLite
	}
	return driver
}

func (s StorageConfig) validate() error {
	driver := strings.ToLower(strings.TrimSpace(s.Driver))
	if _, err := enums.ParseStorageDriver(driver); err != nil {
		return err
	}
	if driver == string(enums.StorageDriverSQLite) && strings.TrimSpace(s.SQLitePath) == "" {
		return fmt.Errorf("sqlite storage requires %s", EnvStorageSQLitePath)
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPEASE_REDIS_URL"`
	Address      string        `envconfig:"SHOPEASE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPEASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPEASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPEASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPEASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPEASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPEASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPEASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type APIConfig struct {
	BaseURL string        `envconfig:"SHOPEASE_API_BASE_URL" default:"http://localhost:4000/api/v1"`
	Timeout time.Duration `envconfig:"SHOPEASE_API_TIMEOUT" default:"10s"`
}

type CheckoutConfig struct {
	DeliveryFee string `envconfig:"SHOPEASE_CHECKOUT_DELIVERY_FEE" default:"50"`
	// PromoCodes holds comma-separated CODE:RATE pairs, rate in [0,1].
	PromoCodes string `envconfig:"SHOPEASE_CHECKOUT_PROMO_CODES" default:"SHOP10:0.10"`
}

// FlatDeliveryFee parses the configured flat fee.
func (c CheckoutConfig) FlatDeliveryFee() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(strings.TrimSpace(c.DeliveryFee))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing delivery fee: %w", err)
	}
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("delivery fee must be non-negative")
	}
	return fee, nil
}

// PromoRegistry parses the configured promo code registry.
func (c CheckoutConfig) PromoRegistry() (map[string]decimal.Decimal, error) {
	registry := map[string]decimal.Decimal{}
	for _, pair := range strings.Split(c.PromoCodes, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid promo entry %q", pair)
		}
		code := strings.ToUpper(strings.TrimSpace(parts[0]))
		rate, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid promo rate in %q: %w", pair, err)
		}
		if rate < 0 || rate > 1 {
			return nil, fmt.Errorf("promo rate in %q must be within [0,1]", pair)
		}
		registry[code] = decimal.NewFromFloat(rate)
	}
	return registry, nil
}

type OrdersConfig struct {
	PollInterval time.Duration `envconfig:"SHOPEASE_ORDERS_POLL_INTERVAL" default:"15s"`
}
