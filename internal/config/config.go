// Package config содержит логику чтения конфигурации симулятора SimuShop.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config содержит параметры конфигурации симулятора. Суммы указаны в центах.
type Config struct {
	RunAddress           string `env:"RUN_ADDRESS"`
	DatabaseURI          string `env:"DATABASE_URI"`
	PaymentSystemAddress string `env:"PAYMENT_SYSTEM_ADDRESS"`
	RedisAddress         string `env:"REDIS_ADDRESS"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	CookieSecret         string `env:"COOKIE_SECRET"`
	LogLevel             string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	TickInterval       time.Duration `env:"TICK_INTERVAL" envDefault:"1s" validate:"gt=0"`
	InitialBalance     int64         `env:"INITIAL_BALANCE" envDefault:"10000" validate:"gte=0"`
	PrimeFee           int64         `env:"PRIME_FEE" envDefault:"1499" validate:"gte=0"`
	SalesTaxRate       float64       `env:"SALES_TAX_RATE" envDefault:"0.105" validate:"gte=0,lt=1"`
	ShippingFee        int64         `env:"SHIPPING_FEE" envDefault:"0" validate:"gte=0"`
	ProcessingDays     int           `env:"PROCESSING_DAYS" envDefault:"5" validate:"gte=0"`
	NormalShippingDays int           `env:"NORMAL_SHIPPING_DAYS" envDefault:"30" validate:"gte=0"`
	PrimeShippingDays  int           `env:"PRIME_SHIPPING_DAYS" envDefault:"10" validate:"gte=0"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20" validate:"gt=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40" validate:"gt=0"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envPaymentAddress := cfg.PaymentSystemAddress
	envRedisAddress := cfg.RedisAddress

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.PaymentSystemAddress, "r", "", "payment gateway address")
	flag.StringVar(&cfg.RedisAddress, "k", "", "redis address")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envPaymentAddress != "" {
		cfg.PaymentSystemAddress = envPaymentAddress
	}
	if envRedisAddress != "" {
		cfg.RedisAddress = envRedisAddress
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Day возвращает число дней как длительность симуляции.
func Day(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}
