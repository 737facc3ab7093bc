package config

import "time"

// Server defaults
const (
	DefaultHTTPPort = "8080"
	DefaultGinMode  = "release"
	DefaultLogLevel = "info"
)

// Database defaults
const (
	DefaultDBHost            = "localhost"
	DefaultDBPort            = 5432
	DefaultDBUser            = "wallet_user"
	DefaultDBPassword        = "wallet_password"
	DefaultDBName            = "wallet_core_db"
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 25
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 5 * time.Minute
)

// JWT defaults
const (
	DefaultJWTSecret     = "change-me-in-production"
	DefaultJWTExpiration = 24 * time.Hour
)

// Provider gateway defaults
const (
	DefaultProviderBaseURL = "http://localhost:9090"
	DefaultProviderTimeout = 30 * time.Second
)

// Cache defaults
const (
	DefaultCacheDirectoryTTL = 10 * time.Minute
)

// Kafka defaults
const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultKafkaTopic   = "transaction-events"
)

// Wallet defaults
const (
	// DefaultCurrencyCode валюта кошелька по умолчанию при регистрации;
	// при отсутствии в справочнике используется первая активная валюта
	DefaultCurrencyCode = "NGN"
)
