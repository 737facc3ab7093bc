package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Config содержит конфигурацию для подключения к PostgreSQL
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	logger *logrus.Logger
}

// New создает новое подключение к PostgreSQL
func New(cfg *Config, logger *logrus.Logger) (*PostgresStorage, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL")

	storage := &PostgresStorage{
		db:     db,
		logger: logger,
	}

	// Инициализация схемы БД
	if err := storage.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema создает необходимые таблицы, если они не существуют
func (s *PostgresStorage) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		email VARCHAR(100) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS currencies (
		id SERIAL PRIMARY KEY,
		code VARCHAR(3) UNIQUE NOT NULL,
		symbol VARCHAR(8) NOT NULL DEFAULT '',
		name VARCHAR(50) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS transaction_categories (
		id SERIAL PRIMARY KEY,
		code VARCHAR(32) UNIQUE NOT NULL,
		name VARCHAR(100) NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS wallets (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		currency_id INTEGER NOT NULL REFERENCES currencies(id),
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		status VARCHAR(16) NOT NULL DEFAULT 'active',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, currency_id)
	);

	CREATE TABLE IF NOT EXISTS balances (
		id SERIAL PRIMARY KEY,
		wallet_id INTEGER NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		currency_id INTEGER NOT NULL REFERENCES currencies(id),
		amount NUMERIC(20, 4) NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CHECK (amount >= 0)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id SERIAL PRIMARY KEY,
		reference VARCHAR(64) NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		wallet_id INTEGER REFERENCES wallets(id),
		category_id INTEGER NOT NULL REFERENCES transaction_categories(id),
		product_id INTEGER,
		provider_id INTEGER,
		type VARCHAR(10) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		amount NUMERIC(20, 4) NOT NULL,
		fee NUMERIC(20, 4) NOT NULL DEFAULT 0,
		total NUMERIC(20, 4) NOT NULL,
		payment_method VARCHAR(32) NOT NULL DEFAULT 'wallet',
		service_data JSONB,
		provider_data JSONB,
		metadata JSONB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		completed_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS money_requests (
		id SERIAL PRIMARY KEY,
		reference VARCHAR(64) UNIQUE NOT NULL,
		requester_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		requester_wallet_id INTEGER NOT NULL REFERENCES wallets(id),
		target_user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount NUMERIC(20, 4) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		expires_at TIMESTAMP,
		settlement_tx_id INTEGER REFERENCES transactions(id),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		responded_at TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_wallets_user_default ON wallets(user_id) WHERE is_default;
	CREATE UNIQUE INDEX IF NOT EXISTS idx_balances_wallet_active ON balances(wallet_id) WHERE is_active;
	CREATE INDEX IF NOT EXISTS idx_wallets_user ON wallets(user_id);
	CREATE INDEX IF NOT EXISTS idx_balances_wallet ON balances(wallet_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);
	-- reference разделяется дебетовой и кредитовой сторонами перевода,
	-- уникальность обеспечивается в пределах одного типа
	CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_reference_type ON transactions(reference, type);
	CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
	CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_money_requests_target ON money_requests(target_user_id, status);

	INSERT INTO currencies (code, symbol, name) VALUES
		('NGN', '₦', 'Nigerian Naira'),
		('USD', '$', 'US Dollar'),
		('EUR', '€', 'Euro')
	ON CONFLICT (code) DO NOTHING;

	INSERT INTO transaction_categories (code, name) VALUES
		('transfer', 'Wallet Transfer'),
		('money_request', 'Money Request'),
		('bill_payment', 'Bill Payment')
	ON CONFLICT (code) DO NOTHING;
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.logger.Info("Database schema initialized")
	return nil
}

// Close закрывает соединение с базой данных
func (s *PostgresStorage) Close() error {
	if s.db != nil {
		s.logger.Info("Closing database connection")
		return s.db.Close()
	}
	return nil
}

// Ping проверяет соединение с базой данных
func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
