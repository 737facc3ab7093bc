package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gw-wallet-core/internal/storages"
)

// CreateWalletsForUser создает кошельки пользователя для всех переданных валют
// вместе с нулевыми балансами — одной транзакцией БД на весь набор, чтобы
// пользователь не мог остаться с частью кошельков при сбое.
// Кошелек валюты defaultCode (или первой валюты, если такого кода нет)
// становится кошельком по умолчанию.
func (s *PostgresStorage) CreateWalletsForUser(ctx context.Context, userID int64, currencies []storages.Currency, defaultCode string) ([]storages.Wallet, error) {
	if len(currencies) == 0 {
		return nil, storages.ErrNoActiveCurrencies
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Проверяем, что кошельки еще не созданы
	var existing int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM wallets WHERE user_id = $1`, userID).Scan(&existing)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing wallets: %w", err)
	}
	if existing > 0 {
		return nil, storages.ErrWalletExists
	}

	// Определяем валюту кошелька по умолчанию
	defaultIdx := 0
	for i, c := range currencies {
		if c.Code == defaultCode {
			defaultIdx = i
			break
		}
	}

	now := time.Now()
	wallets := make([]storages.Wallet, 0, len(currencies))

	for i, currency := range currencies {
		wallet := storages.Wallet{
			UserID:     userID,
			CurrencyID: currency.ID,
			IsDefault:  i == defaultIdx,
			Status:     storages.WalletStatusActive,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO wallets (user_id, currency_id, is_default, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, wallet.UserID, wallet.CurrencyID, wallet.IsDefault, wallet.Status, now, now).Scan(&wallet.ID)

		if err != nil {
			s.logger.Errorf("Failed to create wallet for currency %s: %v", currency.Code, err)
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}

		// Нулевой активный баланс создается вместе с кошельком: у кошелька
		// всегда есть ровно одна активная строка баланса
		_, err = tx.ExecContext(ctx, `
			INSERT INTO balances (wallet_id, currency_id, amount, is_active, created_at)
			VALUES ($1, $2, 0, TRUE, $3)
		`, wallet.ID, wallet.CurrencyID, now)

		if err != nil {
			s.logger.Errorf("Failed to create initial balance for wallet %d: %v", wallet.ID, err)
			return nil, fmt.Errorf("failed to create initial balance: %w", err)
		}

		wallets = append(wallets, wallet)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Created %d wallets for user %d", len(wallets), userID)
	return wallets, nil
}

// GetWallet возвращает кошелек по ID
func (s *PostgresStorage) GetWallet(ctx context.Context, walletID int64) (*storages.Wallet, error) {
	return s.getWallet(ctx, "id = $1", walletID)
}

// GetWalletByUserAndCurrency возвращает кошелек пользователя в заданной валюте
func (s *PostgresStorage) GetWalletByUserAndCurrency(ctx context.Context, userID, currencyID int64) (*storages.Wallet, error) {
	return s.getWallet(ctx, "user_id = $1 AND currency_id = $2", userID, currencyID)
}

// GetDefaultWallet возвращает кошелек пользователя по умолчанию
func (s *PostgresStorage) GetDefaultWallet(ctx context.Context, userID int64) (*storages.Wallet, error) {
	return s.getWallet(ctx, "user_id = $1 AND is_default", userID)
}

// getWallet возвращает кошелек по произвольному условию
func (s *PostgresStorage) getWallet(ctx context.Context, condition string, args ...interface{}) (*storages.Wallet, error) {
	query := `
		SELECT id, user_id, currency_id, is_default, status, created_at, updated_at
		FROM wallets
		WHERE ` + condition

	var wallet storages.Wallet
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.CurrencyID,
		&wallet.IsDefault,
		&wallet.Status,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, storages.ErrWalletNotFound
	}

	if err != nil {
		s.logger.Errorf("Failed to get wallet: %v", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

// GetUserWallets возвращает все кошельки пользователя
func (s *PostgresStorage) GetUserWallets(ctx context.Context, userID int64) ([]storages.Wallet, error) {
	query := `
		SELECT id, user_id, currency_id, is_default, status, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		s.logger.Errorf("Failed to query wallets: %v", err)
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []storages.Wallet
	for rows.Next() {
		var wallet storages.Wallet
		err := rows.Scan(
			&wallet.ID,
			&wallet.UserID,
			&wallet.CurrencyID,
			&wallet.IsDefault,
			&wallet.Status,
			&wallet.CreatedAt,
			&wallet.UpdatedAt,
		)
		if err != nil {
			s.logger.Errorf("Failed to scan wallet: %v", err)
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, wallet)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating wallets: %v", err)
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	return wallets, nil
}

// SetDefaultWallet делает кошелек кошельком по умолчанию. Сброс старого
// и установка нового флага выполняются одной транзакцией БД, чтобы читатели
// не увидели ни нуля, ни двух кошельков по умолчанию.
func (s *PostgresStorage) SetDefaultWallet(ctx context.Context, userID, walletID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Кошелек должен принадлежать пользователю
	var ownerID int64
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM wallets WHERE id = $1 FOR UPDATE`, walletID).Scan(&ownerID)
	if err == sql.ErrNoRows || (err == nil && ownerID != userID) {
		return storages.ErrWalletNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE wallets SET is_default = FALSE, updated_at = $1
		WHERE user_id = $2 AND is_default
	`, now, userID)
	if err != nil {
		s.logger.Errorf("Failed to clear default wallet: %v", err)
		return fmt.Errorf("failed to clear default wallet: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets SET is_default = TRUE, updated_at = $1
		WHERE id = $2
	`, now, walletID)
	if err != nil {
		s.logger.Errorf("Failed to set default wallet: %v", err)
		return fmt.Errorf("failed to set default wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Set default wallet for user %d: wallet %d", userID, walletID)
	return nil
}

// UpdateWalletStatus обновляет статус кошелька
func (s *PostgresStorage) UpdateWalletStatus(ctx context.Context, walletID int64, status string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE wallets SET status = $1, updated_at = $2
		WHERE id = $3
	`, status, time.Now(), walletID)

	if err != nil {
		s.logger.Errorf("Failed to update wallet status: %v", err)
		return fmt.Errorf("failed to update wallet status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return storages.ErrWalletNotFound
	}

	s.logger.Infof("Updated wallet %d status to %s", walletID, status)
	return nil
}
