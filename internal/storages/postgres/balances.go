package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gw-wallet-core/internal/storages"
)

// GetActiveBalance возвращает активную строку баланса кошелька.
// Ее отсутствие — нарушение целостности данных: у свежего кошелька
// есть активная строка с нулем, а не ничего.
func (s *PostgresStorage) GetActiveBalance(ctx context.Context, walletID int64) (*storages.Balance, error) {
	query := `
		SELECT id, wallet_id, currency_id, amount, is_active, created_at
		FROM balances
		WHERE wallet_id = $1 AND is_active
	`

	var balance storages.Balance
	err := s.db.QueryRowContext(ctx, query, walletID).Scan(
		&balance.ID,
		&balance.WalletID,
		&balance.CurrencyID,
		&balance.Amount,
		&balance.IsActive,
		&balance.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: wallet %d", storages.ErrBalanceNotFound, walletID)
	}

	if err != nil {
		s.logger.Errorf("Failed to get balance: %v", err)
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &balance, nil
}

// lockActiveBalance читает активную строку баланса с блокировкой строки
// (SELECT ... FOR UPDATE) в рамках транзакции БД. Конкурентные операции
// над одним кошельком сериализуются на этой блокировке.
func lockActiveBalance(ctx context.Context, tx *sql.Tx, walletID int64) (*storages.Balance, error) {
	var balance storages.Balance
	err := tx.QueryRowContext(ctx, `
		SELECT id, wallet_id, currency_id, amount, is_active, created_at
		FROM balances
		WHERE wallet_id = $1 AND is_active
		FOR UPDATE
	`, walletID).Scan(
		&balance.ID,
		&balance.WalletID,
		&balance.CurrencyID,
		&balance.Amount,
		&balance.IsActive,
		&balance.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: wallet %d", storages.ErrBalanceNotFound, walletID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to lock balance: %w", err)
	}

	return &balance, nil
}

// replaceBalance деактивирует текущую активную строку баланса и вставляет
// новую активную строку с суммой newAmount. Единственное место, где
// изменяется баланс: инвариант "ровно одна активная строка на кошелек"
// и запрет отрицательного баланса обеспечиваются здесь.
func replaceBalance(ctx context.Context, tx *sql.Tx, current *storages.Balance, newAmount decimal.Decimal) error {
	if newAmount.IsNegative() {
		return fmt.Errorf("%w: wallet %d", storages.ErrInsufficientFunds, current.WalletID)
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE balances SET is_active = FALSE WHERE id = $1
	`, current.ID)
	if err != nil {
		return fmt.Errorf("failed to deactivate balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO balances (wallet_id, currency_id, amount, is_active, created_at)
		VALUES ($1, $2, $3, TRUE, $4)
	`, current.WalletID, current.CurrencyID, newAmount.Round(4), time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert balance: %w", err)
	}

	return nil
}

// creditBalance увеличивает баланс кошелька на amount в рамках транзакции БД
func creditBalance(ctx context.Context, tx *sql.Tx, walletID int64, amount decimal.Decimal) error {
	balance, err := lockActiveBalance(ctx, tx, walletID)
	if err != nil {
		return err
	}
	return replaceBalance(ctx, tx, balance, balance.Amount.Add(amount))
}
