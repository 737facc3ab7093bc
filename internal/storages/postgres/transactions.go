package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gw-wallet-core/internal/storages"
)

// dbtx объединяет *sql.DB и *sql.Tx для общих запросов
type dbtx interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const transactionColumns = `
	id, reference, user_id, wallet_id, category_id, product_id, provider_id,
	type, status, amount, fee, total, payment_method,
	service_data, provider_data, metadata, created_at, completed_at
`

// scanner абстрагирует *sql.Row и *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTransaction читает одну строку транзакции
func scanTransaction(row scanner) (*storages.Transaction, error) {
	var tx storages.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.Reference,
		&tx.UserID,
		&tx.WalletID,
		&tx.CategoryID,
		&tx.ProductID,
		&tx.ProviderID,
		&tx.Type,
		&tx.Status,
		&tx.Amount,
		&tx.Fee,
		&tx.Total,
		&tx.PaymentMethod,
		&tx.ServiceData,
		&tx.ProviderData,
		&tx.Metadata,
		&tx.CreatedAt,
		&tx.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// insertTransaction вставляет транзакцию через db или открытую транзакцию БД.
// Вычисляет total = amount + fee, генерирует reference и проставляет
// completed_at, если транзакция создается сразу завершенной.
func insertTransaction(ctx context.Context, q dbtx, tx *storages.Transaction) error {
	if tx.Reference == "" {
		tx.Reference = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = storages.TransactionStatusPending
	}
	tx.Total = tx.Amount.Add(tx.Fee).Round(4)

	now := time.Now()
	if tx.Status == storages.TransactionStatusCompleted && tx.CompletedAt == nil {
		tx.CompletedAt = &now
	}

	err := q.QueryRowContext(ctx, `
		INSERT INTO transactions (
			reference, user_id, wallet_id, category_id, product_id, provider_id,
			type, status, amount, fee, total, payment_method,
			service_data, provider_data, metadata, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`,
		tx.Reference, tx.UserID, tx.WalletID, tx.CategoryID, tx.ProductID, tx.ProviderID,
		tx.Type, tx.Status, tx.Amount.Round(4), tx.Fee.Round(4), tx.Total, tx.PaymentMethod,
		tx.ServiceData, tx.ProviderData, tx.Metadata, now, tx.CompletedAt,
	).Scan(&tx.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	tx.CreatedAt = now
	return nil
}

// CreateTransaction создает новую транзакцию
func (s *PostgresStorage) CreateTransaction(ctx context.Context, tx *storages.Transaction) error {
	if err := insertTransaction(ctx, s.db, tx); err != nil {
		s.logger.Errorf("Failed to create transaction: %v", err)
		return err
	}

	s.logger.Infof("Created transaction: ID=%d, Ref=%s, Type=%s, User=%d", tx.ID, tx.Reference, tx.Type, tx.UserID)
	return nil
}

// GetTransaction возвращает транзакцию по ID
func (s *PostgresStorage) GetTransaction(ctx context.Context, txID int64) (*storages.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, txID))
	if err == sql.ErrNoRows {
		return nil, storages.ErrTransactionNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to get transaction: %v", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// GetTransactionByReference возвращает транзакцию по уникальному reference
func (s *PostgresStorage) GetTransactionByReference(ctx context.Context, reference string) (*storages.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1 AND type = 'debit'`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, reference))
	if err == sql.ErrNoRows {
		return nil, storages.ErrTransactionNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to get transaction by reference: %v", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// GetUserTransactions возвращает транзакции пользователя
func (s *PostgresStorage) GetUserTransactions(ctx context.Context, userID int64, limit int) ([]storages.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		s.logger.Errorf("Failed to query transactions: %v", err)
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []storages.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			s.logger.Errorf("Failed to scan transaction: %v", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating transactions: %v", err)
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// UpdateTransaction частично обновляет транзакцию. Смена статуса проходит
// через allow-list переходов; completed_at проставляется при первом
// переходе в completed.
func (s *PostgresStorage) UpdateTransaction(ctx context.Context, txID int64, upd storages.TransactionUpdate) (*storages.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	tx, err := lockTransaction(ctx, dbTx, txID)
	if err != nil {
		return nil, err
	}

	if err := applyTransactionUpdate(ctx, dbTx, tx, upd); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debugf("Updated transaction %d (status: %s)", tx.ID, tx.Status)
	return tx, nil
}

// lockTransaction читает транзакцию с блокировкой строки
func lockTransaction(ctx context.Context, dbTx *sql.Tx, txID int64) (*storages.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	tx, err := scanTransaction(dbTx.QueryRowContext(ctx, query, txID))
	if err == sql.ErrNoRows {
		return nil, storages.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock transaction: %w", err)
	}

	return tx, nil
}

// applyTransactionUpdate применяет частичное обновление к заблокированной
// строке транзакции; tx обновляется на месте
func applyTransactionUpdate(ctx context.Context, dbTx *sql.Tx, tx *storages.Transaction, upd storages.TransactionUpdate) error {
	if upd.Status != nil && *upd.Status != tx.Status {
		if !storages.CanTransition(tx.Status, *upd.Status) {
			return fmt.Errorf("%w: %s -> %s", storages.ErrInvalidTransition, tx.Status, *upd.Status)
		}
		tx.Status = *upd.Status
		if tx.Status == storages.TransactionStatusCompleted && tx.CompletedAt == nil {
			now := time.Now()
			tx.CompletedAt = &now
		}
	}
	if upd.ProviderData != nil {
		tx.ProviderData = upd.ProviderData
	}
	if upd.Metadata != nil {
		tx.Metadata = upd.Metadata
	}

	_, err := dbTx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, provider_data = $2, metadata = $3, completed_at = $4
		WHERE id = $5
	`, tx.Status, tx.ProviderData, tx.Metadata, tx.CompletedAt, tx.ID)

	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return nil
}
