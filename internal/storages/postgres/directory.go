package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"gw-wallet-core/internal/storages"
)

// ListActiveCurrencies возвращает все активные валюты из справочника
func (s *PostgresStorage) ListActiveCurrencies(ctx context.Context) ([]storages.Currency, error) {
	query := `
		SELECT id, code, symbol, name, is_active
		FROM currencies
		WHERE is_active
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Errorf("Failed to query currencies: %v", err)
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	var currencies []storages.Currency
	for rows.Next() {
		var c storages.Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Symbol, &c.Name, &c.IsActive); err != nil {
			s.logger.Errorf("Failed to scan currency: %v", err)
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating currencies: %v", err)
		return nil, fmt.Errorf("error iterating currencies: %w", err)
	}

	return currencies, nil
}

// GetCategoryByCode возвращает системную категорию транзакций по коду.
// Отсутствие категории — ошибка конфигурации развертывания.
func (s *PostgresStorage) GetCategoryByCode(ctx context.Context, code string) (*storages.Category, error) {
	query := `
		SELECT id, code, name
		FROM transaction_categories
		WHERE code = $1
	`

	var category storages.Category
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&category.ID,
		&category.Code,
		&category.Name,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", storages.ErrCategoryNotFound, code)
	}

	if err != nil {
		s.logger.Errorf("Failed to get category: %v", err)
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}
