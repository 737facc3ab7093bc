package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gw-wallet-core/internal/storages"
)

const requestColumns = `
	id, reference, requester_id, requester_wallet_id, target_user_id,
	amount, description, status, expires_at, settlement_tx_id, created_at, responded_at
`

// scanMoneyRequest читает одну строку запроса на перевод
func scanMoneyRequest(row scanner) (*storages.MoneyRequest, error) {
	var req storages.MoneyRequest
	err := row.Scan(
		&req.ID,
		&req.Reference,
		&req.RequesterID,
		&req.RequesterWalletID,
		&req.TargetUserID,
		&req.Amount,
		&req.Description,
		&req.Status,
		&req.ExpiresAt,
		&req.SettlementTxID,
		&req.CreatedAt,
		&req.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateMoneyRequest создает ожидающий запрос на перевод.
// Никакого движения денег при создании не происходит — это чистая
// запись намерения.
func (s *PostgresStorage) CreateMoneyRequest(ctx context.Context, req *storages.MoneyRequest) error {
	if req.Reference == "" {
		req.Reference = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = storages.RequestStatusPending
	}

	now := time.Now()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO money_requests (
			reference, requester_id, requester_wallet_id, target_user_id,
			amount, description, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		req.Reference, req.RequesterID, req.RequesterWalletID, req.TargetUserID,
		req.Amount.Round(4), req.Description, req.Status, req.ExpiresAt, now,
	).Scan(&req.ID)

	if err != nil {
		s.logger.Errorf("Failed to create money request: %v", err)
		return fmt.Errorf("failed to create money request: %w", err)
	}

	req.CreatedAt = now

	s.logger.Infof("Created money request: ID=%d, requester=%d, target=%d, amount=%s",
		req.ID, req.RequesterID, req.TargetUserID, req.Amount.StringFixed(4))
	return nil
}

// GetPendingMoneyRequest возвращает ожидающий запрос, адресованный
// указанному пользователю. Уже обработанные запросы не находятся —
// повторный ответ на один запрос невозможен.
func (s *PostgresStorage) GetPendingMoneyRequest(ctx context.Context, requestID, targetUserID int64) (*storages.MoneyRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM money_requests
		WHERE id = $1 AND target_user_id = $2 AND status = $3
	`

	req, err := scanMoneyRequest(s.db.QueryRowContext(ctx, query, requestID, targetUserID, storages.RequestStatusPending))
	if err == sql.ErrNoRows {
		return nil, storages.ErrRequestNotFound
	}
	if err != nil {
		s.logger.Errorf("Failed to get money request: %v", err)
		return nil, fmt.Errorf("failed to get money request: %w", err)
	}

	return req, nil
}

// ListPendingMoneyRequests возвращает входящие ожидающие запросы пользователя
func (s *PostgresStorage) ListPendingMoneyRequests(ctx context.Context, targetUserID int64) ([]storages.MoneyRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM money_requests
		WHERE target_user_id = $1 AND status = $2
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, targetUserID, storages.RequestStatusPending)
	if err != nil {
		s.logger.Errorf("Failed to query money requests: %v", err)
		return nil, fmt.Errorf("failed to query money requests: %w", err)
	}
	defer rows.Close()

	var requests []storages.MoneyRequest
	for rows.Next() {
		req, err := scanMoneyRequest(rows)
		if err != nil {
			s.logger.Errorf("Failed to scan money request: %v", err)
			return nil, fmt.Errorf("failed to scan money request: %w", err)
		}
		requests = append(requests, *req)
	}

	if err = rows.Err(); err != nil {
		s.logger.Errorf("Error iterating money requests: %v", err)
		return nil, fmt.Errorf("error iterating money requests: %w", err)
	}

	return requests, nil
}

// FailMoneyRequest переводит ожидающий запрос в терминальный статус
// (rejected или expired). Запрос, уже покинувший pending, не находится.
func (s *PostgresStorage) FailMoneyRequest(ctx context.Context, requestID int64, status string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE money_requests
		SET status = $1, responded_at = $2
		WHERE id = $3 AND status = $4
	`, status, time.Now(), requestID, storages.RequestStatusPending)

	if err != nil {
		s.logger.Errorf("Failed to fail money request: %v", err)
		return fmt.Errorf("failed to update money request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return storages.ErrRequestNotFound
	}

	s.logger.Infof("Money request %d marked %s", requestID, status)
	return nil
}
