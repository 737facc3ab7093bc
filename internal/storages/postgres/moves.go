package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gw-wallet-core/internal/storages"
)

// ExecuteDualMove атомарно перемещает деньги между двумя кошельками:
// дебет источника, кредит получателя и вставка пары транзакций с общим
// reference — либо все вместе, либо ничего. Единственный примитив
// двустороннего движения: им пользуются и перевод, и принятие запроса
// на перевод, поэтому неотрицательность и атомарность проверяются
// ровно в одном месте.
func (s *PostgresStorage) ExecuteDualMove(ctx context.Context, mv *storages.DualMove) (*storages.Transaction, *storages.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	// 1. Блокируем оба баланса в порядке возрастания ID кошелька, чтобы
	// встречные переводы по одной паре кошельков не взаимоблокировались
	balances := make(map[int64]*storages.Balance, 2)
	for _, walletID := range lockOrder(mv.FromWalletID, mv.ToWalletID) {
		balance, err := lockActiveBalance(ctx, dbTx, walletID)
		if err != nil {
			return nil, nil, err
		}
		balances[walletID] = balance
	}

	from := balances[mv.FromWalletID]
	to := balances[mv.ToWalletID]

	// 2. Проверяем достаточность средств до любой мутации
	if from.Amount.Cmp(mv.Amount) < 0 {
		return nil, nil, fmt.Errorf("%w: have %s, need %s",
			storages.ErrInsufficientFunds, from.Amount.StringFixed(4), mv.Amount.StringFixed(4))
	}

	// 3. Списываем с источника и зачисляем получателю
	if err := replaceBalance(ctx, dbTx, from, from.Amount.Sub(mv.Amount)); err != nil {
		return nil, nil, err
	}
	if err := replaceBalance(ctx, dbTx, to, to.Amount.Add(mv.Amount)); err != nil {
		return nil, nil, err
	}

	// 4. Вставляем дебетовую и кредитовую транзакции с общим reference
	debitWalletID := mv.FromWalletID
	debit := &storages.Transaction{
		Reference:     mv.Reference,
		UserID:        mv.FromUserID,
		WalletID:      &debitWalletID,
		CategoryID:    mv.CategoryID,
		Type:          storages.TransactionTypeDebit,
		Status:        storages.TransactionStatusCompleted,
		Amount:        mv.Amount,
		PaymentMethod: "wallet",
		Metadata: storages.JSONMap{
			"recipient_id": mv.ToUserID,
			"description":  mv.Description,
		},
	}
	if err := insertTransaction(ctx, dbTx, debit); err != nil {
		return nil, nil, err
	}

	creditWalletID := mv.ToWalletID
	credit := &storages.Transaction{
		Reference:     mv.Reference,
		UserID:        mv.ToUserID,
		WalletID:      &creditWalletID,
		CategoryID:    mv.CategoryID,
		Type:          storages.TransactionTypeCredit,
		Status:        storages.TransactionStatusCompleted,
		Amount:        mv.Amount,
		PaymentMethod: "wallet",
		Metadata: storages.JSONMap{
			"sender_id":   mv.FromUserID,
			"description": mv.Description,
		},
	}
	if err := insertTransaction(ctx, dbTx, credit); err != nil {
		return nil, nil, err
	}

	// 5. При расчете по запросу на перевод атомарно помечаем запрос принятым
	if mv.RequestID != nil {
		result, err := dbTx.ExecContext(ctx, `
			UPDATE money_requests
			SET status = $1, settlement_tx_id = $2, responded_at = $3
			WHERE id = $4 AND status = $5
		`, storages.RequestStatusAccepted, debit.ID, time.Now(), *mv.RequestID, storages.RequestStatusPending)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to accept money request: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return nil, nil, storages.ErrRequestNotFound
		}
	}

	if err := dbTx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Dual move completed: %s %d -> %d, Ref=%s",
		mv.Amount.StringFixed(4), mv.FromWalletID, mv.ToWalletID, mv.Reference)

	return debit, credit, nil
}

// lockOrder возвращает пару ID кошельков в порядке возрастания
func lockOrder(a, b int64) [2]int64 {
	if a < b {
		return [2]int64{a, b}
	}
	return [2]int64{b, a}
}

// ExecuteDebit атомарно списывает total = amount + fee с кошелька и вставляет
// дебетовую транзакцию (первая фаза оплаты счета: списание фиксируется до
// обращения к провайдеру, вызов провайдера идет вне транзакции БД)
func (s *PostgresStorage) ExecuteDebit(ctx context.Context, mv *storages.WalletDebit) (*storages.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	balance, err := lockActiveBalance(ctx, dbTx, mv.WalletID)
	if err != nil {
		return nil, err
	}

	total := mv.Amount.Add(mv.Fee)
	if balance.Amount.Cmp(total) < 0 {
		return nil, fmt.Errorf("%w: have %s, need %s",
			storages.ErrInsufficientFunds, balance.Amount.StringFixed(4), total.StringFixed(4))
	}

	if err := replaceBalance(ctx, dbTx, balance, balance.Amount.Sub(total)); err != nil {
		return nil, err
	}

	walletID := mv.WalletID
	tx := &storages.Transaction{
		Reference:     mv.Reference,
		UserID:        mv.UserID,
		WalletID:      &walletID,
		CategoryID:    mv.CategoryID,
		ProductID:     mv.ProductID,
		ProviderID:    mv.ProviderID,
		Type:          storages.TransactionTypeDebit,
		Status:        mv.Status,
		Amount:        mv.Amount,
		Fee:           mv.Fee,
		PaymentMethod: mv.PaymentMethod,
		ServiceData:   mv.ServiceData,
		Metadata:      mv.Metadata,
	}
	if err := insertTransaction(ctx, dbTx, tx); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Debit executed: wallet %d, total %s, Ref=%s", mv.WalletID, total.StringFixed(4), tx.Reference)
	return tx, nil
}

// FinalizeDebit завершает ранее списанную дебетовую транзакцию по итогу
// вызова провайдера. При терминальном провале (failed) компенсирующий
// кредит возвращается на кошелек в той же транзакции БД, что и смена
// статуса: списание без пути компенсации не существует.
func (s *PostgresStorage) FinalizeDebit(ctx context.Context, txID int64, status string, providerData storages.JSONMap) (*storages.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	tx, err := lockTransaction(ctx, dbTx, txID)
	if err != nil {
		return nil, err
	}

	prevStatus := tx.Status

	upd := storages.TransactionUpdate{Status: &status, ProviderData: providerData}
	if err := applyTransactionUpdate(ctx, dbTx, tx, upd); err != nil {
		return nil, err
	}

	// Провал после списания требует возврата средств. Кредит привязан
	// к фактическому переходу строки в failed, а не к запрошенному
	// статусу: повторная доставка уведомления о провале не должна
	// возвращать деньги второй раз.
	if tx.Status == storages.TransactionStatusFailed && prevStatus != storages.TransactionStatusFailed &&
		tx.Type == storages.TransactionTypeDebit && tx.WalletID != nil {
		if err := creditBalance(ctx, dbTx, *tx.WalletID, tx.Total); err != nil {
			return nil, err
		}
		s.logger.Infof("Compensating credit applied: wallet %d, amount %s, Ref=%s",
			*tx.WalletID, tx.Total.StringFixed(4), tx.Reference)
	}

	if err := dbTx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Debit finalized: ID=%d, status=%s", tx.ID, status)
	return tx, nil
}

// ExecuteReversal отменяет завершенную транзакцию (completed -> reversed).
// Для дебета по кошельку компенсирующий кредит применяется в той же
// транзакции БД, что и смена статуса.
func (s *PostgresStorage) ExecuteReversal(ctx context.Context, txID int64) (*storages.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Errorf("Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	tx, err := lockTransaction(ctx, dbTx, txID)
	if err != nil {
		return nil, err
	}

	status := storages.TransactionStatusReversed
	if err := applyTransactionUpdate(ctx, dbTx, tx, storages.TransactionUpdate{Status: &status}); err != nil {
		return nil, err
	}

	if tx.Type == storages.TransactionTypeDebit && tx.WalletID != nil {
		if err := creditBalance(ctx, dbTx, *tx.WalletID, tx.Total); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(); err != nil {
		s.logger.Errorf("Failed to commit transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Infof("Transaction reversed: ID=%d, Ref=%s", tx.ID, tx.Reference)
	return tx, nil
}
