package service

import (
	"context"
	"fmt"

	"gw-wallet-core/internal/storages"
)

// Административные действия над транзакциями
const (
	AdminActionApprove = "approve"
	AdminActionDecline = "decline"
	AdminActionReverse = "reverse"
)

// adminActions задает разрешенные административные действия по текущему
// статусу транзакции
var adminActions = map[string][]string{
	storages.TransactionStatusPending:   {AdminActionApprove, AdminActionDecline},
	storages.TransactionStatusCompleted: {AdminActionReverse},
}

// AdminTransactionAction применяет административное действие к транзакции.
// Действие вне allow-list для текущего статуса отклоняется с указанием
// запрещенного перехода. reverse дебета по кошельку возвращает списанную
// сумму компенсирующим кредитом атомарно со сменой статуса.
func (s *WalletService) AdminTransactionAction(ctx context.Context, txID int64, action string) (*storages.Transaction, error) {
	tx, err := s.storage.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, a := range adminActions[tx.Status] {
		if a == action {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: action %q is not allowed for status %q",
			storages.ErrInvalidTransition, action, tx.Status)
	}

	var updated *storages.Transaction
	switch action {
	case AdminActionApprove:
		status := storages.TransactionStatusCompleted
		updated, err = s.storage.UpdateTransaction(ctx, tx.ID, storages.TransactionUpdate{Status: &status})
	case AdminActionDecline:
		// Транзакции в pending баланс еще не трогали (списания идут
		// в processing), поэтому отклонение — чистая смена статуса
		status := storages.TransactionStatusFailed
		updated, err = s.storage.UpdateTransaction(ctx, tx.ID, storages.TransactionUpdate{Status: &status})
	case AdminActionReverse:
		updated, err = s.storage.ExecuteReversal(ctx, tx.ID)
	}
	if err != nil {
		return nil, err
	}

	var currency string
	if updated.WalletID != nil {
		if wallet, werr := s.storage.GetWallet(ctx, *updated.WalletID); werr == nil {
			currency = s.currencyCode(ctx, wallet.CurrencyID)
		}
	}
	s.notify(ctx, updated.UserID, updated.Reference, "admin_"+action, updated.Status, updated.Total, currency)

	s.logger.Infof("Admin action %s applied to transaction %d (status: %s)", action, updated.ID, updated.Status)
	return updated, nil
}
