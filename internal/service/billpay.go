package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gw-wallet-core/internal/provider"
	"gw-wallet-core/internal/storages"
)

// BillPaymentInput параметры оплаты счета
type BillPaymentInput struct {
	WalletID      int64
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	ProductID     *int64
	ProviderID    *int64
	Action        string
	PaymentMethod string
	ServiceData   map[string]interface{}
}

// PayBill оплачивает счет с кошелька в две фазы:
//  1. атомарно списывает total = amount + fee и фиксирует дебетовую
//     транзакцию в статусе processing (коммит до обращения к провайдеру);
//  2. вызывает провайдера вне открытой транзакции БД;
//  3. атомарно завершает транзакцию по ответу провайдера; при провале
//     компенсирующий кредит возвращается на кошелек в той же транзакции
//     БД, что и смена статуса.
//
// Транспортная ошибка провайдера оставляет транзакцию в processing:
// исход неизвестен, возврат средств до подтверждения провала мог бы
// привести к двойной оплате. Такие транзакции досводит вебхук провайдера
// (ResolveProviderResult).
func (s *WalletService) PayBill(ctx context.Context, userID int64, input BillPaymentInput) (*storages.Transaction, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if input.Fee.IsNegative() {
		return nil, fmt.Errorf("fee must not be negative")
	}

	wallet, err := s.storage.GetWallet(ctx, input.WalletID)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != userID {
		return nil, storages.ErrWalletNotFound
	}
	if wallet.Status != storages.WalletStatusActive {
		return nil, storages.ErrWalletNotActive
	}

	category, err := s.category(ctx, storages.CategoryBillPayment)
	if err != nil {
		return nil, err
	}

	total := input.Amount.Add(input.Fee)
	balance, err := s.storage.GetActiveBalance(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}
	if balance.Amount.Cmp(total) < 0 {
		return nil, fmt.Errorf("%w: have %s, need %s",
			storages.ErrInsufficientFunds, balance.Amount.StringFixed(4), total.StringFixed(4))
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "wallet"
	}

	// Фаза 1: атомарное списание + запись транзакции, коммит
	reference := uuid.NewString()
	tx, err := s.storage.ExecuteDebit(ctx, &storages.WalletDebit{
		UserID:        userID,
		WalletID:      wallet.ID,
		Amount:        input.Amount,
		Fee:           input.Fee,
		CategoryID:    category.ID,
		ProductID:     input.ProductID,
		ProviderID:    input.ProviderID,
		Reference:     reference,
		Status:        storages.TransactionStatusProcessing,
		PaymentMethod: paymentMethod,
		ServiceData:   input.ServiceData,
	})
	if err != nil {
		return nil, err
	}

	// Фаза 2: вызов провайдера вне транзакции БД
	payload := make(map[string]interface{}, len(input.ServiceData)+1)
	for k, v := range input.ServiceData {
		payload[k] = v
	}
	payload["reference"] = reference

	result, err := s.gateway.Execute(ctx, input.Action, payload)
	if err != nil {
		// Исход неизвестен: оставляем processing до вебхука/сверки
		s.logger.Warnf("Provider call failed for Ref=%s, leaving transaction processing: %v", reference, err)
		return tx, nil
	}

	// Фаза 3: атомарное завершение по ответу провайдера
	return s.finalizeBillPayment(ctx, tx, result, wallet.CurrencyID)
}

// ResolveProviderResult досводит дебетовую транзакцию по уведомлению
// провайдера (вебхук). Использует тот же путь завершения, что и прямой
// поток оплаты: провал после списания всегда означает возврат средств.
func (s *WalletService) ResolveProviderResult(ctx context.Context, reference, status string, providerData map[string]interface{}) (*storages.Transaction, error) {
	tx, err := s.storage.GetTransactionByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	// Досводятся только незавершенные списания. Уведомление по уже
	// завершенной транзакции (повторная доставка, чужой reference)
	// игнорируется и ее provider_data не трогает.
	if tx.Status != storages.TransactionStatusProcessing {
		s.logger.Warnf("Ignoring provider notification for non-processing transaction Ref=%s (status: %s)", reference, tx.Status)
		return tx, nil
	}

	result := &provider.Result{
		Status:    status,
		Reference: reference,
		Raw:       providerData,
	}

	var currencyID int64
	if tx.WalletID != nil {
		if wallet, err := s.storage.GetWallet(ctx, *tx.WalletID); err == nil {
			currencyID = wallet.CurrencyID
		}
	}

	return s.finalizeBillPayment(ctx, tx, result, currencyID)
}

// finalizeBillPayment отображает трехзначный статус провайдера на статус
// транзакции и применяет его атомарно вместе с компенсацией при провале
func (s *WalletService) finalizeBillPayment(ctx context.Context, tx *storages.Transaction, result *provider.Result, currencyID int64) (*storages.Transaction, error) {
	var status string
	switch result.Status {
	case provider.StatusSuccess:
		status = storages.TransactionStatusCompleted
	case provider.StatusFailed:
		status = storages.TransactionStatusFailed
	case provider.StatusPending:
		// Провайдер еще не определился: фиксируем его данные,
		// статус остается processing
		status = storages.TransactionStatusProcessing
	default:
		return nil, fmt.Errorf("unknown provider status: %s", result.Status)
	}

	providerData := storages.JSONMap{
		"status":    result.Status,
		"reference": result.Reference,
	}
	if result.Raw != nil {
		providerData["raw"] = result.Raw
	}

	updated, err := s.storage.FinalizeDebit(ctx, tx.ID, status, providerData)
	if err != nil {
		return nil, err
	}

	if status != storages.TransactionStatusProcessing {
		currency := s.currencyCode(ctx, currencyID)
		s.notify(ctx, updated.UserID, updated.Reference, "bill_payment", updated.Status, updated.Total, currency)
	}

	return updated, nil
}
