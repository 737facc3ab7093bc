package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gw-wallet-core/internal/storages"
)

// Transfer переводит деньги между кошельками двух пользователей в одной
// валюте. Все проверки выполняются до любой мутации; само движение —
// один атомарный примитив: дебет отправителя, кредит получателя и пара
// транзакций с общим reference фиксируются либо все вместе, либо никак.
func (s *WalletService) Transfer(ctx context.Context, fromUserID, fromWalletID, toUserID int64, amount decimal.Decimal, description string) (*storages.Transaction, *storages.Transaction, error) {
	if !amount.IsPositive() {
		return nil, nil, fmt.Errorf("amount must be positive")
	}

	// 1. Кошелек отправителя: принадлежность и статус
	fromWallet, err := s.storage.GetWallet(ctx, fromWalletID)
	if err != nil {
		return nil, nil, err
	}
	if fromWallet.UserID != fromUserID {
		return nil, nil, storages.ErrWalletNotFound
	}
	if fromWallet.Status != storages.WalletStatusActive {
		return nil, nil, storages.ErrWalletNotActive
	}

	// 2. Достаточность средств проверяется до мутации (и повторно
	// под блокировкой внутри атомарного примитива)
	balance, err := s.storage.GetActiveBalance(ctx, fromWalletID)
	if err != nil {
		return nil, nil, err
	}
	if balance.Amount.Cmp(amount) < 0 {
		return nil, nil, fmt.Errorf("%w: have %s, need %s",
			storages.ErrInsufficientFunds, balance.Amount.StringFixed(4), amount.StringFixed(4))
	}

	// 3. Кошелек получателя в той же валюте; межвалютный перевод
	// не поддерживается и отклоняется
	toWallet, err := s.storage.GetWalletByUserAndCurrency(ctx, toUserID, fromWallet.CurrencyID)
	if err != nil {
		if errors.Is(err, storages.ErrWalletNotFound) {
			return nil, nil, storages.ErrCurrencyMismatch
		}
		return nil, nil, err
	}
	if toWallet.ID == fromWallet.ID {
		return nil, nil, storages.ErrSameWallet
	}
	if toWallet.Status != storages.WalletStatusActive {
		return nil, nil, storages.ErrWalletNotActive
	}

	// 4. Системная категория перевода обязана существовать
	category, err := s.category(ctx, storages.CategoryTransfer)
	if err != nil {
		return nil, nil, err
	}

	// 5. Атомарное двустороннее движение
	reference := uuid.NewString()
	debit, credit, err := s.storage.ExecuteDualMove(ctx, &storages.DualMove{
		FromUserID:   fromUserID,
		FromWalletID: fromWallet.ID,
		ToUserID:     toUserID,
		ToWalletID:   toWallet.ID,
		Amount:       amount,
		CategoryID:   category.ID,
		Reference:    reference,
		Description:  description,
	})
	if err != nil {
		return nil, nil, err
	}

	currency := s.currencyCode(ctx, fromWallet.CurrencyID)
	s.notify(ctx, fromUserID, reference, "transfer_debit", debit.Status, amount, currency)
	s.notify(ctx, toUserID, reference, "transfer_credit", credit.Status, amount, currency)

	s.logger.Infof("Transfer completed: %s %s, user %d -> user %d, Ref=%s",
		amount.StringFixed(4), currency, fromUserID, toUserID, reference)

	return debit, credit, nil
}
