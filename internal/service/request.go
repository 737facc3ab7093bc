package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gw-wallet-core/internal/storages"
)

// Действия над запросом на перевод
const (
	RequestActionAccept = "accept"
	RequestActionReject = "reject"
)

// CreateMoneyRequest создает запрос на перевод: requesterID просит
// targetUserID заплатить amount. Движения денег при создании нет —
// это чистая запись намерения.
func (s *WalletService) CreateMoneyRequest(ctx context.Context, requesterID, targetUserID int64, amount decimal.Decimal, description string, expiresAt *time.Time) (*storages.MoneyRequest, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}
	if requesterID == targetUserID {
		return nil, fmt.Errorf("cannot request money from yourself")
	}

	// У запрашивающего должен быть кошелек по умолчанию — на него
	// придет зачисление после принятия запроса
	requesterWallet, err := s.storage.GetDefaultWallet(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	// Адресат запроса должен существовать
	if _, err := s.storage.GetUserByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	req := &storages.MoneyRequest{
		RequesterID:       requesterID,
		RequesterWalletID: requesterWallet.ID,
		TargetUserID:      targetUserID,
		Amount:            amount,
		Description:       description,
		ExpiresAt:         expiresAt,
	}

	if err := s.storage.CreateMoneyRequest(ctx, req); err != nil {
		return nil, err
	}

	currency := s.currencyCode(ctx, requesterWallet.CurrencyID)
	s.notify(ctx, targetUserID, req.Reference, "money_request", req.Status, amount, currency)

	return req, nil
}

// RespondMoneyRequest обрабатывает ответ на ожидающий запрос на перевод.
// Запрос не в статусе pending не находится — повторный ответ невозможен.
// Истечение срока проверяется лениво в момент ответа.
func (s *WalletService) RespondMoneyRequest(ctx context.Context, requestID, respondingUserID int64, action string) (*storages.MoneyRequest, error) {
	req, err := s.storage.GetPendingMoneyRequest(ctx, requestID, respondingUserID)
	if err != nil {
		return nil, err
	}

	// Просроченный запрос переводится в expired и отклоняется
	if req.ExpiresAt != nil && time.Now().After(*req.ExpiresAt) {
		if err := s.storage.FailMoneyRequest(ctx, req.ID, storages.RequestStatusExpired); err != nil {
			return nil, err
		}
		req.Status = storages.RequestStatusExpired
		s.logger.Infof("Money request %d expired", req.ID)
		return req, storages.ErrRequestExpired
	}

	switch action {
	case RequestActionReject:
		return s.rejectMoneyRequest(ctx, req)
	case RequestActionAccept:
		return s.acceptMoneyRequest(ctx, req, respondingUserID)
	default:
		return nil, fmt.Errorf("unknown action: %s", action)
	}
}

// rejectMoneyRequest отклоняет запрос; движения денег нет
func (s *WalletService) rejectMoneyRequest(ctx context.Context, req *storages.MoneyRequest) (*storages.MoneyRequest, error) {
	if err := s.storage.FailMoneyRequest(ctx, req.ID, storages.RequestStatusRejected); err != nil {
		return nil, err
	}
	req.Status = storages.RequestStatusRejected

	s.notify(ctx, req.RequesterID, req.Reference, "money_request", req.Status, req.Amount, "")

	s.logger.Infof("Money request %d rejected", req.ID)
	return req, nil
}

// acceptMoneyRequest принимает запрос: списывает с кошелька отвечающего
// по умолчанию и зачисляет на кошелек запрашивающего тем же атомарным
// двусторонним примитивом, что и обычный перевод; запрос помечается
// принятым в той же транзакции БД.
func (s *WalletService) acceptMoneyRequest(ctx context.Context, req *storages.MoneyRequest, respondingUserID int64) (*storages.MoneyRequest, error) {
	// У отвечающего должен быть кошелек по умолчанию
	responderWallet, err := s.storage.GetDefaultWallet(ctx, respondingUserID)
	if err != nil {
		return nil, err
	}
	if responderWallet.Status != storages.WalletStatusActive {
		return nil, storages.ErrWalletNotActive
	}

	requesterWallet, err := s.storage.GetWallet(ctx, req.RequesterWalletID)
	if err != nil {
		return nil, err
	}
	if responderWallet.CurrencyID != requesterWallet.CurrencyID {
		return nil, storages.ErrCurrencyMismatch
	}

	balance, err := s.storage.GetActiveBalance(ctx, responderWallet.ID)
	if err != nil {
		return nil, err
	}
	if balance.Amount.Cmp(req.Amount) < 0 {
		return nil, fmt.Errorf("%w: have %s, need %s",
			storages.ErrInsufficientFunds, balance.Amount.StringFixed(4), req.Amount.StringFixed(4))
	}

	category, err := s.category(ctx, storages.CategoryMoneyRequest)
	if err != nil {
		return nil, err
	}

	debit, _, err := s.storage.ExecuteDualMove(ctx, &storages.DualMove{
		FromUserID:   respondingUserID,
		FromWalletID: responderWallet.ID,
		ToUserID:     req.RequesterID,
		ToWalletID:   requesterWallet.ID,
		Amount:       req.Amount,
		CategoryID:   category.ID,
		Reference:    req.Reference,
		Description:  req.Description,
		RequestID:    &req.ID,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = storages.RequestStatusAccepted
	req.SettlementTxID = &debit.ID
	req.RespondedAt = &now

	currency := s.currencyCode(ctx, responderWallet.CurrencyID)
	s.notify(ctx, respondingUserID, req.Reference, "money_request_debit", debit.Status, req.Amount, currency)
	s.notify(ctx, req.RequesterID, req.Reference, "money_request_credit", debit.Status, req.Amount, currency)

	s.logger.Infof("Money request %d accepted: %s from user %d to user %d",
		req.ID, req.Amount.StringFixed(4), respondingUserID, req.RequesterID)

	return req, nil
}

// ListMoneyRequests возвращает входящие ожидающие запросы пользователя.
// Просроченные запросы лениво помечаются expired и в выдачу не попадают.
func (s *WalletService) ListMoneyRequests(ctx context.Context, userID int64) ([]storages.MoneyRequest, error) {
	requests, err := s.storage.ListPendingMoneyRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list money requests: %w", err)
	}

	now := time.Now()
	active := requests[:0]
	for _, req := range requests {
		if req.ExpiresAt != nil && now.After(*req.ExpiresAt) {
			if err := s.storage.FailMoneyRequest(ctx, req.ID, storages.RequestStatusExpired); err != nil {
				s.logger.Warnf("Failed to expire money request %d: %v", req.ID, err)
			}
			continue
		}
		active = append(active, req)
	}

	return active, nil
}
