package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gw-wallet-core/internal/provider"
	"gw-wallet-core/internal/storages"
)

// MockStorage - мок для Storage с семантикой атомарных примитивов
type MockStorage struct {
	users        map[int64]*storages.User
	currencies   []storages.Currency
	categories   map[string]*storages.Category
	wallets      map[int64]*storages.Wallet
	balances     map[int64]*storages.Balance
	transactions map[int64]*storages.Transaction
	requests     map[int64]*storages.MoneyRequest
	nextID       int64
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		users: make(map[int64]*storages.User),
		currencies: []storages.Currency{
			{ID: 1, Code: "NGN", Symbol: "₦", Name: "Nigerian Naira", IsActive: true},
			{ID: 2, Code: "USD", Symbol: "$", Name: "US Dollar", IsActive: true},
		},
		categories: map[string]*storages.Category{
			storages.CategoryTransfer:     {ID: 1, Code: storages.CategoryTransfer, Name: "Transfer"},
			storages.CategoryMoneyRequest: {ID: 2, Code: storages.CategoryMoneyRequest, Name: "Money Request"},
			storages.CategoryBillPayment:  {ID: 3, Code: storages.CategoryBillPayment, Name: "Bill Payment"},
		},
		wallets:      make(map[int64]*storages.Wallet),
		balances:     make(map[int64]*storages.Balance),
		transactions: make(map[int64]*storages.Transaction),
		requests:     make(map[int64]*storages.MoneyRequest),
	}
}

func (m *MockStorage) id() int64 {
	m.nextID++
	return m.nextID
}

// fund выставляет активный баланс кошелька напрямую (для подготовки тестов)
func (m *MockStorage) fund(walletID int64, amount string) {
	m.balances[walletID].Amount = decimal.RequireFromString(amount)
}

func (m *MockStorage) CreateUser(ctx context.Context, user *storages.User) error {
	user.ID = m.id()
	m.users[user.ID] = user
	return nil
}

func (m *MockStorage) GetUserByUsername(ctx context.Context, username string) (*storages.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storages.ErrUserNotFound
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*storages.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storages.ErrUserNotFound
}

func (m *MockStorage) GetUserByID(ctx context.Context, userID int64) (*storages.User, error) {
	if u, ok := m.users[userID]; ok {
		return u, nil
	}
	return nil, storages.ErrUserNotFound
}

func (m *MockStorage) ListActiveCurrencies(ctx context.Context) ([]storages.Currency, error) {
	return m.currencies, nil
}

func (m *MockStorage) GetCategoryByCode(ctx context.Context, code string) (*storages.Category, error) {
	if c, ok := m.categories[code]; ok {
		return c, nil
	}
	return nil, storages.ErrCategoryNotFound
}

func (m *MockStorage) CreateWalletsForUser(ctx context.Context, userID int64, currencies []storages.Currency, defaultCode string) ([]storages.Wallet, error) {
	for _, w := range m.wallets {
		if w.UserID == userID {
			return nil, storages.ErrWalletExists
		}
	}

	var wallets []storages.Wallet
	for i, currency := range currencies {
		wallet := &storages.Wallet{
			ID:         m.id(),
			UserID:     userID,
			CurrencyID: currency.ID,
			IsDefault:  currency.Code == defaultCode || (defaultCode == "" && i == 0),
			Status:     storages.WalletStatusActive,
		}
		m.wallets[wallet.ID] = wallet
		m.balances[wallet.ID] = &storages.Balance{
			ID:         m.id(),
			WalletID:   wallet.ID,
			CurrencyID: currency.ID,
			Amount:     decimal.Zero,
			IsActive:   true,
		}
		wallets = append(wallets, *wallet)
	}
	return wallets, nil
}

func (m *MockStorage) GetWallet(ctx context.Context, walletID int64) (*storages.Wallet, error) {
	if w, ok := m.wallets[walletID]; ok {
		return w, nil
	}
	return nil, storages.ErrWalletNotFound
}

func (m *MockStorage) GetUserWallets(ctx context.Context, userID int64) ([]storages.Wallet, error) {
	var result []storages.Wallet
	for _, w := range m.wallets {
		if w.UserID == userID {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (m *MockStorage) GetWalletByUserAndCurrency(ctx context.Context, userID, currencyID int64) (*storages.Wallet, error) {
	for _, w := range m.wallets {
		if w.UserID == userID && w.CurrencyID == currencyID {
			return w, nil
		}
	}
	return nil, storages.ErrWalletNotFound
}

func (m *MockStorage) GetDefaultWallet(ctx context.Context, userID int64) (*storages.Wallet, error) {
	for _, w := range m.wallets {
		if w.UserID == userID && w.IsDefault {
			return w, nil
		}
	}
	return nil, storages.ErrWalletNotFound
}

func (m *MockStorage) SetDefaultWallet(ctx context.Context, userID, walletID int64) error {
	target, ok := m.wallets[walletID]
	if !ok || target.UserID != userID {
		return storages.ErrWalletNotFound
	}
	for _, w := range m.wallets {
		if w.UserID == userID {
			w.IsDefault = w.ID == walletID
		}
	}
	return nil
}

func (m *MockStorage) UpdateWalletStatus(ctx context.Context, walletID int64, status string) error {
	w, ok := m.wallets[walletID]
	if !ok {
		return storages.ErrWalletNotFound
	}
	w.Status = status
	return nil
}

func (m *MockStorage) GetActiveBalance(ctx context.Context, walletID int64) (*storages.Balance, error) {
	if b, ok := m.balances[walletID]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, storages.ErrBalanceNotFound
}

func (m *MockStorage) CreateTransaction(ctx context.Context, tx *storages.Transaction) error {
	m.insertTransaction(tx)
	return nil
}

func (m *MockStorage) insertTransaction(tx *storages.Transaction) {
	tx.ID = m.id()
	if tx.Reference == "" {
		tx.Reference = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = storages.TransactionStatusPending
	}
	tx.Total = tx.Amount.Add(tx.Fee)
	tx.CreatedAt = time.Now()
	if tx.Status == storages.TransactionStatusCompleted && tx.CompletedAt == nil {
		now := time.Now()
		tx.CompletedAt = &now
	}
	m.transactions[tx.ID] = tx
}

func (m *MockStorage) GetTransaction(ctx context.Context, txID int64) (*storages.Transaction, error) {
	if tx, ok := m.transactions[txID]; ok {
		return tx, nil
	}
	return nil, storages.ErrTransactionNotFound
}

func (m *MockStorage) GetTransactionByReference(ctx context.Context, reference string) (*storages.Transaction, error) {
	for _, tx := range m.transactions {
		if tx.Reference == reference && tx.Type == storages.TransactionTypeDebit {
			return tx, nil
		}
	}
	return nil, storages.ErrTransactionNotFound
}

func (m *MockStorage) GetUserTransactions(ctx context.Context, userID int64, limit int) ([]storages.Transaction, error) {
	var result []storages.Transaction
	for _, tx := range m.transactions {
		if tx.UserID == userID {
			result = append(result, *tx)
		}
	}
	return result, nil
}

func (m *MockStorage) UpdateTransaction(ctx context.Context, txID int64, upd storages.TransactionUpdate) (*storages.Transaction, error) {
	tx, ok := m.transactions[txID]
	if !ok {
		return nil, storages.ErrTransactionNotFound
	}
	if err := m.applyUpdate(tx, upd); err != nil {
		return nil, err
	}
	return tx, nil
}

func (m *MockStorage) applyUpdate(tx *storages.Transaction, upd storages.TransactionUpdate) error {
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
	return nil
}

func (m *MockStorage) CreateMoneyRequest(ctx context.Context, req *storages.MoneyRequest) error {
	req.ID = m.id()
	if req.Reference == "" {
		req.Reference = uuid.NewString()
	}
	req.Status = storages.RequestStatusPending
	req.CreatedAt = time.Now()
	m.requests[req.ID] = req
	return nil
}

func (m *MockStorage) GetPendingMoneyRequest(ctx context.Context, requestID, targetUserID int64) (*storages.MoneyRequest, error) {
	req, ok := m.requests[requestID]
	if !ok || req.TargetUserID != targetUserID || req.Status != storages.RequestStatusPending {
		return nil, storages.ErrRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *MockStorage) ListPendingMoneyRequests(ctx context.Context, targetUserID int64) ([]storages.MoneyRequest, error) {
	var result []storages.MoneyRequest
	for _, req := range m.requests {
		if req.TargetUserID == targetUserID && req.Status == storages.RequestStatusPending {
			result = append(result, *req)
		}
	}
	return result, nil
}

func (m *MockStorage) FailMoneyRequest(ctx context.Context, requestID int64, status string) error {
	req, ok := m.requests[requestID]
	if !ok || req.Status != storages.RequestStatusPending {
		return storages.ErrRequestNotFound
	}
	now := time.Now()
	req.Status = status
	req.RespondedAt = &now
	return nil
}

func (m *MockStorage) ExecuteDualMove(ctx context.Context, mv *storages.DualMove) (*storages.Transaction, *storages.Transaction, error) {
	from, ok := m.balances[mv.FromWalletID]
	if !ok {
		return nil, nil, storages.ErrBalanceNotFound
	}
	to, ok := m.balances[mv.ToWalletID]
	if !ok {
		return nil, nil, storages.ErrBalanceNotFound
	}
	if from.Amount.Cmp(mv.Amount) < 0 {
		return nil, nil, storages.ErrInsufficientFunds
	}

	var req *storages.MoneyRequest
	if mv.RequestID != nil {
		req = m.requests[*mv.RequestID]
		if req == nil || req.Status != storages.RequestStatusPending {
			return nil, nil, storages.ErrRequestNotFound
		}
	}

	from.Amount = from.Amount.Sub(mv.Amount)
	to.Amount = to.Amount.Add(mv.Amount)

	fromWalletID := mv.FromWalletID
	toWalletID := mv.ToWalletID

	debit := &storages.Transaction{
		Reference:     mv.Reference,
		UserID:        mv.FromUserID,
		WalletID:      &fromWalletID,
		CategoryID:    mv.CategoryID,
		Type:          storages.TransactionTypeDebit,
		Status:        storages.TransactionStatusCompleted,
		Amount:        mv.Amount,
		PaymentMethod: "wallet",
		Metadata:      storages.JSONMap{"recipient_id": mv.ToUserID, "description": mv.Description},
	}
	m.insertTransaction(debit)

	credit := &storages.Transaction{
		Reference:     mv.Reference,
		UserID:        mv.ToUserID,
		WalletID:      &toWalletID,
		CategoryID:    mv.CategoryID,
		Type:          storages.TransactionTypeCredit,
		Status:        storages.TransactionStatusCompleted,
		Amount:        mv.Amount,
		PaymentMethod: "wallet",
		Metadata:      storages.JSONMap{"sender_id": mv.FromUserID, "description": mv.Description},
	}
	m.insertTransaction(credit)

	if req != nil {
		now := time.Now()
		req.Status = storages.RequestStatusAccepted
		req.SettlementTxID = &debit.ID
		req.RespondedAt = &now
	}

	return debit, credit, nil
}

func (m *MockStorage) ExecuteDebit(ctx context.Context, mv *storages.WalletDebit) (*storages.Transaction, error) {
	balance, ok := m.balances[mv.WalletID]
	if !ok {
		return nil, storages.ErrBalanceNotFound
	}
	total := mv.Amount.Add(mv.Fee)
	if balance.Amount.Cmp(total) < 0 {
		return nil, storages.ErrInsufficientFunds
	}
	balance.Amount = balance.Amount.Sub(total)

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
	m.insertTransaction(tx)
	return tx, nil
}

func (m *MockStorage) FinalizeDebit(ctx context.Context, txID int64, status string, providerData storages.JSONMap) (*storages.Transaction, error) {
	tx, ok := m.transactions[txID]
	if !ok {
		return nil, storages.ErrTransactionNotFound
	}
	prevStatus := tx.Status
	if err := m.applyUpdate(tx, storages.TransactionUpdate{Status: &status, ProviderData: providerData}); err != nil {
		return nil, err
	}

	// Провал дебета по кошельку возвращает списанное компенсирующим
	// кредитом — ровно один раз, на фактическом переходе в failed
	if tx.Status == storages.TransactionStatusFailed && prevStatus != storages.TransactionStatusFailed &&
		tx.Type == storages.TransactionTypeDebit && tx.WalletID != nil {
		if balance, ok := m.balances[*tx.WalletID]; ok {
			balance.Amount = balance.Amount.Add(tx.Total)
		}
	}
	return tx, nil
}

func (m *MockStorage) ExecuteReversal(ctx context.Context, txID int64) (*storages.Transaction, error) {
	tx, ok := m.transactions[txID]
	if !ok {
		return nil, storages.ErrTransactionNotFound
	}
	status := storages.TransactionStatusReversed
	if err := m.applyUpdate(tx, storages.TransactionUpdate{Status: &status}); err != nil {
		return nil, err
	}
	if tx.Type == storages.TransactionTypeDebit && tx.WalletID != nil {
		if balance, ok := m.balances[*tx.WalletID]; ok {
			balance.Amount = balance.Amount.Add(tx.Total)
		}
	}
	return tx, nil
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return nil
}

func (m *MockStorage) Close() error {
	return nil
}

// MockGateway - мок платежного провайдера
type MockGateway struct {
	result *provider.Result
	err    error
	calls  int
}

func (g *MockGateway) Execute(ctx context.Context, action string, payload map[string]interface{}) (*provider.Result, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}
