package storages

import (
	"context"

	"github.com/shopspring/decimal"
)

// Storage определяет интерфейс для работы с хранилищем данных
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)

	// Directory operations (справочники валют и категорий)
	ListActiveCurrencies(ctx context.Context) ([]Currency, error)
	GetCategoryByCode(ctx context.Context, code string) (*Category, error)

	// Wallet operations
	CreateWalletsForUser(ctx context.Context, userID int64, currencies []Currency, defaultCode string) ([]Wallet, error)
	GetWallet(ctx context.Context, walletID int64) (*Wallet, error)
	GetUserWallets(ctx context.Context, userID int64) ([]Wallet, error)
	GetWalletByUserAndCurrency(ctx context.Context, userID, currencyID int64) (*Wallet, error)
	GetDefaultWallet(ctx context.Context, userID int64) (*Wallet, error)
	SetDefaultWallet(ctx context.Context, userID, walletID int64) error
	UpdateWalletStatus(ctx context.Context, walletID int64, status string) error

	// Balance operations
	GetActiveBalance(ctx context.Context, walletID int64) (*Balance, error)

	// Transaction operations
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, txID int64) (*Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*Transaction, error)
	GetUserTransactions(ctx context.Context, userID int64, limit int) ([]Transaction, error)
	UpdateTransaction(ctx context.Context, txID int64, upd TransactionUpdate) (*Transaction, error)

	// Money request operations
	CreateMoneyRequest(ctx context.Context, req *MoneyRequest) error
	GetPendingMoneyRequest(ctx context.Context, requestID, targetUserID int64) (*MoneyRequest, error)
	ListPendingMoneyRequests(ctx context.Context, targetUserID int64) ([]MoneyRequest, error)
	FailMoneyRequest(ctx context.Context, requestID int64, status string) error

	// Atomic money movement operations
	ExecuteDualMove(ctx context.Context, mv *DualMove) (*Transaction, *Transaction, error)
	ExecuteDebit(ctx context.Context, mv *WalletDebit) (*Transaction, error)
	FinalizeDebit(ctx context.Context, txID int64, status string, providerData JSONMap) (*Transaction, error)
	ExecuteReversal(ctx context.Context, txID int64) (*Transaction, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// DualMove описывает атомарное двустороннее движение денег между двумя
// кошельками одной валюты: дебет источника, кредит получателя и вставка
// пары транзакций с общим reference — все в одной транзакции БД.
// Единственный примитив для перевода и принятия запроса на перевод.
type DualMove struct {
	FromUserID   int64
	FromWalletID int64
	ToUserID     int64
	ToWalletID   int64
	Amount       decimal.Decimal
	CategoryID   int64
	Reference    string
	Description  string

	// RequestID, если задан, атомарно помечает запрос на перевод принятым
	// и связывает его с дебетовой транзакцией расчета
	RequestID *int64
}

// WalletDebit описывает атомарное списание с одного кошелька с вставкой
// дебетовой транзакции (первая фаза оплаты счета)
type WalletDebit struct {
	UserID        int64
	WalletID      int64
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	CategoryID    int64
	ProductID     *int64
	ProviderID    *int64
	Reference     string
	Status        string
	PaymentMethod string
	ServiceData   JSONMap
	Metadata      JSONMap
}

// TransactionUpdate описывает частичное обновление транзакции.
// Nil-поля не изменяются.
type TransactionUpdate struct {
	Status       *string
	ProviderData JSONMap
	Metadata     JSONMap
}
