package storages

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// User представляет пользователя системы
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Currency представляет валюту из справочника валют
type Currency struct {
	ID       int64  `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	Symbol   string `db:"symbol" json:"symbol"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

// Category представляет категорию транзакции из справочника категорий
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// Wallet представляет кошелек пользователя в определенной валюте
type Wallet struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	CurrencyID int64     `db:"currency_id" json:"currency_id"`
	IsDefault  bool      `db:"is_default" json:"is_default"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Balance представляет снимок баланса кошелька.
// Ровно одна строка с is_active=true на кошелек; изменение баланса =
// деактивация текущей строки + вставка новой (история сохраняется).
type Balance struct {
	ID         int64           `db:"id" json:"id"`
	WalletID   int64           `db:"wallet_id" json:"wallet_id"`
	CurrencyID int64           `db:"currency_id" json:"currency_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	IsActive   bool            `db:"is_active" json:"is_active"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Transaction представляет запись о движении денег (дебет или кредит)
type Transaction struct {
	ID            int64           `db:"id" json:"id"`
	Reference     string          `db:"reference" json:"reference"`
	UserID        int64           `db:"user_id" json:"user_id"`
	WalletID      *int64          `db:"wallet_id" json:"wallet_id"`
	CategoryID    int64           `db:"category_id" json:"category_id"`
	ProductID     *int64          `db:"product_id" json:"product_id"`
	ProviderID    *int64          `db:"provider_id" json:"provider_id"`
	Type          string          `db:"type" json:"type"`
	Status        string          `db:"status" json:"status"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Fee           decimal.Decimal `db:"fee" json:"fee"`
	Total         decimal.Decimal `db:"total" json:"total"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	ServiceData   JSONMap         `db:"service_data" json:"service_data"`
	ProviderData  JSONMap         `db:"provider_data" json:"provider_data"`
	Metadata      JSONMap         `db:"metadata" json:"metadata"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at"`
}

// MoneyRequest представляет запрос на перевод денег (request-to-pay).
// Отдельная сущность со своим жизненным циклом; после принятия ссылается
// на дебетовую транзакцию расчета через settlement_tx_id.
type MoneyRequest struct {
	ID                int64           `db:"id" json:"id"`
	Reference         string          `db:"reference" json:"reference"`
	RequesterID       int64           `db:"requester_id" json:"requester_id"`
	RequesterWalletID int64           `db:"requester_wallet_id" json:"requester_wallet_id"`
	TargetUserID      int64           `db:"target_user_id" json:"target_user_id"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Description       string          `db:"description" json:"description"`
	Status            string          `db:"status" json:"status"`
	ExpiresAt         *time.Time      `db:"expires_at" json:"expires_at"`
	SettlementTxID    *int64          `db:"settlement_tx_id" json:"settlement_tx_id"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	RespondedAt       *time.Time      `db:"responded_at" json:"responded_at"`
}

// WalletStatus определяет статусы кошелька
const (
	WalletStatusActive   = "active"
	WalletStatusInactive = "inactive"
	WalletStatusFrozen   = "frozen"
)

// TransactionType определяет типы транзакций
const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

// TransactionStatus определяет статусы транзакций
const (
	TransactionStatusPending    = "pending"
	TransactionStatusProcessing = "processing"
	TransactionStatusCompleted  = "completed"
	TransactionStatusFailed     = "failed"
	TransactionStatusReversed   = "reversed"
	TransactionStatusCancelled  = "cancelled"
	TransactionStatusRefunded   = "refunded"
)

// RequestStatus определяет статусы запросов на перевод
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
	RequestStatusExpired  = "expired"
)

// Коды системных категорий транзакций
const (
	CategoryTransfer     = "transfer"
	CategoryMoneyRequest = "money_request"
	CategoryBillPayment  = "bill_payment"
)

// allowedTransitions задает разрешенные переходы статусов транзакций.
// Терминальные статусы (failed, reversed, cancelled, refunded) переходов
// не имеют; единственный выход из completed — reversed.
var allowedTransitions = map[string][]string{
	TransactionStatusPending: {
		TransactionStatusProcessing,
		TransactionStatusCompleted,
		TransactionStatusFailed,
		TransactionStatusCancelled,
	},
	TransactionStatusProcessing: {
		TransactionStatusCompleted,
		TransactionStatusFailed,
	},
	TransactionStatusCompleted: {
		TransactionStatusReversed,
	},
}

// CanTransition проверяет, разрешен ли переход статуса транзакции
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus проверяет, является ли статус терминальным
func IsTerminalStatus(status string) bool {
	return len(allowedTransitions[status]) == 0
}

// JSONMap хранит произвольный JSON-объект в колонке JSONB
type JSONMap map[string]interface{}

// Value сериализует JSONMap для записи в базу данных
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan десериализует JSONMap из значения базы данных
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", src)
	}

	return json.Unmarshal(data, m)
}
