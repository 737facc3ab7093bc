package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"gw-wallet-core/internal/cache"
	"gw-wallet-core/internal/kafka"
	"gw-wallet-core/internal/provider"
	"gw-wallet-core/internal/storages"
)

// WalletService сервисный слой для бизнес-логики ядра кошельков
type WalletService struct {
	storage         storages.Storage
	directory       *cache.DirectoryCache
	gateway         provider.Gateway
	kafkaProducer   *kafka.Producer
	logger          *logrus.Logger
	defaultCurrency string
}

// NewWalletService создает новый экземпляр сервиса
func NewWalletService(
	storage storages.Storage,
	directory *cache.DirectoryCache,
	gateway provider.Gateway,
	kafkaProducer *kafka.Producer,
	logger *logrus.Logger,
	defaultCurrency string,
) *WalletService {
	return &WalletService{
		storage:         storage,
		directory:       directory,
		gateway:         gateway,
		kafkaProducer:   kafkaProducer,
		logger:          logger,
		defaultCurrency: defaultCurrency,
	}
}

// RegisterUser регистрирует нового пользователя и создает ему кошельки
// во всех активных валютах
func (s *WalletService) RegisterUser(ctx context.Context, username, email, password string) error {
	// Проверяем, не существует ли уже пользователь
	existingUser, _ := s.storage.GetUserByUsername(ctx, username)
	if existingUser != nil {
		return fmt.Errorf("username already exists")
	}

	existingUser, _ = s.storage.GetUserByEmail(ctx, email)
	if existingUser != nil {
		return fmt.Errorf("email already exists")
	}

	// Хешируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Errorf("Failed to hash password: %v", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Создаем пользователя
	user := &storages.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	// Создаем кошельки для всех активных валют
	if _, err := s.CreateWalletsForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to create wallets: %w", err)
	}

	s.logger.Infof("User registered successfully: %s", username)
	return nil
}

// AuthenticateUser аутентифицирует пользователя
func (s *WalletService) AuthenticateUser(ctx context.Context, username, password string) (*storages.User, error) {
	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("invalid username or password")
	}

	// Проверяем пароль
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warnf("Failed authentication attempt for user: %s", username)
		return nil, fmt.Errorf("invalid username or password")
	}

	s.logger.Infof("User authenticated successfully: %s", username)
	return user, nil
}

// CreateWalletsForUser создает пользователю по кошельку на каждую активную
// валюту (с нулевым балансом) одной атомарной операцией. Кошелек валюты
// по умолчанию становится кошельком по умолчанию.
func (s *WalletService) CreateWalletsForUser(ctx context.Context, userID int64) ([]storages.Wallet, error) {
	currencies, err := s.activeCurrencies(ctx)
	if err != nil {
		return nil, err
	}

	wallets, err := s.storage.CreateWalletsForUser(ctx, userID, currencies, s.defaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallets: %w", err)
	}

	s.logger.Infof("Created %d wallets for user %d", len(wallets), userID)
	return wallets, nil
}

// GetUserWallets возвращает все кошельки пользователя
func (s *WalletService) GetUserWallets(ctx context.Context, userID int64) ([]storages.Wallet, error) {
	wallets, err := s.storage.GetUserWallets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallets: %w", err)
	}
	return wallets, nil
}

// GetWalletBalance возвращает активный баланс кошелька пользователя
func (s *WalletService) GetWalletBalance(ctx context.Context, userID, walletID int64) (*storages.Balance, error) {
	wallet, err := s.storage.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != userID {
		return nil, storages.ErrWalletNotFound
	}

	return s.storage.GetActiveBalance(ctx, walletID)
}

// SetDefaultWallet делает кошелек кошельком пользователя по умолчанию
func (s *WalletService) SetDefaultWallet(ctx context.Context, userID, walletID int64) error {
	return s.storage.SetDefaultWallet(ctx, userID, walletID)
}

// UpdateWalletStatus обновляет статус кошелька (active/inactive/frozen)
func (s *WalletService) UpdateWalletStatus(ctx context.Context, walletID int64, status string) error {
	switch status {
	case storages.WalletStatusActive, storages.WalletStatusInactive, storages.WalletStatusFrozen:
	default:
		return fmt.Errorf("unknown wallet status: %s", status)
	}
	return s.storage.UpdateWalletStatus(ctx, walletID, status)
}

// GetUserTransactions возвращает транзакции пользователя
func (s *WalletService) GetUserTransactions(ctx context.Context, userID int64, limit int) ([]storages.Transaction, error) {
	transactions, err := s.storage.GetUserTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return transactions, nil
}

// activeCurrencies возвращает активные валюты (из кеша или справочника).
// Пустой справочник — ошибка конфигурации развертывания.
func (s *WalletService) activeCurrencies(ctx context.Context) ([]storages.Currency, error) {
	if currencies, ok := s.directory.Currencies(); ok {
		return currencies, nil
	}

	currencies, err := s.storage.ListActiveCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if len(currencies) == 0 {
		return nil, storages.ErrNoActiveCurrencies
	}

	s.directory.SetCurrencies(currencies)
	return currencies, nil
}

// category возвращает системную категорию транзакций по коду (из кеша или
// справочника). Отсутствие категории — ошибка конфигурации, операция
// прерывается до любой мутации.
func (s *WalletService) category(ctx context.Context, code string) (*storages.Category, error) {
	if category, ok := s.directory.Category(code); ok {
		return &category, nil
	}

	category, err := s.storage.GetCategoryByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	s.directory.SetCategory(*category)
	return category, nil
}

// currencyCode возвращает код валюты по ID (best-effort, для уведомлений)
func (s *WalletService) currencyCode(ctx context.Context, currencyID int64) string {
	currencies, err := s.activeCurrencies(ctx)
	if err != nil {
		return ""
	}
	for _, c := range currencies {
		if c.ID == currencyID {
			return c.Code
		}
	}
	return ""
}

// notify отправляет уведомление об исходе операции. Сбой уведомления
// логируется и никогда не влияет на результат финансовой операции.
func (s *WalletService) notify(ctx context.Context, userID int64, reference, kind, status string, amount decimal.Decimal, currency string) {
	if s.kafkaProducer == nil {
		return
	}

	event := kafka.TransactionEvent{
		UserID:    userID,
		Reference: reference,
		Kind:      kind,
		Status:    status,
		Currency:  currency,
		Amount:    amount.StringFixed(4),
	}

	if err := s.kafkaProducer.SendTransactionEvent(ctx, event); err != nil {
		s.logger.Warnf("Failed to send Kafka notification: %v", err)
	}
}
