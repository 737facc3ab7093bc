package storages

import "errors"

// Типизированные ошибки ядра. Сервисный и транспортный слои различают
// классы ошибок через errors.Is, а не по тексту сообщения.
var (
	// ErrUserNotFound пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrWalletNotFound кошелек не найден
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrWalletExists кошелек для пары (пользователь, валюта) уже существует
	ErrWalletExists = errors.New("wallet already exists for currency")

	// ErrWalletNotActive кошелек неактивен или заморожен
	ErrWalletNotActive = errors.New("wallet is not active")

	// ErrBalanceNotFound активная строка баланса отсутствует.
	// У кошелька всегда должна быть ровно одна активная строка баланса;
	// ее отсутствие означает нарушение целостности данных, а не пустой счет.
	ErrBalanceNotFound = errors.New("active balance not found")

	// ErrInsufficientFunds недостаточно средств; проверяется до любой мутации
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTransactionNotFound транзакция не найдена
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidTransition запрошенный переход статуса транзакции запрещен
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrRequestNotFound ожидающий запрос на перевод не найден
	ErrRequestNotFound = errors.New("pending money request not found")

	// ErrRequestExpired срок действия запроса на перевод истек
	ErrRequestExpired = errors.New("money request expired")

	// ErrCategoryNotFound системная категория транзакций отсутствует —
	// ошибка конфигурации развертывания, операция должна быть прервана
	ErrCategoryNotFound = errors.New("transaction category not configured")

	// ErrNoActiveCurrencies в справочнике нет ни одной активной валюты
	ErrNoActiveCurrencies = errors.New("no active currencies configured")

	// ErrCurrencyMismatch валюты кошельков отправителя и получателя различаются
	ErrCurrencyMismatch = errors.New("recipient wallet not found for currency")

	// ErrSameWallet перевод на тот же самый кошелек запрещен
	ErrSameWallet = errors.New("cannot transfer to the same wallet")
)
