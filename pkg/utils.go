package pkg

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPrecision денежные суммы хранятся с точностью 4 знака после запятой
const amountPrecision = 4

// ParseAmount разбирает денежную сумму из строки. Сумма должна быть
// строго положительной и иметь не больше 4 знаков после запятой.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %s", raw)
	}

	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	if amount.Exponent() < -amountPrecision {
		return decimal.Zero, fmt.Errorf("amount must have at most %d decimal places", amountPrecision)
	}

	return amount, nil
}

// ParseFee разбирает комиссию из строки; пустая строка означает ноль
func ParseFee(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}

	fee, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid fee: %s", raw)
	}

	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("fee must not be negative")
	}

	if fee.Exponent() < -amountPrecision {
		return decimal.Zero, fmt.Errorf("fee must have at most %d decimal places", amountPrecision)
	}

	return fee, nil
}

// FormatAmount форматирует сумму в строку с фиксированными 4 знаками
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(amountPrecision)
}

// NormalizeCurrency приводит код валюты к верхнему регистру
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}
