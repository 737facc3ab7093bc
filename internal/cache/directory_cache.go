package cache

import (
	"sync"
	"time"

	"gw-wallet-core/internal/storages"
)

// DirectoryCache кеш справочников валют и категорий транзакций.
// Справочники меняются редко, но читаются на каждом денежном движении.
type DirectoryCache struct {
	mu  sync.RWMutex
	ttl time.Duration

	currencies   []storages.Currency
	currenciesUp time.Time

	categories   map[string]storages.Category
	categoriesUp map[string]time.Time
}

// NewDirectoryCache создает новый кеш справочников
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		ttl:          ttl,
		categories:   make(map[string]storages.Category),
		categoriesUp: make(map[string]time.Time),
	}
}

// SetCurrencies сохраняет список активных валют в кеш
func (c *DirectoryCache) SetCurrencies(currencies []storages.Currency) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currencies = currencies
	c.currenciesUp = time.Now()
}

// Currencies возвращает активные валюты из кеша, если они актуальны
func (c *DirectoryCache) Currencies() ([]storages.Currency, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Проверяем, не истек ли TTL
	if c.currenciesUp.IsZero() || time.Since(c.currenciesUp) > c.ttl {
		return nil, false
	}

	// Возвращаем копию, чтобы избежать race condition
	currenciesCopy := make([]storages.Currency, len(c.currencies))
	copy(currenciesCopy, c.currencies)

	return currenciesCopy, true
}

// SetCategory сохраняет категорию в кеш
func (c *DirectoryCache) SetCategory(category storages.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.categories[category.Code] = category
	c.categoriesUp[category.Code] = time.Now()
}

// Category возвращает категорию по коду из кеша, если она актуальна
func (c *DirectoryCache) Category(code string) (storages.Category, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	up, exists := c.categoriesUp[code]
	if !exists || time.Since(up) > c.ttl {
		return storages.Category{}, false
	}

	category, exists := c.categories[code]
	return category, exists
}

// Clear очищает кеш
func (c *DirectoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currencies = nil
	c.currenciesUp = time.Time{}
	c.categories = make(map[string]storages.Category)
	c.categoriesUp = make(map[string]time.Time)
}
