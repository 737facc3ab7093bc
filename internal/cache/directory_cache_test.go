package cache

import (
	"testing"
	"time"

	"gw-wallet-core/internal/storages"
)

func TestDirectoryCacheCurrencies(t *testing.T) {
	c := NewDirectoryCache(time.Minute)

	if _, ok := c.Currencies(); ok {
		t.Fatal("Expected miss on empty cache")
	}

	c.SetCurrencies([]storages.Currency{{ID: 1, Code: "NGN", IsActive: true}})

	currencies, ok := c.Currencies()
	if !ok {
		t.Fatal("Expected hit after set")
	}
	if len(currencies) != 1 || currencies[0].Code != "NGN" {
		t.Fatalf("Expected NGN, got %+v", currencies)
	}

	// Изменение копии не должно влиять на кеш
	currencies[0].Code = "XXX"
	cached, _ := c.Currencies()
	if cached[0].Code != "NGN" {
		t.Fatal("Expected cache to return an independent copy")
	}
}

func TestDirectoryCacheExpiry(t *testing.T) {
	c := NewDirectoryCache(10 * time.Millisecond)

	c.SetCurrencies([]storages.Currency{{ID: 1, Code: "NGN"}})
	c.SetCategory(storages.Category{ID: 1, Code: "transfer"})

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Currencies(); ok {
		t.Fatal("Expected miss after TTL")
	}
	if _, ok := c.Category("transfer"); ok {
		t.Fatal("Expected miss after TTL")
	}
}

func TestDirectoryCacheCategory(t *testing.T) {
	c := NewDirectoryCache(time.Minute)

	if _, ok := c.Category("transfer"); ok {
		t.Fatal("Expected miss on empty cache")
	}

	c.SetCategory(storages.Category{ID: 1, Code: "transfer", Name: "Transfer"})

	category, ok := c.Category("transfer")
	if !ok {
		t.Fatal("Expected hit after set")
	}
	if category.Name != "Transfer" {
		t.Fatalf("Expected Transfer, got %s", category.Name)
	}

	if _, ok := c.Category("unknown"); ok {
		t.Fatal("Expected miss for unknown code")
	}
}

func TestDirectoryCacheClear(t *testing.T) {
	c := NewDirectoryCache(time.Minute)

	c.SetCurrencies([]storages.Currency{{ID: 1, Code: "NGN"}})
	c.SetCategory(storages.Category{ID: 1, Code: "transfer"})
	c.Clear()

	if _, ok := c.Currencies(); ok {
		t.Fatal("Expected miss after clear")
	}
	if _, ok := c.Category("transfer"); ok {
		t.Fatal("Expected miss after clear")
	}
}
