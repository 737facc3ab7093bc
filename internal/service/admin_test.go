package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gw-wallet-core/internal/storages"
)

func pendingTransaction(t *testing.T, storage *MockStorage, userID int64, amount string) *storages.Transaction {
	t.Helper()
	tx := &storages.Transaction{
		UserID:        userID,
		CategoryID:    3,
		Type:          storages.TransactionTypeDebit,
		Status:        storages.TransactionStatusPending,
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: "wallet",
	}
	if err := storage.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
	return tx
}

func TestAdminApprove(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")
	tx := pendingTransaction(t, storage, alice.ID, "10.0000")

	updated, err := svc.AdminTransactionAction(ctx, tx.ID, AdminActionApprove)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Status != storages.TransactionStatusCompleted {
		t.Fatalf("Expected completed transaction, got %s", updated.Status)
	}
	if updated.CompletedAt == nil {
		t.Fatal("Expected completed_at to be stamped")
	}
}

func TestAdminDecline(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")
	wallet := defaultWallet(t, storage, alice.ID)
	storage.fund(wallet.ID, "100.0000")
	tx := pendingTransaction(t, storage, alice.ID, "10.0000")

	updated, err := svc.AdminTransactionAction(ctx, tx.ID, AdminActionDecline)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Status != storages.TransactionStatusFailed {
		t.Fatalf("Expected failed transaction, got %s", updated.Status)
	}

	// Ожидающая транзакция баланс не трогала — отклонение его не меняет
	balance, _ := storage.GetActiveBalance(ctx, wallet.ID)
	if balance.Amount.StringFixed(4) != "100.0000" {
		t.Fatalf("Expected untouched balance, got %s", balance.Amount.StringFixed(4))
	}
}

func TestAdminReverse(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")
	wallet := defaultWallet(t, storage, alice.ID)
	storage.fund(wallet.ID, "100.0000")

	// Завершенное списание с кошелька
	tx, err := storage.ExecuteDebit(ctx, &storages.WalletDebit{
		UserID:        alice.ID,
		WalletID:      wallet.ID,
		Amount:        decimal.RequireFromString("40.0000"),
		Fee:           decimal.RequireFromString("2.0000"),
		CategoryID:    3,
		Status:        storages.TransactionStatusCompleted,
		PaymentMethod: "wallet",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	balance, _ := storage.GetActiveBalance(ctx, wallet.ID)
	if balance.Amount.StringFixed(4) != "58.0000" {
		t.Fatalf("Expected debited balance 58.0000, got %s", balance.Amount.StringFixed(4))
	}

	updated, err := svc.AdminTransactionAction(ctx, tx.ID, AdminActionReverse)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Status != storages.TransactionStatusReversed {
		t.Fatalf("Expected reversed transaction, got %s", updated.Status)
	}

	// Разворот возвращает полное списание (amount + fee)
	balance, _ = storage.GetActiveBalance(ctx, wallet.ID)
	if balance.Amount.StringFixed(4) != "100.0000" {
		t.Fatalf("Expected restored balance 100.0000, got %s", balance.Amount.StringFixed(4))
	}
}

func TestAdminDisallowedActions(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")

	// reverse для ожидающей транзакции запрещен
	pending := pendingTransaction(t, storage, alice.ID, "10.0000")
	if _, err := svc.AdminTransactionAction(ctx, pending.ID, AdminActionReverse); !errors.Is(err, storages.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	// decline для завершенной транзакции запрещен
	completed := pendingTransaction(t, storage, alice.ID, "10.0000")
	if _, err := svc.AdminTransactionAction(ctx, completed.ID, AdminActionApprove); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := svc.AdminTransactionAction(ctx, completed.ID, AdminActionDecline); !errors.Is(err, storages.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	// processing вне allow-list администратора целиком
	processing := pendingTransaction(t, storage, alice.ID, "10.0000")
	status := storages.TransactionStatusProcessing
	storage.UpdateTransaction(ctx, processing.ID, storages.TransactionUpdate{Status: &status})
	if _, err := svc.AdminTransactionAction(ctx, processing.ID, AdminActionApprove); !errors.Is(err, storages.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}
}
