package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"gw-wallet-core/internal/storages"
)

func TestTransfer(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")
	bob := seedUser(t, storage, "bob")
	aliceWallet := defaultWallet(t, storage, alice.ID)
	bobWallet := defaultWallet(t, storage, bob.ID)
	storage.fund(aliceWallet.ID, "100.0000")

	amount := decimal.RequireFromString("30.5000")
	debit, credit, err := svc.Transfer(ctx, alice.ID, aliceWallet.ID, bob.ID, amount, "lunch")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Обе стороны движения имеют общий reference
	if debit.Reference != credit.Reference {
		t.Fatalf("Expected shared reference, got %s and %s", debit.Reference, credit.Reference)
	}
	if debit.Type != storages.TransactionTypeDebit || credit.Type != storages.TransactionTypeCredit {
		t.Fatalf("Expected debit/credit pair, got %s/%s", debit.Type, credit.Type)
	}
	if debit.Status != storages.TransactionStatusCompleted {
		t.Fatalf("Expected completed debit, got %s", debit.Status)
	}

	// Деньги сохраняются: списано ровно столько, сколько зачислено
	aliceBalance, _ := storage.GetActiveBalance(ctx, aliceWallet.ID)
	bobBalance, _ := storage.GetActiveBalance(ctx, bobWallet.ID)
	if aliceBalance.Amount.StringFixed(4) != "69.5000" {
		t.Fatalf("Expected sender balance 69.5000, got %s", aliceBalance.Amount.StringFixed(4))
	}
	if bobBalance.Amount.StringFixed(4) != "30.5000" {
		t.Fatalf("Expected recipient balance 30.5000, got %s", bobBalance.Amount.StringFixed(4))
	}
	total := aliceBalance.Amount.Add(bobBalance.Amount)
	if total.StringFixed(4) != "100.0000" {
		t.Fatalf("Expected total 100.0000 after transfer, got %s", total.StringFixed(4))
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")
	bob := seedUser(t, storage, "bob")
	aliceWallet := defaultWallet(t, storage, alice.ID)
	bobWallet := defaultWallet(t, storage, bob.ID)
	storage.fund(aliceWallet.ID, "10.0000")

	_, _, err := svc.Transfer(ctx, alice.ID, aliceWallet.ID, bob.ID, decimal.RequireFromString("25.0000"), "")
	if !errors.Is(err, storages.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	// Балансы не изменились, транзакции не созданы
	aliceBalance, _ := storage.GetActiveBalance(ctx, aliceWallet.ID)
	bobBalance, _ := storage.GetActiveBalance(ctx, bobWallet.ID)
	if aliceBalance.Amount.StringFixed(4) != "10.0000" || !bobBalance.Amount.IsZero() {
		t.Fatalf("Expected untouched balances, got %s and %s",
			aliceBalance.Amount.StringFixed(4), bobBalance.Amount.StringFixed(4))
	}
	if len(storage.transactions) != 0 {
		t.Fatalf("Expected no transactions, got %d", len(storage.transactions))
	}
}

func TestTransferForeignWallet(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")
	bob := seedUser(t, storage, "bob")
	bobWallet := defaultWallet(t, storage, bob.ID)
	storage.fund(bobWallet.ID, "100.0000")

	// Списание с чужого кошелька отклоняется
	_, _, err := svc.Transfer(ctx, alice.ID, bobWallet.ID, bob.ID, decimal.RequireFromString("5.0000"), "")
	if !errors.Is(err, storages.ErrWalletNotFound) {
		t.Fatalf("Expected ErrWalletNotFound, got %v", err)
	}
}

func TestTransferToSelf(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")
	aliceWallet := defaultWallet(t, storage, alice.ID)
	storage.fund(aliceWallet.ID, "100.0000")

	_, _, err := svc.Transfer(ctx, alice.ID, aliceWallet.ID, alice.ID, decimal.RequireFromString("5.0000"), "")
	if !errors.Is(err, storages.ErrSameWallet) {
		t.Fatalf("Expected ErrSameWallet, got %v", err)
	}
}

func TestTransferInactiveWallet(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")
	bob := seedUser(t, storage, "bob")
	aliceWallet := defaultWallet(t, storage, alice.ID)
	storage.fund(aliceWallet.ID, "100.0000")
	storage.UpdateWalletStatus(ctx, aliceWallet.ID, storages.WalletStatusFrozen)

	_, _, err := svc.Transfer(ctx, alice.ID, aliceWallet.ID, bob.ID, decimal.RequireFromString("5.0000"), "")
	if !errors.Is(err, storages.ErrWalletNotActive) {
		t.Fatalf("Expected ErrWalletNotActive, got %v", err)
	}
}

func TestTransferNonPositiveAmount(t *testing.T) {
	storage := NewMockStorage()
	svc := newTestService(storage, nil)
	ctx := context.Background()

	alice := seedUser(t, storage, "alice")
	bob := seedUser(t, storage, "bob")
	aliceWallet := defaultWallet(t, storage, alice.ID)
	storage.fund(aliceWallet.ID, "100.0000")

	if _, _, err := svc.Transfer(ctx, alice.ID, aliceWallet.ID, bob.ID, decimal.Zero, ""); err == nil {
		t.Fatal("Expected error for zero amount")
	}
	if _, _, err := svc.Transfer(ctx, alice.ID, aliceWallet.ID, bob.ID, decimal.RequireFromString("-1"), ""); err == nil {
		t.Fatal("Expected error for negative amount")
	}
}
