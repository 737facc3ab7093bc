package pkg

import "testing"

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("100.5")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if amount.StringFixed(4) != "100.5000" {
		t.Fatalf("Expected 100.5000, got %s", amount.StringFixed(4))
	}

	if _, err := ParseAmount("0"); err == nil {
		t.Fatal("Expected error for zero amount")
	}
	if _, err := ParseAmount("-5"); err == nil {
		t.Fatal("Expected error for negative amount")
	}
	if _, err := ParseAmount("1.23456"); err == nil {
		t.Fatal("Expected error for too many decimal places")
	}
	if _, err := ParseAmount("abc"); err == nil {
		t.Fatal("Expected error for garbage input")
	}
}

func TestParseFee(t *testing.T) {
	fee, err := ParseFee("")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !fee.IsZero() {
		t.Fatalf("Expected zero fee for empty string, got %s", fee.String())
	}

	fee, err = ParseFee("0.25")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if fee.StringFixed(4) != "0.2500" {
		t.Fatalf("Expected 0.2500, got %s", fee.StringFixed(4))
	}

	if _, err := ParseFee("-0.1"); err == nil {
		t.Fatal("Expected error for negative fee")
	}
}

func TestNormalizeCurrency(t *testing.T) {
	if got := NormalizeCurrency(" ngn "); got != "NGN" {
		t.Fatalf("Expected NGN, got %s", got)
	}
}
