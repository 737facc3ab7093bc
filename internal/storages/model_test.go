package storages

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    string
		to      string
		allowed bool
	}{
		{TransactionStatusPending, TransactionStatusProcessing, true},
		{TransactionStatusPending, TransactionStatusCompleted, true},
		{TransactionStatusPending, TransactionStatusFailed, true},
		{TransactionStatusPending, TransactionStatusCancelled, true},
		{TransactionStatusPending, TransactionStatusReversed, false},
		{TransactionStatusProcessing, TransactionStatusCompleted, true},
		{TransactionStatusProcessing, TransactionStatusFailed, true},
		{TransactionStatusProcessing, TransactionStatusCancelled, false},
		{TransactionStatusCompleted, TransactionStatusReversed, true},
		{TransactionStatusCompleted, TransactionStatusFailed, false},
		{TransactionStatusFailed, TransactionStatusCompleted, false},
		{TransactionStatusReversed, TransactionStatusCompleted, false},
		{TransactionStatusCancelled, TransactionStatusPending, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.allowed)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	terminal := []string{
		TransactionStatusFailed,
		TransactionStatusReversed,
		TransactionStatusCancelled,
		TransactionStatusRefunded,
	}
	for _, status := range terminal {
		if !IsTerminalStatus(status) {
			t.Errorf("Expected %s to be terminal", status)
		}
	}

	nonTerminal := []string{
		TransactionStatusPending,
		TransactionStatusProcessing,
		TransactionStatusCompleted,
	}
	for _, status := range nonTerminal {
		if IsTerminalStatus(status) {
			t.Errorf("Expected %s to be non-terminal", status)
		}
	}
}
