package analyze

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/finlens/statement-analyzer/internal/domain"
)

func TestCounterpartyKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"UPI-Swiggy Bangalore", "swiggy bangalore"},
		{"NEFT: ACME CORP   SALARY", "acme corp salary"},
		{"  Plain   Merchant  ", "plain merchant"},
		{strings.Repeat("x", 60), strings.Repeat("x", 48)},
		// the cut falls inside the 2-byte é; the whole rune goes
		{strings.Repeat("x", 47) + "émore", strings.Repeat("x", 47)},
		{strings.Repeat("ग", 20), strings.Repeat("ग", 16)},
	}

	for _, tt := range tests {
		got := CounterpartyKey(tt.in)
		if got != tt.want {
			t.Errorf("CounterpartyKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("CounterpartyKey(%q) produced invalid UTF-8", tt.in)
		}
	}
}

func TestCounterpartiesRecurrenceFilter(t *testing.T) {
	txs := []*domain.Transaction{
		tx("2024-01-01", 1000, 0, "LANDLORD RENT"),
		tx("2024-02-01", 1000, 0, "LANDLORD RENT"),
		tx("2024-03-01", 1000, 0, "LANDLORD RENT"),
		tx("2024-01-15", 500, 0, "ONE OFF SHOP"),
	}

	parties := Counterparties(txs)

	if len(parties) != 1 {
		t.Fatalf("got %d counterparties, want 1", len(parties))
	}
	p := parties[0]
	if p.Name != "landlord rent" {
		t.Errorf("name = %q", p.Name)
	}
	if p.TotalSent != 3000 {
		t.Errorf("total sent = %v, want 3000", p.TotalSent)
	}
	if p.TransactionCount != 3 {
		t.Errorf("count = %d, want 3", p.TransactionCount)
	}
}

func TestCounterpartiesChannelVariantsGroupTogether(t *testing.T) {
	txs := []*domain.Transaction{
		tx("2024-01-01", 0, 200, "UPI-ACME CORP"),
		tx("2024-02-01", 0, 200, "NEFT: ACME CORP"),
		tx("2024-03-01", 300, 0, "acme corp"),
	}

	parties := Counterparties(txs)

	if len(parties) != 1 {
		t.Fatalf("got %d counterparties, want 1 merged party", len(parties))
	}
	if parties[0].TotalReceived != 400 || parties[0].TotalSent != 300 {
		t.Errorf("flows = sent %v received %v, want 300/400",
			parties[0].TotalSent, parties[0].TotalReceived)
	}
}

func TestCounterpartiesOrderedByFlow(t *testing.T) {
	var txs []*domain.Transaction
	for i := 0; i < 3; i++ {
		txs = append(txs,
			tx("2024-01-01", 100, 0, "SMALL VENDOR"),
			tx("2024-01-02", 5000, 0, "BIG VENDOR"),
		)
	}

	parties := Counterparties(txs)
	if len(parties) != 2 {
		t.Fatalf("got %d counterparties, want 2", len(parties))
	}
	if parties[0].Name != "big vendor" {
		t.Errorf("first party = %q, want big vendor", parties[0].Name)
	}
}
