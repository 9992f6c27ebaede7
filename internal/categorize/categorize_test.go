package categorize

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/finlens/statement-analyzer/internal/domain"
)

func TestCategorizeFirstMatchWins(t *testing.T) {
	engine := NewEngine([]Rule{
		{Keyword: "salary", Category: "Income"},
		{Keyword: "sal", Category: "Other"},
	})

	if got := engine.Categorize("Salary Credit March"); got != "Income" {
		t.Errorf("Categorize = %q, want Income", got)
	}
}

func TestCategorizeDefaultRules(t *testing.T) {
	engine := NewDefaultEngine()

	tests := []struct {
		description string
		want        string
	}{
		{"SALARY CREDIT ACME CORP", "Income"},
		{"HOME LOAN EMI 034", "EMI"},
		{"ATM WITHDRAWAL MG ROAD", "Cash"},
		{"UPI-SWIGGY-ORDER", "Transfers"},
		{"SOMETHING ENTIRELY ELSE", Uncategorized},
	}

	for _, tt := range tests {
		if got := engine.Categorize(tt.description); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	engine := NewDefaultEngine()
	txs := []*domain.Transaction{
		{Date: time.Now(), Description: "SALARY CREDIT"},
		{Date: time.Now(), Description: "UNKNOWN MERCHANT"},
	}

	engine.Apply(txs)
	first := []string{txs[0].Category, txs[1].Category}

	engine.Apply(txs)
	if txs[0].Category != first[0] || txs[1].Category != first[1] {
		t.Errorf("second Apply changed categories: %v vs [%s %s]",
			first, txs[0].Category, txs[1].Category)
	}
	if txs[1].Category != Uncategorized {
		t.Errorf("unknown merchant = %q, want %q", txs[1].Category, Uncategorized)
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := "- keyword: zomato\n  category: Food\n- keyword: uber\n  category: Travel\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}

	engine := NewEngine(rules)
	if got := engine.Categorize("ZOMATO ONLINE"); got != "Food" {
		t.Errorf("Categorize = %q, want Food", got)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
