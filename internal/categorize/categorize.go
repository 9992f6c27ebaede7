// Package categorize assigns category labels to transactions using an
// ordered keyword rule table. Rules are static configuration, not learned;
// the matcher is pure so re-categorizing is always a no-op.
package categorize

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/finlens/statement-analyzer/internal/domain"
)

// Uncategorized is returned when no rule keyword appears in a description.
const Uncategorized = "Uncategorized"

// Rule is one ordered (keyword, category) pair. The keyword is matched as a
// case-insensitive substring of the description; the first hit wins.
type Rule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// Engine evaluates an ordered rule list.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine over the given rules. Keywords are lowered
// once up front.
func NewEngine(rules []Rule) *Engine {
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		compiled[i] = Rule{
			Keyword:  strings.ToLower(r.Keyword),
			Category: r.Category,
		}
	}
	return &Engine{rules: compiled}
}

// NewDefaultEngine builds an engine over the built-in rule table.
func NewDefaultEngine() *Engine {
	return NewEngine(defaultRules)
}

// LoadRules reads an ordered rule list from a YAML file:
//
//	- keyword: salary
//	  category: Income
//	- keyword: emi
//	  category: EMI
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("categorize.LoadRules: %w", err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("categorize.LoadRules: parsing %q: %w", path, err)
	}
	return rules, nil
}

// Categorize returns the category for a description: the category of the
// first rule whose keyword is a substring, else Uncategorized.
func (e *Engine) Categorize(description string) string {
	lower := strings.ToLower(description)
	for _, r := range e.rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Category
		}
	}
	return Uncategorized
}

// Apply categorizes every transaction in place. Already-categorized rows
// get the same answer again; the operation is idempotent.
func (e *Engine) Apply(txs []*domain.Transaction) {
	for _, tx := range txs {
		tx.Category = e.Categorize(tx.Description)
	}
}
