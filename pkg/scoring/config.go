package scoring

import (
	"fmt"
	"sort"
)

// DefaultRuleVersion identifies the built-in rule table.
const DefaultRuleVersion = "2026-02"

// RuleTable maps incident types to their rules. It is immutable once built;
// the parser and the calculator must share the same table.
type RuleTable struct {
	version string
	rules   map[string]Rule
}

// NewRuleTable builds a table from the given rules.
func NewRuleTable(version string, rules map[string]Rule) (*RuleTable, error) {
	t := &RuleTable{version: version, rules: make(map[string]Rule, len(rules))}
	for key, r := range rules {
		if key == "" {
			return nil, fmt.Errorf("rule with empty incident type")
		}
		if r.Deduction < 0 {
			return nil, fmt.Errorf("rule %q: negative deduction %v", key, r.Deduction)
		}
		if r.RiskScore < 0 || r.RiskScore > 100 {
			return nil, fmt.Errorf("rule %q: risk score %d out of range", key, r.RiskScore)
		}
		t.rules[key] = r
	}
	return t, nil
}

// Lookup returns the rule for an incident type.
func (t *RuleTable) Lookup(incidentType string) (Rule, bool) {
	r, ok := t.rules[incidentType]
	return r, ok
}

// Version returns the version stamped onto records parsed with this table.
func (t *RuleTable) Version() string {
	return t.version
}

// Keys returns all incident types, sorted.
func (t *RuleTable) Keys() []string {
	keys := make([]string, 0, len(t.rules))
	for k := range t.rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rules returns a copy of the underlying map.
func (t *RuleTable) Rules() map[string]Rule {
	out := make(map[string]Rule, len(t.rules))
	for k, r := range t.rules {
		out[k] = r
	}
	return out
}

// WithDeductions returns a new table with the given deduction overrides
// applied. Overrides for unknown incident types are rejected, as is an
// empty version: changed weights must not masquerade as the old table.
func (t *RuleTable) WithDeductions(overrides map[string]float64, version string) (*RuleTable, error) {
	if len(overrides) == 0 {
		return t, nil
	}
	if version == "" || version == t.version {
		return nil, fmt.Errorf("deduction overrides require a new rule version")
	}
	rules := t.Rules()
	for key, d := range overrides {
		r, ok := rules[key]
		if !ok {
			return nil, fmt.Errorf("override for unknown incident type %q", key)
		}
		r.Deduction = d
		rules[key] = r
	}
	return NewRuleTable(version, rules)
}
