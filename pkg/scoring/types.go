// Package scoring implements the safety score: a rule table mapping incident
// types to deductions, and the calculator that folds incidents into a 0-100
// score.
package scoring

// Severity indicates how concerning an incident type is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Group is the categorical tag the dashboard uses to group incident types.
type Group string

const (
	GroupPPE     Group = "ppe"
	GroupMHE     Group = "mhe"
	GroupWalkway Group = "walkway"
	GroupDock    Group = "dock"
)

// Rule is the scoring metadata for one incident type.
type Rule struct {
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Deduction   float64  `json:"deduction"`  // points subtracted per occurrence
	RiskScore   int      `json:"risk_score"` // 0-100, informational only
	Severity    Severity `json:"severity"`
	Emoji       string   `json:"emoji"`
	Group       Group    `json:"group"`
}

// Scorable is anything keyed by an incident type. The calculator only
// needs the type; deductions always come from the rule table.
type Scorable interface {
	RuleKey() string
}
