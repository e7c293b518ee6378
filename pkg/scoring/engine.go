package scoring

import "math"

// MaxScore is the score of a period with no incidents.
const MaxScore = 100.0

// Score folds incidents into a safety score: 100 minus the summed
// deductions, clamped at 0 and rounded to one decimal place. Incidents whose
// type has no rule contribute nothing.
func (t *RuleTable) Score(incidents []Scorable) float64 {
	total := 0.0
	for _, inc := range incidents {
		if r, ok := t.rules[inc.RuleKey()]; ok {
			total += r.Deduction
		}
	}
	return math.Max(0, RoundTenth(MaxScore-total))
}

// Score is a convenience for typed slices.
func Score[T Scorable](t *RuleTable, incidents []T) float64 {
	s := make([]Scorable, len(incidents))
	for i := range incidents {
		s[i] = incidents[i]
	}
	return t.Score(s)
}

// RoundTenth rounds to one decimal place, halves toward positive infinity.
func RoundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
