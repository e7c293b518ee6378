package scoring

// DefaultRules returns the built-in rule table. Incident types in the CSV
// must exactly match one of these keys.
func DefaultRules() *RuleTable {
	return &RuleTable{
		version: DefaultRuleVersion,
		rules: map[string]Rule{
			// PPE
			"no-high-vis": {
				Label:       "No High-Vis Vest",
				Description: "Person detected not wearing a high-visibility vest",
				Deduction:   10,
				RiskScore:   80,
				Severity:    SeverityHigh,
				Emoji:       "🦺",
				Group:       GroupPPE,
			},

			// MHE proximity
			"mhe-close-2.5m": {
				Label:       "MHE Proximity (2.5m)",
				Description: "Person walking within 2.5m of moving MHE",
				Deduction:   5,
				RiskScore:   60,
				Severity:    SeverityMedium,
				Emoji:       "🚜",
				Group:       GroupMHE,
			},
			"mhe-close-1m": {
				Label:       "MHE Proximity (1m)",
				Description: "Person walking within 1m of moving MHE",
				Deduction:   10,
				RiskScore:   90,
				Severity:    SeverityHigh,
				Emoji:       "🚜",
				Group:       GroupMHE,
			},

			// Walkway
			"walkway-exit": {
				Label:       "Walkway Exit (>3s)",
				Description: "Person enters walkway then steps off for more than 3 seconds",
				Deduction:   1,
				RiskScore:   25,
				Severity:    SeverityLow,
				Emoji:       "🚧",
				Group:       GroupWalkway,
			},
			"walkway-congregation-2": {
				Label:       "Walkway Congregation (2)",
				Description: "Two people congregating on a walkway",
				Deduction:   0.5,
				RiskScore:   20,
				Severity:    SeverityLow,
				Emoji:       "🚧",
				Group:       GroupWalkway,
			},
			"walkway-congregation-3": {
				Label:       "Walkway Congregation (3+)",
				Description: "Three or more people congregating on a walkway",
				Deduction:   1,
				RiskScore:   30,
				Severity:    SeverityLow,
				Emoji:       "🚧",
				Group:       GroupWalkway,
			},

			// Dock
			"dock-door-open": {
				Label:       "Unattended Dock Door",
				Description: "Dock door open with no vehicle present on bay",
				Deduction:   5,
				RiskScore:   55,
				Severity:    SeverityMedium,
				Emoji:       "🚪",
				Group:       GroupDock,
			},
		},
	}
}
