package main

import (
	"github.com/nodesafety/safetyscore/internal/platform"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

type statsOutput struct {
	incident.Stats
	Score       float64 `json:"score"`
	RuleVersion string  `json:"rule_version"`
}

func statsView(app *platform.App, recs []incident.Record) statsOutput {
	return statsOutput{
		Stats:       incident.Summarize(recs),
		Score:       scoring.Score(app.Rules, recs),
		RuleVersion: app.Rules.Version(),
	}
}
