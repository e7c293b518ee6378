package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nodesafety/safetyscore/internal/platform"
	"github.com/nodesafety/safetyscore/pkg/config"
	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
)

type globalOpts struct {
	configPath string
	logLevel   string
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(cwd)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(ctx context.Context, g *globalOpts) (*platform.App, error) {
	cfg, err := loadConfig(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	// One-shot commands log at warn by default.
	level := firstNonEmpty(g.logLevel, "warn")
	logger, err := platform.NewLogger(os.Stderr, level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	return platform.New(ctx, cfg, logger)
}

// selection is the set of incidents a command works on.
type selection struct {
	date  string
	start string
	end   string
	shift string
	typ   string
	group string
}

// load returns the selected incidents and a label naming the selection.
func (s selection) load(ctx context.Context, app *platform.App, now time.Time) ([]incident.Record, string, error) {
	filter := incident.Filter{Type: s.typ, Group: scoring.Group(s.group)}
	if s.shift != "" {
		shift, ok := incident.ParseShift(s.shift)
		if !ok {
			return nil, "", fmt.Errorf("unknown shift %q", s.shift)
		}
		filter.Shift = shift
	}
	if s.typ != "" {
		if _, ok := app.Rules.Lookup(s.typ); !ok {
			return nil, "", fmt.Errorf("unknown incident type %q", s.typ)
		}
	}

	if s.start != "" || s.end != "" {
		start, err := time.Parse(time.RFC3339, s.start)
		if err != nil {
			return nil, "", fmt.Errorf("--start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, s.end)
		if err != nil {
			return nil, "", fmt.Errorf("--end: %w", err)
		}
		recs := app.Incidents.Range(ctx, start, end)
		return filter.Apply(recs), incident.FileDate(start) + "_" + incident.FileDate(end), nil
	}

	date := firstNonEmpty(s.date, incident.FileDate(now))
	if _, err := incident.ParseFileDate(date); err != nil {
		return nil, "", fmt.Errorf("--date: %w", err)
	}
	return filter.Apply(app.Incidents.ForDate(ctx, date)), date, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func defaultRulesWith(deductions map[string]float64, version string) (*scoring.RuleTable, error) {
	return scoring.DefaultRules().WithDeductions(deductions, version)
}
