package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/nodesafety/safetyscore/pkg/incident"
	"github.com/nodesafety/safetyscore/pkg/scoring"
	"github.com/nodesafety/safetyscore/pkg/surface"
)

// incidentQuery is a parsed incidents request.
type incidentQuery struct {
	records []incident.Record
	label   string // date or start_end, used in filenames
}

// loadIncidents resolves the date or start/end parameters and the filters
// of r. A returned error is a client error.
func (h *Handler) loadIncidents(r *http.Request) (*incidentQuery, error) {
	q := r.URL.Query()
	ctx := r.Context()

	filter, err := h.parseFilter(r)
	if err != nil {
		return nil, err
	}

	var (
		records []incident.Record
		label   string
	)
	if q.Has("start") || q.Has("end") {
		start, err := time.Parse(time.RFC3339, q.Get("start"))
		if err != nil {
			return nil, fmt.Errorf("start must be an RFC 3339 timestamp")
		}
		end, err := time.Parse(time.RFC3339, q.Get("end"))
		if err != nil {
			return nil, fmt.Errorf("end must be an RFC 3339 timestamp")
		}
		if end.Before(start) {
			return nil, fmt.Errorf("end is before start")
		}
		if h.maxRangeDays > 0 && end.Sub(start) > time.Duration(h.maxRangeDays)*24*time.Hour {
			return nil, fmt.Errorf("range exceeds %d days", h.maxRangeDays)
		}
		records = h.incidents.Range(ctx, start, end)
		label = incident.FileDate(start) + "_" + incident.FileDate(end)
	} else {
		date := q.Get("date")
		if date == "" {
			date = incident.FileDate(h.now())
		} else if _, err := incident.ParseFileDate(date); err != nil {
			return nil, fmt.Errorf("date must be YYYY-MM-DD")
		}
		records = h.incidents.ForDate(ctx, date)
		label = date
	}

	records = filter.Apply(records)
	if records == nil {
		records = []incident.Record{}
	}
	return &incidentQuery{records: records, label: label}, nil
}

func (h *Handler) parseFilter(r *http.Request) (incident.Filter, error) {
	q := r.URL.Query()
	var f incident.Filter

	if s := q.Get("shift"); s != "" {
		shift, ok := incident.ParseShift(s)
		if !ok {
			return f, fmt.Errorf("unknown shift %q", s)
		}
		f.Shift = shift
	}

	rules := h.incidents.Rules()
	if t := q.Get("type"); t != "" {
		if _, ok := rules.Lookup(t); !ok {
			return f, fmt.Errorf("unknown incident type %q", t)
		}
		f.Type = t
	}

	if g := q.Get("group"); g != "" {
		known := false
		for _, rule := range rules.Rules() {
			if string(rule.Group) == g {
				known = true
				break
			}
		}
		if !known {
			return f, fmt.Errorf("unknown group %q", g)
		}
		f.Group = scoring.Group(g)
	}
	return f, nil
}

func (h *Handler) handleIncidents(w http.ResponseWriter, r *http.Request) {
	iq, err := h.loadIncidents(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.incidents.AttachVideoURLs(r.Context(), iq.records))
}

// StatsResponse is the incident stats payload.
type StatsResponse struct {
	incident.Stats
	Score       float64 `json:"score"`
	RuleVersion string  `json:"rule_version"`
}

func (h *Handler) handleIncidentStats(w http.ResponseWriter, r *http.Request) {
	iq, err := h.loadIncidents(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rules := h.incidents.Rules()
	writeJSON(w, http.StatusOK, StatsResponse{
		Stats:       incident.Summarize(iq.records),
		Score:       scoring.Score(rules, iq.records),
		RuleVersion: rules.Version(),
	})
}

func (h *Handler) handleIncidentExport(w http.ResponseWriter, r *http.Request) {
	exp, err := surface.ExporterFor(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	iq, err := h.loadIncidents(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := exp.Export(&buf, iq.records); err != nil {
		h.logger.Error("export failed", "format", exp.Extension(), "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", exp.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", surface.ExportFilename(iq.label, exp)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
