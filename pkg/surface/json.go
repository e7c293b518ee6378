package surface

import (
	"encoding/json"
	"io"

	"github.com/nodesafety/safetyscore/internal/report"
)

// JSONRenderer marshals ScoreReport to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, rep *report.ScoreReport) error {
	return WriteJSON(w, rep)
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
