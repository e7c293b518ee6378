// Package surface renders safety scores and incidents for people and other
// tools: the terminal, JSON, Markdown digests and CSV, XLSX or PDF exports.
package surface

import (
	"fmt"
	"io"

	"github.com/nodesafety/safetyscore/internal/report"
	"github.com/nodesafety/safetyscore/pkg/incident"
)

// Renderer produces formatted output from a ScoreReport.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, r *report.ScoreReport) error
}

// Exporter writes incidents as a downloadable file.
type Exporter interface {
	Export(w io.Writer, records []incident.Record) error
	ContentType() string
	Extension() string
}

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ExporterFor returns the exporter for a format name.
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "", FormatCSV:
		return &CSVExporter{}, nil
	case FormatXLSX:
		return &XLSXExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// RendererFor returns the report renderer for a format name.
func RendererFor(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// ExportFilename names an export of the given date label.
func ExportFilename(label string, e Exporter) string {
	return fmt.Sprintf("incidents_%s.%s", label, e.Extension())
}
