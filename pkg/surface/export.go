package surface

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/nodesafety/safetyscore/pkg/incident"
)

// ExportColumns is the column order of every incident export.
var ExportColumns = []string{"ID", "Date", "Time", "Location", "Type", "Duration", "Risk Score", "Shift"}

func exportRow(r incident.Record) []string {
	duration := ""
	if r.Duration != nil {
		duration = *r.Duration
	}
	return []string{
		r.ID, r.Date, r.Time, r.Location, r.SafetyEventType,
		duration, strconv.Itoa(r.RiskScore), string(r.Shift),
	}
}

// CSVExporter writes RFC 4180 CSV.
type CSVExporter struct{}

func (e *CSVExporter) ContentType() string { return "text/csv" }
func (e *CSVExporter) Extension() string   { return FormatCSV }

func (e *CSVExporter) Export(w io.Writer, records []incident.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(exportRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSXExporter writes a single-sheet workbook.
type XLSXExporter struct{}

const xlsxSheet = "incidents"

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (e *XLSXExporter) Extension() string { return FormatXLSX }

func (e *XLSXExporter) Export(w io.Writer, records []incident.Record) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	header := make([]any, len(ExportColumns))
	for i, c := range ExportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		cells := exportRow(r)
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		row[6] = r.RiskScore
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// PDFExporter writes an A4 landscape table.
type PDFExporter struct {
	Title string
}

func (e *PDFExporter) ContentType() string { return "application/pdf" }
func (e *PDFExporter) Extension() string   { return FormatPDF }

var pdfWidths = []float64{62, 22, 18, 60, 42, 18, 22, 24}

func (e *PDFExporter) Export(w io.Writer, records []incident.Record) error {
	title := e.Title
	if title == "" {
		title = "Safety Incidents"
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Incidents: %d", len(records)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	for i, c := range ExportColumns {
		pdf.CellFormat(pdfWidths[i], 6, c, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	// Core fonts are Latin-1 only.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 8)
	for _, r := range records {
		for i, c := range exportRow(r) {
			align := "L"
			if i == 5 || i == 6 {
				align = "R"
			}
			pdf.CellFormat(pdfWidths[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
