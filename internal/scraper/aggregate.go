package scraper

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/user/dashboard-scraper/internal/domain"
)

// Aggregate merges the initial view's extraction with every explored
// tab's into one report. Tables, metrics and charts are deduplicated by
// structural equality: the same widget is often captured twice, once
// before navigation and once on a tab showing the same view. OCR
// extractions are concatenated and never deduplicated; each one is a
// full per-tab snapshot and is allowed to restate numbers seen elsewhere.
func Aggregate(meta domain.ReportMetadata, initial domain.ViewExtraction, initialOcr *domain.OcrExtraction, explored []string, tabs []domain.TabExtraction) *domain.DashboardReport {
	tables := initial.Tables
	metrics := initial.Metrics
	charts := initial.Charts
	for _, tab := range tabs {
		tables = append(tables, tab.Extraction.Tables...)
		metrics = append(metrics, tab.Extraction.Metrics...)
		charts = append(charts, tab.Extraction.Charts...)
	}

	var ocrExtractions []domain.OcrExtraction
	if initialOcr != nil {
		ocrExtractions = append(ocrExtractions, *initialOcr)
	}
	for _, tab := range tabs {
		if tab.Ocr != nil {
			ocrExtractions = append(ocrExtractions, *tab.Ocr)
		}
	}

	report := &domain.DashboardReport{
		Metadata:       meta,
		Tables:         deduplicate(tables),
		Metrics:        deduplicate(metrics),
		Charts:         deduplicate(charts),
		Filters:        initial.Filters,
		OcrExtractions: ocrExtractions,
		TabsExplored:   explored,
	}

	totalOcrChars := 0
	for _, o := range report.OcrExtractions {
		totalOcrChars += o.CharCount
	}
	report.Summary = domain.ReportSummary{
		TotalTables:         len(report.Tables),
		TotalMetrics:        len(report.Metrics),
		TotalCharts:         len(report.Charts),
		TotalFilters:        len(report.Filters),
		TotalOcrExtractions: len(report.OcrExtractions),
		TotalOcrCharacters:  totalOcrChars,
	}
	report.SummaryText = RenderSummary(report)

	return report
}

// deduplicate collapses entries whose stable serialization is identical,
// preserving first-seen order. Identity is structural, not positional:
// genuinely distinct content always survives, re-captures of the same
// widget never do. Running it twice yields the same result as once.
func deduplicate[T any](items []T) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := structuralKey(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// structuralKey serializes an entry's fields in a fixed order. Marshaling
// follows struct field declaration order, so equal values always produce
// equal keys.
func structuralKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

const summaryRule = "================================================================================"
const summaryDivider = "--------------------------------------------------------------------------------"

// RenderSummary flattens a report into a single text document for the
// downstream language-model consumer. OCR text is presented as the
// primary data: these dashboards are visually dense, and the DOM
// extraction is frequently a subset of what OCR recovers.
func RenderSummary(report *domain.DashboardReport) string {
	var b strings.Builder

	b.WriteString(summaryRule + "\n")
	b.WriteString("DASHBOARD DATA EXTRACTION\n")
	b.WriteString(summaryRule + "\n")
	if report.Metadata.DashboardTitle != "" {
		fmt.Fprintf(&b, "Dashboard: %s\n", report.Metadata.DashboardTitle)
	}
	fmt.Fprintf(&b, "URL: %s\n", report.Metadata.URL)
	fmt.Fprintf(&b, "Extracted: %s\n", report.Metadata.ScrapedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("\n")

	if len(report.TabsExplored) > 0 {
		fmt.Fprintf(&b, "Tabs/Pages Explored: %d\n", len(report.TabsExplored))
		fmt.Fprintf(&b, "  -> %s\n", strings.Join(report.TabsExplored, ", "))
		b.WriteString("\n")
	}

	if len(report.OcrExtractions) > 0 {
		b.WriteString(summaryRule + "\n")
		b.WriteString("EXTRACTED DASHBOARD DATA (OCR from each tab)\n")
		b.WriteString(summaryRule + "\n\n")
		for _, o := range report.OcrExtractions {
			fmt.Fprintf(&b, "[Tab: %s]\n", o.SourceTab)
			fmt.Fprintf(&b, "Characters extracted: %d\n", o.CharCount)
			b.WriteString(summaryDivider + "\n")
			b.WriteString(o.Text + "\n\n")
			b.WriteString(summaryRule + "\n\n")
		}
	} else {
		b.WriteString("WARNING: No OCR data extracted. Dashboard may be restricted or empty.\n\n")
	}

	b.WriteString("EXTRACTION SUMMARY\n")
	b.WriteString(summaryDivider + "\n")
	if report.Summary.TotalOcrExtractions > 0 {
		fmt.Fprintf(&b, "OCR Extractions: %d views\n", report.Summary.TotalOcrExtractions)
		fmt.Fprintf(&b, "Total Characters: %d\n", report.Summary.TotalOcrCharacters)
	}
	fmt.Fprintf(&b, "Tables Found: %d\n", report.Summary.TotalTables)
	fmt.Fprintf(&b, "Metrics Found: %d\n", report.Summary.TotalMetrics)
	fmt.Fprintf(&b, "Charts Found: %d\n", report.Summary.TotalCharts)
	fmt.Fprintf(&b, "Filters Found: %d\n", report.Summary.TotalFilters)

	return b.String()
}
