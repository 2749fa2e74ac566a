package domain

import "time"

// ScrapeRequest is the payload for the API
type ScrapeRequest struct {
	URLs        []string `json:"urls"`
	ForceScrape bool     `json:"force_scrape"` // Bypass the recently-scraped rule
}

// ScrapeTask represents a single dashboard URL to be processed by a worker
type ScrapeTask struct {
	URL         string
	ForceScrape bool
}

// ExtractedTable is one table-like widget read from the rendered page.
// Every row has exactly ColumnCount cells; the header row, if present,
// is never counted as a data row.
type ExtractedTable struct {
	ID          string     `json:"table_id"`
	Headers     []string   `json:"headers,omitempty"`
	Rows        [][]string `json:"rows"`
	RowCount    int        `json:"row_count"`
	ColumnCount int        `json:"column_count"`
}

// ExtractedMetric is one scorecard/KPI value. RawText is the verbatim
// captured block and is the identity key: two metrics with identical raw
// text are the same observation.
type ExtractedMetric struct {
	Name    string `json:"metric_name,omitempty"`
	Value   string `json:"metric_value"`
	RawText string `json:"full_text"`
}

// ChartKind classifies how a chart widget is rendered.
type ChartKind string

const (
	ChartCanvas    ChartKind = "canvas"
	ChartVector    ChartKind = "svg"
	ChartContainer ChartKind = "container"
)

// ExtractedChart is opaque beyond its textual metadata; the pixel payload
// is recovered through OCR, not structurally.
type ExtractedChart struct {
	ID     string    `json:"chart_id"`
	Kind   ChartKind `json:"type"`
	Title  string    `json:"title,omitempty"`
	Labels []string  `json:"labels,omitempty"`
}

// ExtractedFilter is an active filter or control on the report.
type ExtractedFilter struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// OcrExtraction is the recognized text of one rendered view. Entries are
// never deduplicated across views: each one is a full per-tab snapshot.
type OcrExtraction struct {
	SourceTab string `json:"source"`
	Text      string `json:"text"`
	CharCount int    `json:"char_count"`
}

// NavigationTab is a discovered clickable control, identified by its
// visible text.
type NavigationTab struct {
	DisplayText string `json:"display_text"`
}

// ViewExtraction is the immutable result of one structured-extraction pass
// over a single settled view.
type ViewExtraction struct {
	Tables  []ExtractedTable
	Metrics []ExtractedMetric
	Charts  []ExtractedChart
	Filters []ExtractedFilter
}

// TabExtraction attributes one view's extraction to the navigation tab
// that produced it.
type TabExtraction struct {
	Tab        string
	Extraction ViewExtraction
	Ocr        *OcrExtraction
}

// ReportMetadata describes the scraped page itself.
type ReportMetadata struct {
	Title          string    `json:"title"`
	DashboardTitle string    `json:"dashboard_title,omitempty"`
	URL            string    `json:"url"`
	ScrapedAt      time.Time `json:"scraped_at"`
}

// ReportSummary holds the closing counts of a completed scrape.
type ReportSummary struct {
	TotalTables         int `json:"total_tables"`
	TotalMetrics        int `json:"total_metrics"`
	TotalCharts         int `json:"total_charts"`
	TotalFilters        int `json:"total_filters"`
	TotalOcrExtractions int `json:"total_ocr_extractions"`
	TotalOcrCharacters  int `json:"total_ocr_characters"`
}

// DashboardReport is the merged, deduplicated result of one scrape
// invocation. Tables, metrics and charts are deduplicated across all views;
// OcrExtractions are not.
type DashboardReport struct {
	Metadata       ReportMetadata    `json:"metadata"`
	Tables         []ExtractedTable  `json:"tables"`
	Metrics        []ExtractedMetric `json:"metrics"`
	Charts         []ExtractedChart  `json:"charts"`
	Filters        []ExtractedFilter `json:"filters"`
	OcrExtractions []OcrExtraction   `json:"ocr_text"`
	TabsExplored   []string          `json:"navigation_explored"`
	Summary        ReportSummary     `json:"summary"`
	SummaryText    string            `json:"-"`
}

// ScrapeStatusResponse is the API response for a URL status query
type ScrapeStatusResponse struct {
	URL        string    `json:"url"`
	Status     string    `json:"status"`
	FailReason string    `json:"fail_reason,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
