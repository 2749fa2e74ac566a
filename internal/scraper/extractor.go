package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/user/dashboard-scraper/internal/browser"
	"github.com/user/dashboard-scraper/internal/domain"
)

// chartStrategy maps one chart selector to the kind it captures. Tried in
// order; an element matched by an earlier strategy keeps that kind.
type chartStrategy struct {
	selector string
	kind     domain.ChartKind
}

var chartStrategies = []chartStrategy{
	{"canvas", domain.ChartCanvas},
	{`svg[class*="chart"]`, domain.ChartVector},
	{`div[class*="chart-container"]`, domain.ChartContainer},
	{`div[class*="visualization"]`, domain.ChartContainer},
}

// Extractor reads the currently rendered view and pulls out typed
// collections of tables, metrics, charts and filters. It never fails: an
// element that cannot be parsed is skipped and the pass continues, because
// a partially-broken dashboard still yields whatever is readable.
type Extractor struct {
	logger *zap.Logger
}

func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract performs one full structured pass over the page. Tables and
// chart metadata come from the serialized DOM; metric and filter text is
// read in-page so line breaks and visibility are preserved.
func (e *Extractor) Extract(ctx context.Context, page browser.Page) domain.ViewExtraction {
	var out domain.ViewExtraction

	pageHTML, err := page.HTML(ctx)
	if err != nil {
		e.logger.Warn("could not read page html", zap.Error(err))
	} else if doc, derr := goquery.NewDocumentFromReader(strings.NewReader(pageHTML)); derr != nil {
		e.logger.Warn("could not parse page html", zap.Error(derr))
	} else {
		out.Tables = e.extractTables(doc)
		out.Charts = e.extractCharts(doc)
	}

	var metricTexts []string
	if err := page.Evaluate(ctx, metricTextsScript, &metricTexts); err != nil {
		e.logger.Warn("metric extraction script failed", zap.Error(err))
	} else {
		out.Metrics = parseMetrics(metricTexts)
	}

	var rawFilters []domain.ExtractedFilter
	if err := page.Evaluate(ctx, filtersScript, &rawFilters); err != nil {
		e.logger.Warn("filter extraction script failed", zap.Error(err))
	} else {
		out.Filters = rawFilters
	}

	return out
}

// Metadata captures the page title, resolved URL and the dashboard's own
// title heading when one can be found.
func (e *Extractor) Metadata(ctx context.Context, page browser.Page) domain.ReportMetadata {
	meta := domain.ReportMetadata{ScrapedAt: time.Now().UTC()}
	if title, err := page.Title(ctx); err == nil {
		meta.Title = title
	} else {
		e.logger.Debug("could not read page title", zap.Error(err))
	}
	if u, err := page.CurrentURL(ctx); err == nil {
		meta.URL = u
	} else {
		e.logger.Debug("could not read page url", zap.Error(err))
	}
	var dashTitle string
	if err := page.Evaluate(ctx, dashboardTitleScript, &dashTitle); err == nil {
		meta.DashboardTitle = dashTitle
	}
	return meta
}

// extractTables reads every table-like element row by row. Markup that
// repeats the header as a body row is discarded, empty tables are dropped,
// and short rows are padded so every row matches the column count.
func (e *Extractor) extractTables(doc *goquery.Document) []domain.ExtractedTable {
	var tables []domain.ExtractedTable

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var headers []string
		table.Find("thead th, thead td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.TrimSpace(cell.Text()))
		})

		var rows [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) == 0 || equalRows(cells, headers) {
				return
			}
			rows = append(rows, cells)
		})
		if len(rows) == 0 {
			return
		}

		columnCount := 0
		for _, row := range rows {
			if len(row) > columnCount {
				columnCount = len(row)
			}
		}
		for i, row := range rows {
			for len(row) < columnCount {
				row = append(row, "")
			}
			rows[i] = row
		}

		tables = append(tables, domain.ExtractedTable{
			ID:          fmt.Sprintf("table_%d", len(tables)+1),
			Headers:     headers,
			Rows:        rows,
			RowCount:    len(rows),
			ColumnCount: columnCount,
		})
	})

	return tables
}

// extractCharts matches chart widgets by ranked selector strategies.
// Charts are opaque beyond their textual metadata: the title is recovered
// from the nearest widget ancestor and, for vector charts, any embedded
// text labels are collected. The pixel payload is OCR's job.
func (e *Extractor) extractCharts(doc *goquery.Document) []domain.ExtractedChart {
	var charts []domain.ExtractedChart
	seen := make(map[*html.Node]struct{})

	for _, strategy := range chartStrategies {
		doc.Find(strategy.selector).Each(func(_ int, el *goquery.Selection) {
			node := el.Get(0)
			if _, dup := seen[node]; dup {
				return
			}
			seen[node] = struct{}{}

			chart := domain.ExtractedChart{
				ID:   fmt.Sprintf("chart_%d", len(charts)+1),
				Kind: strategy.kind,
			}
			ancestor := el.Closest(`div[class*="widget"], div[class*="container"]`)
			if ancestor.Length() > 0 {
				title := ancestor.Find(`[class*="title"], h1, h2, h3, h4`).First().Text()
				chart.Title = strings.TrimSpace(title)
			}
			if strategy.kind == domain.ChartVector {
				el.Find("text").Each(func(_ int, label *goquery.Selection) {
					if t := strings.TrimSpace(label.Text()); t != "" {
						chart.Labels = append(chart.Labels, t)
					}
				})
			}
			charts = append(charts, chart)
		})
	}

	return charts
}

// parseMetrics turns raw scorecard text blocks into metrics. A block with
// an internal line break splits into name and value; otherwise the whole
// block is the value. Identity is the verbatim raw text, so the same
// widget matched by several strategies collapses to one entry.
func parseMetrics(texts []string) []domain.ExtractedMetric {
	var metrics []domain.ExtractedMetric
	seen := make(map[string]struct{})

	for _, raw := range texts {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}

		lines := strings.Split(raw, "\n")
		if len(lines) >= 2 {
			metrics = append(metrics, domain.ExtractedMetric{
				Name:    strings.TrimSpace(lines[0]),
				Value:   strings.TrimSpace(lines[1]),
				RawText: raw,
			})
		} else {
			metrics = append(metrics, domain.ExtractedMetric{
				Value:   raw,
				RawText: raw,
			})
		}
	}

	return metrics
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
