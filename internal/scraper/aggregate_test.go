package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/dashboard-scraper/internal/domain"
)

func metricsTable() domain.ExtractedTable {
	return domain.ExtractedTable{
		ID:          "table_1",
		Headers:     []string{"Campaign", "Clicks"},
		Rows:        [][]string{{"Brand", "1,204"}, {"Generic", "880"}},
		RowCount:    2,
		ColumnCount: 2,
	}
}

func TestAggregateCollapsesRecapturedWidgets(t *testing.T) {
	// The overview table is visible before navigation and again on the
	// first tab. It must appear once; the tab-only table must survive.
	shared := metricsTable()
	tabOnly := domain.ExtractedTable{
		ID:          "table_1",
		Headers:     []string{"Country", "Sessions"},
		Rows:        [][]string{{"US", "9,120"}},
		RowCount:    1,
		ColumnCount: 2,
	}

	initial := domain.ViewExtraction{
		Tables:  []domain.ExtractedTable{shared},
		Metrics: []domain.ExtractedMetric{{Name: "CTR", Value: "2.4%", RawText: "CTR\n2.4%"}},
	}
	tabs := []domain.TabExtraction{
		{Tab: "Overview", Extraction: domain.ViewExtraction{
			Tables:  []domain.ExtractedTable{shared, tabOnly},
			Metrics: []domain.ExtractedMetric{{Name: "CTR", Value: "2.4%", RawText: "CTR\n2.4%"}},
		}},
	}

	report := Aggregate(domain.ReportMetadata{URL: "https://example.com/r/1"}, initial, nil, []string{"Overview"}, tabs)

	require.Len(t, report.Tables, 2)
	require.Len(t, report.Metrics, 1)
	require.Equal(t, 2, report.Summary.TotalTables)
	require.Equal(t, 1, report.Summary.TotalMetrics)
}

func TestAggregateKeepsDistinctTables(t *testing.T) {
	// Same shape, different cells: structural identity must not collapse
	// tables that merely share headers and dimensions.
	a := metricsTable()
	b := metricsTable()
	b.Rows = [][]string{{"Brand", "1,205"}, {"Generic", "880"}}
	c := metricsTable()
	c.Headers = []string{"Campaign", "Cost"}

	report := Aggregate(domain.ReportMetadata{}, domain.ViewExtraction{
		Tables: []domain.ExtractedTable{a, b, c},
	}, nil, nil, nil)

	require.Len(t, report.Tables, 3)
}

func TestAggregateNeverDeduplicatesOcr(t *testing.T) {
	// Two tabs can legitimately read out identical text. Every snapshot
	// is kept and attributed to its source view.
	snap := domain.OcrExtraction{SourceTab: "initial_view", Text: "Sessions 9,120", CharCount: 14}
	tabSnap := snap
	tabSnap.SourceTab = "tab_Overview"

	report := Aggregate(domain.ReportMetadata{}, domain.ViewExtraction{}, &snap, []string{"Overview"}, []domain.TabExtraction{
		{Tab: "Overview", Ocr: &tabSnap},
	})

	require.Len(t, report.OcrExtractions, 2)
	require.Equal(t, "initial_view", report.OcrExtractions[0].SourceTab)
	require.Equal(t, "tab_Overview", report.OcrExtractions[1].SourceTab)
	require.Equal(t, 28, report.Summary.TotalOcrCharacters)
}

func TestDeduplicateIsIdempotent(t *testing.T) {
	items := []domain.ExtractedMetric{
		{Value: "1"}, {Value: "2"}, {Value: "1"}, {Value: "3"}, {Value: "2"},
	}
	once := deduplicate(items)
	twice := deduplicate(once)
	require.Equal(t, []domain.ExtractedMetric{{Value: "1"}, {Value: "2"}, {Value: "3"}}, once)
	require.Equal(t, once, twice)
}

func TestRenderSummary(t *testing.T) {
	report := Aggregate(domain.ReportMetadata{
		DashboardTitle: "Q3 Performance",
		URL:            "https://example.com/r/1",
		ScrapedAt:      time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
	}, domain.ViewExtraction{
		Tables: []domain.ExtractedTable{metricsTable()},
	}, &domain.OcrExtraction{
		SourceTab: "initial_view", Text: "CTR 2.4%", CharCount: 8,
	}, []string{"Overview", "Trends"}, nil)

	s := report.SummaryText
	require.Contains(t, s, "DASHBOARD DATA EXTRACTION")
	require.Contains(t, s, "Dashboard: Q3 Performance")
	require.Contains(t, s, "Extracted: 2025-06-01 09:30:00")
	require.Contains(t, s, "Tabs/Pages Explored: 2")
	require.Contains(t, s, "Overview, Trends")
	require.Contains(t, s, "[Tab: initial_view]")
	require.Contains(t, s, "CTR 2.4%")
	require.Contains(t, s, "Tables Found: 1")
	require.NotContains(t, s, "WARNING")
}

func TestRenderSummaryWarnsWithoutOcr(t *testing.T) {
	report := Aggregate(domain.ReportMetadata{URL: "https://example.com/r/1"}, domain.ViewExtraction{}, nil, nil, nil)
	require.Contains(t, report.SummaryText, "WARNING: No OCR data extracted")
}
