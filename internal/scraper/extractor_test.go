package scraper

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tableFixture = `
<html><body>
<table>
  <thead><tr><th>Campaign</th><th>Clicks</th><th>Cost</th></tr></thead>
  <tbody>
    <tr><td>Campaign</td><td>Clicks</td><td>Cost</td></tr>
    <tr><td>Brand</td><td>1,204</td><td>$540.10</td></tr>
    <tr><td>Generic</td><td>880</td></tr>
  </tbody>
</table>
<table><tbody></tbody></table>
</body></html>`

func TestExtractTables(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableFixture))
	require.NoError(t, err)

	tables := e.extractTables(doc)
	require.Len(t, tables, 1, "empty table must be dropped")

	table := tables[0]
	require.Equal(t, "table_1", table.ID)
	require.Equal(t, []string{"Campaign", "Clicks", "Cost"}, table.Headers)
	require.Equal(t, 2, table.RowCount, "row repeating the header must be dropped")
	require.Equal(t, 3, table.ColumnCount)
	for _, row := range table.Rows {
		require.Len(t, row, table.ColumnCount)
		require.NotEqual(t, table.Headers, row)
	}
	require.Equal(t, []string{"Generic", "880", ""}, table.Rows[1], "short rows are padded")
}

const chartFixture = `
<html><body>
<div class="report-widget">
  <h3>Spend by Channel</h3>
  <canvas width="400" height="300"></canvas>
</div>
<div class="viz-container">
  <svg class="line-chart">
    <text>Jan</text>
    <text>Feb</text>
    <text> </text>
  </svg>
</div>
<div class="chart-container visualization"><span>legend</span></div>
</body></html>`

func TestExtractCharts(t *testing.T) {
	e := NewExtractor(zap.NewNop())
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(chartFixture))
	require.NoError(t, err)

	charts := e.extractCharts(doc)
	require.Len(t, charts, 3, "an element matching two container strategies is captured once")

	require.Equal(t, "canvas", string(charts[0].Kind))
	require.Equal(t, "Spend by Channel", charts[0].Title)

	require.Equal(t, "svg", string(charts[1].Kind))
	require.Equal(t, []string{"Jan", "Feb"}, charts[1].Labels, "blank svg labels are skipped")

	require.Equal(t, "container", string(charts[2].Kind))
}

func TestParseMetrics(t *testing.T) {
	metrics := parseMetrics([]string{
		"CTR\n2.4%",
		"45,231",
		"CTR\n2.4%",
		"  ",
		"Impressions\n1.2M\nvs last month",
	})
	require.Len(t, metrics, 3)

	require.Equal(t, "CTR", metrics[0].Name)
	require.Equal(t, "2.4%", metrics[0].Value)
	require.Equal(t, "CTR\n2.4%", metrics[0].RawText)

	require.Empty(t, metrics[1].Name, "single-line card has no name")
	require.Equal(t, "45,231", metrics[1].Value)

	require.Equal(t, "Impressions", metrics[2].Name)
	require.Equal(t, "1.2M", metrics[2].Value, "only the second line is the value")
}

func TestExtractFullView(t *testing.T) {
	page := &fakePage{
		html: tableFixture,
		evaluate: func(js string, out any) error {
			switch {
			case strings.Contains(js, "scorecard"):
				return setOut(out, []string{"CPC\n$0.45", "45,231"})
			case strings.Contains(js, "aria-label"):
				return setOut(out, []struct {
					Name  string `json:"name"`
					Value string `json:"value"`
				}{{Name: "Date range", Value: "Last 30 days"}})
			}
			return nil
		},
	}

	e := NewExtractor(zap.NewNop())
	view := e.Extract(context.Background(), page)

	require.Len(t, view.Tables, 1)
	require.Len(t, view.Metrics, 2)
	require.Len(t, view.Filters, 1)
	require.Equal(t, "Date range", view.Filters[0].Name)
	require.Equal(t, "Last 30 days", view.Filters[0].Value)
}
