package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ScrapesTotal   *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	ScrapeDuration prometheus.Histogram
	TabsExplored   prometheus.Counter
	OcrCharacters  prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		ScrapesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_dashboards_processed_total",
			Help: "The total number of dashboard URLs processed",
		}, nil),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g., 'auth_required', 'nav_timeout', 'db_save_failed'
		ScrapeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraper_scrape_duration_seconds",
			Help:    "Wall-clock time of one full dashboard scrape",
			Buckets: prometheus.ExponentialBuckets(10, 2, 8),
		}),
		TabsExplored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_tabs_explored_total",
			Help: "The total number of navigation tabs explored",
		}),
		OcrCharacters: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scraper_ocr_characters_total",
			Help: "The total number of characters recovered via OCR",
		}),
	}
}

func (m *Metrics) IncScrapesTotal() {
	m.ScrapesTotal.WithLabelValues().Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
