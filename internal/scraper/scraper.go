package scraper

import (
	"context"

	"go.uber.org/zap"

	"github.com/user/dashboard-scraper/internal/browser"
	"github.com/user/dashboard-scraper/internal/domain"
)

// Options are the caller-facing flags of one scrape invocation.
type Options struct {
	ExploreNavigation bool
	EnableScrolling   bool
	EnableOCR         bool
}

// Scraper runs the full extraction pipeline against one dashboard URL:
// open an authenticated page, settle it, extract the first view, walk the
// navigation re-settling and re-extracting per tab, then merge everything
// into a single deduplicated report.
//
// A Scraper is safe for concurrent use: every Scrape call opens its own
// isolated page and shares no mutable state with other calls.
type Scraper struct {
	driver    browser.Driver
	settler   *Settler
	extractor *Extractor
	walker    *Walker
	ocr       *ViewRecognizer
	opts      Options
	logger    *zap.Logger
}

func NewScraper(driver browser.Driver, settler *Settler, extractor *Extractor, walker *Walker, ocr *ViewRecognizer, opts Options, logger *zap.Logger) *Scraper {
	return &Scraper{
		driver:    driver,
		settler:   settler,
		extractor: extractor,
		walker:    walker,
		ocr:       ocr,
		opts:      opts,
		logger:    logger,
	}
}

// Scrape extracts one dashboard. Only authentication and navigation
// failures propagate; everything past a loaded page degrades to partial
// results, because best-available data beats aborting on one widget's
// idiosyncrasy. The page is closed on every exit path.
func (s *Scraper) Scrape(ctx context.Context, targetURL string) (*domain.DashboardReport, error) {
	page, err := s.driver.Open(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	s.settler.Settle(ctx, page)
	if s.opts.EnableScrolling {
		s.settler.ScrollSweep(ctx, page)
	}

	meta := s.extractor.Metadata(ctx, page)
	s.logger.Info("extracting initial view",
		zap.String("url", meta.URL), zap.String("title", meta.Title))
	initial := s.extractor.Extract(ctx, page)

	var initialOcr *domain.OcrExtraction
	if s.opts.EnableOCR && s.ocr != nil {
		initialOcr = s.ocr.Recognize(ctx, page, "initial_view")
	}

	var explored []string
	var tabResults []domain.TabExtraction
	if s.opts.ExploreNavigation {
		explored, tabResults = s.walker.Explore(ctx, page, ExploreOptions{
			EnableScroll: s.opts.EnableScrolling,
			EnableOCR:    s.opts.EnableOCR,
		})
	}

	report := Aggregate(meta, initial, initialOcr, explored, tabResults)
	s.logger.Info("scrape finished",
		zap.String("url", targetURL),
		zap.Int("tables", report.Summary.TotalTables),
		zap.Int("metrics", report.Summary.TotalMetrics),
		zap.Int("charts", report.Summary.TotalCharts),
		zap.Int("tabs_explored", len(report.TabsExplored)),
		zap.Int("ocr_characters", report.Summary.TotalOcrCharacters))
	return report, nil
}
