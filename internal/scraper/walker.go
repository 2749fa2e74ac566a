package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/dashboard-scraper/internal/browser"
	"github.com/user/dashboard-scraper/internal/domain"
)

// NavMatcher is one discovery strategy for navigation controls. Each
// script tags the elements it picks with a stable data attribute and
// returns their index/text pairs. Strategies run in rank order; the
// geometric left-margin matcher is a last resort tied to one vendor's
// layout and can be swapped out here.
type NavMatcher struct {
	Name   string
	Script string
}

func defaultNavMatchers() []NavMatcher {
	return []NavMatcher{
		{Name: "semantic", Script: semanticNavScript},
		{Name: "left_margin", Script: leftMarginNavScript},
	}
}

// WalkConfig bounds the navigation walk.
type WalkConfig struct {
	// MaxTabs caps how many discovered controls are clicked in one run.
	MaxTabs int
	// TabSettleDelay is the pause after each click, covering the
	// transition animation and the tab's own data fetch.
	TabSettleDelay time.Duration
}

// ExploreOptions toggles the per-tab passes.
type ExploreOptions struct {
	EnableScroll bool
	EnableOCR    bool
}

type navCandidate struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Walker discovers every clickable tab or page control in the report's
// navigation and visits each one, re-settling and re-extracting per tab.
type Walker struct {
	cfg       WalkConfig
	matchers  []NavMatcher
	settler   *Settler
	extractor *Extractor
	ocr       *ViewRecognizer
	logger    *zap.Logger
}

func NewWalker(cfg WalkConfig, settler *Settler, extractor *Extractor, ocr *ViewRecognizer, logger *zap.Logger) *Walker {
	return &Walker{
		cfg:       cfg,
		matchers:  defaultNavMatchers(),
		settler:   settler,
		extractor: extractor,
		ocr:       ocr,
		logger:    logger,
	}
}

// Explore clicks through the discovered controls in order, bounded by
// MaxTabs. A control that fails to click or read is logged and skipped;
// one unreachable tab must never abort collection of the rest.
func (w *Walker) Explore(ctx context.Context, page browser.Page, opts ExploreOptions) ([]string, []domain.TabExtraction) {
	queue := w.discover(ctx, page)
	w.logger.Info("navigation discovery finished", zap.Int("candidates", len(queue)))

	if len(queue) > w.cfg.MaxTabs {
		queue = queue[:w.cfg.MaxTabs]
	}

	var explored []string
	var results []domain.TabExtraction

	for _, cand := range queue {
		if ctx.Err() != nil {
			break
		}
		if !w.stillClickable(ctx, page, cand) {
			w.logger.Debug("navigation control no longer clickable, skipping",
				zap.String("tab", cand.Text))
			continue
		}

		if err := page.Evaluate(ctx, navScrollIntoViewScript(cand.Index), nil); err != nil {
			w.logger.Debug("scroll into view failed", zap.String("tab", cand.Text), zap.Error(err))
		}
		sleep(ctx, 500*time.Millisecond)

		if err := page.Click(ctx, navSelector(cand.Index)); err != nil {
			w.logger.Warn("failed to click navigation control, skipping",
				zap.String("tab", cand.Text), zap.Error(err))
			continue
		}
		w.logger.Info("opened navigation tab", zap.String("tab", cand.Text))

		sleep(ctx, w.cfg.TabSettleDelay)
		if opts.EnableScroll {
			w.settler.ScrollSweep(ctx, page)
		}

		explored = append(explored, cand.Text)

		result := domain.TabExtraction{
			Tab:        cand.Text,
			Extraction: w.extractor.Extract(ctx, page),
		}
		if opts.EnableOCR && w.ocr != nil {
			result.Ocr = w.ocr.Recognize(ctx, page, "tab_"+cand.Text)
		}
		results = append(results, result)
	}

	return explored, results
}

// discover runs every matcher in rank order and deduplicates candidates
// by their visible text, so the same tab is never queued twice even when
// several strategies match it.
func (w *Walker) discover(ctx context.Context, page browser.Page) []navCandidate {
	var queue []navCandidate
	seen := make(map[string]struct{})

	for _, matcher := range w.matchers {
		var candidates []navCandidate
		if err := page.Evaluate(ctx, matcher.Script, &candidates); err != nil {
			w.logger.Warn("navigation matcher failed",
				zap.String("matcher", matcher.Name), zap.Error(err))
			continue
		}
		added := 0
		for _, cand := range candidates {
			if cand.Text == "" {
				continue
			}
			if _, dup := seen[cand.Text]; dup {
				continue
			}
			seen[cand.Text] = struct{}{}
			queue = append(queue, cand)
			added++
		}
		w.logger.Debug("navigation matcher pass",
			zap.String("matcher", matcher.Name),
			zap.Int("matched", len(candidates)),
			zap.Int("added", added))
	}

	return queue
}

// stillClickable re-checks a queued control right before clicking it; a
// prior click can remove or hide controls discovered earlier.
func (w *Walker) stillClickable(ctx context.Context, page browser.Page, cand navCandidate) bool {
	var ok bool
	if err := page.Evaluate(ctx, navClickableScript(cand.Index), &ok); err != nil {
		w.logger.Debug("clickable check failed", zap.String("tab", cand.Text), zap.Error(err))
		return false
	}
	return ok
}
