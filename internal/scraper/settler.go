package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/dashboard-scraper/internal/browser"
)

// Elements that signal the dashboard engine has started rendering widgets.
const dashboardMarkerSelector = `canvas, table, [class*="chart"]`

// How close to the maximum extent (in px) counts as "at the bottom".
const bottomSlackPx = 10

// SettleConfig names every wait the settler performs. The target
// dashboards emit no render-complete event, so these bounded pauses are
// the only available synchronization mechanism and must stay tunable.
type SettleConfig struct {
	// MarkerTimeout bounds the wait for the first dashboard marker
	// element. Expiry is non-fatal: extraction proceeds on a partial
	// render.
	MarkerTimeout time.Duration
	// RenderGrace is the pause after markers appear, giving widget data
	// fetches time to complete.
	RenderGrace time.Duration
	// ScrollSteps is the number of proportional positions swept between
	// the top and the container's full extent.
	ScrollSteps int
	// StepPause is the pause after each sweep step; lazy widgets render
	// only once scrolled into view.
	StepPause time.Duration
	// BottomPause is the pause between bottom-settle attempts.
	BottomPause time.Duration
	// MaxBottomAttempts bounds the bottom-settle loop so a page that
	// keeps growing its scroll height cannot hang the scrape.
	MaxBottomAttempts int
}

// Settler forces lazy and asynchronous content on a rendered view to
// finish loading. Everything it does is best-effort: a report with unusual
// markup still gets extracted from whatever did render.
type Settler struct {
	cfg    SettleConfig
	logger *zap.Logger
}

func NewSettler(cfg SettleConfig, logger *zap.Logger) *Settler {
	return &Settler{cfg: cfg, logger: logger}
}

// Settle waits for the dashboard markers and then for the render grace
// period. A marker timeout is logged, not returned: some reports have no
// canvas or table at all and still carry extractable content.
func (s *Settler) Settle(ctx context.Context, page browser.Page) {
	if err := page.WaitVisible(ctx, dashboardMarkerSelector, s.cfg.MarkerTimeout); err != nil {
		s.logger.Warn("dashboard markers never appeared, proceeding with partial render",
			zap.Duration("waited", s.cfg.MarkerTimeout), zap.Error(err))
	}
	sleep(ctx, s.cfg.RenderGrace)
}

type scrollProbe struct {
	Found        bool   `json:"found"`
	Selector     string `json:"selector"`
	ScrollHeight int    `json:"scrollHeight"`
	ClientHeight int    `json:"clientHeight"`
}

type scrollInfo struct {
	ScrollTop    int `json:"scrollTop"`
	ScrollHeight int `json:"scrollHeight"`
	ClientHeight int `json:"clientHeight"`
}

// ScrollSweep walks the true scrollable container from top to bottom in
// proportional steps, settles at the bottom until the scroll position
// stops advancing, and returns to the top so later screenshots start from
// a consistent frame.
func (s *Settler) ScrollSweep(ctx context.Context, page browser.Page) {
	var probe scrollProbe
	if err := page.Evaluate(ctx, scrollProbeScript, &probe); err != nil {
		s.logger.Warn("scroll container probe failed, skipping sweep", zap.Error(err))
		return
	}
	s.logger.Debug("scroll sweep starting",
		zap.Bool("container_found", probe.Found),
		zap.String("selector", probe.Selector),
		zap.Int("scroll_height", probe.ScrollHeight))

	for step := 1; step <= s.cfg.ScrollSteps; step++ {
		if ctx.Err() != nil {
			return
		}
		pos := probe.ScrollHeight * step / s.cfg.ScrollSteps
		var reached int
		if err := page.Evaluate(ctx, scrollToScript(probe.Found, probe.Selector, pos), &reached); err != nil {
			s.logger.Debug("scroll step failed", zap.Int("step", step), zap.Error(err))
		}
		sleep(ctx, s.cfg.StepPause)
	}

	s.settleAtBottom(ctx, page, probe)

	if err := page.Evaluate(ctx, scrollToScript(probe.Found, probe.Selector, 0), nil); err != nil {
		s.logger.Debug("scroll back to top failed", zap.Error(err))
	}
	sleep(ctx, time.Second)
}

// settleAtBottom re-scrolls to the current maximum extent until the
// position stops advancing between attempts. Lazy loading can grow the
// scrollable area while we scroll it, so "the bottom" is a moving target;
// the attempt bound keeps an endlessly growing page from hanging us.
func (s *Settler) settleAtBottom(ctx context.Context, page browser.Page, probe scrollProbe) {
	lastPos := -1
	for attempt := 0; attempt < s.cfg.MaxBottomAttempts; attempt++ {
		if ctx.Err() != nil {
			return
		}
		var info scrollInfo
		if err := page.Evaluate(ctx, scrollInfoScript(probe.Found, probe.Selector), &info); err != nil {
			s.logger.Debug("scroll position read failed", zap.Error(err))
			return
		}
		maxScroll := info.ScrollHeight - info.ClientHeight
		if info.ScrollTop >= maxScroll-bottomSlackPx && info.ScrollTop == lastPos {
			s.logger.Debug("reached scroll bottom",
				zap.Int("position", info.ScrollTop), zap.Int("max", maxScroll))
			return
		}
		if err := page.Evaluate(ctx, scrollToBottomScript(probe.Found, probe.Selector), nil); err != nil {
			s.logger.Debug("scroll to bottom failed", zap.Error(err))
			return
		}
		lastPos = info.ScrollTop
		sleep(ctx, s.cfg.BottomPause)
	}
	s.logger.Debug("bottom settle attempts exhausted", zap.Int("attempts", s.cfg.MaxBottomAttempts))
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
