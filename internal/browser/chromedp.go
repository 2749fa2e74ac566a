package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/dashboard-scraper/internal/domain"
)

// Hosts that mean the navigation landed on a login page instead of the
// report. Matched as suffixes of the resolved URL's host.
var defaultIdentityHosts = []string{
	"accounts.google.com",
	"accounts.youtube.com",
	"login.microsoftonline.com",
}

// Masks the most common automation fingerprints before any page script
// runs. Google serves a degraded login flow to detected bots.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
	parameters.name === 'notifications' ?
		Promise.resolve({ state: Notification.permission }) :
		originalQuery(parameters)
);
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
`

// Config holds the browser-level settings for the chromedp driver.
type Config struct {
	ProfileDir    string
	Headless      bool
	UserAgent     string
	WindowWidth   int
	WindowHeight  int
	NavTimeout    time.Duration
	IdentityHosts []string
}

// ChromeDriver implements Driver on top of a single Chrome process with a
// persistent user-data directory, so a prior interactive login is reused.
type ChromeDriver struct {
	cfg         Config
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromeDriver(cfg Config, logger *zap.Logger) *ChromeDriver {
	if len(cfg.IdentityHosts) == 0 {
		cfg.IdentityHosts = defaultIdentityHosts
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserDataDir(cfg.ProfileDir),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromeDriver{
		cfg:         cfg,
		logger:      logger,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// Open navigates to targetURL in a fresh tab. The persistent profile must
// already hold a valid session: when it is missing, or the navigation is
// redirected to an identity provider, Open fails with
// domain.ErrAuthenticationRequired before any extraction can happen.
func (d *ChromeDriver) Open(ctx context.Context, targetURL string) (Page, error) {
	if err := checkProfileDir(d.cfg.ProfileDir); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(d.allocCtx)
	// Tear the tab down if the scrape-level context ends first.
	stop := context.AfterFunc(ctx, tabCancel)

	p := &chromePage{ctx: tabCtx, cancel: func() {
		stop()
		tabCancel()
	}}

	navCtx, navCancel := context.WithTimeout(tabCtx, d.cfg.NavTimeout)
	defer navCancel()

	err := chromedp.Run(navCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		chromedp.Navigate(targetURL),
	)
	if err != nil {
		p.Close()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrNavigationTimeout, targetURL)
		}
		return nil, fmt.Errorf("navigate %s: %w", targetURL, err)
	}

	resolved, err := p.CurrentURL(ctx)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("read resolved url: %w", err)
	}
	if isIdentityURL(resolved, d.cfg.IdentityHosts) {
		d.logger.Warn("navigation resolved to identity provider",
			zap.String("target", targetURL), zap.String("resolved", resolved))
		p.Close()
		return nil, fmt.Errorf("%w: resolved to %s", domain.ErrAuthenticationRequired, resolved)
	}

	d.logger.Info("report page loaded", zap.String("url", resolved))
	return p, nil
}

func (d *ChromeDriver) Close() error {
	d.allocCancel()
	return nil
}

// checkProfileDir fails fast when no authenticated profile exists, so the
// caller can surface "re-run interactive login setup" instead of scraping
// a login page.
func checkProfileDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return fmt.Errorf("%w: browser profile %q is missing or empty", domain.ErrAuthenticationRequired, dir)
	}
	return nil
}

// isIdentityURL reports whether rawURL points at one of the known
// identity-provider hosts.
func isIdentityURL(rawURL string, hosts []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// chromePage adapts one chromedp tab to the Page interface.
type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions against the tab while honoring the caller's
// cancellation and deadline without tearing down the tab itself.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *chromePage) CurrentURL(ctx context.Context) (string, error) {
	var loc string
	err := p.run(ctx, chromedp.Location(&loc))
	return loc, err
}

func (p *chromePage) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, chromedp.Title(&title))
	return title, err
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *chromePage) Evaluate(ctx context.Context, js string, out any) error {
	return p.run(ctx, chromedp.Evaluate(js, out,
		func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
			return params.WithAwaitPromise(true)
		}))
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.FullScreenshot(&buf, 90))
	return buf, err
}

func (p *chromePage) Close() error {
	p.cancel()
	return nil
}
