package browser

import (
	"context"
	"time"
)

// Page is one open, navigated browser page. The scraping pipeline only
// depends on these primitives, never on the automation engine's types.
type Page interface {
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	// HTML returns the full serialized document of the current view.
	HTML(ctx context.Context) (string, error)
	// Evaluate runs a script in the page and unmarshals its JSON result
	// into out. A nil out discards the result.
	Evaluate(ctx context.Context, js string, out any) error
	Click(ctx context.Context, selector string) error
	// WaitVisible blocks until the selector matches a visible element or
	// the timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// Screenshot captures the full page as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Driver owns a browser context backed by a persisted profile and opens
// authenticated report pages.
type Driver interface {
	// Open navigates to targetURL and returns the loaded page. It fails
	// with domain.ErrAuthenticationRequired when the navigation resolves
	// to an identity-provider domain (or the profile is missing), and
	// with domain.ErrNavigationTimeout when the load exceeds the bounded
	// navigation timeout.
	Open(ctx context.Context, targetURL string) (Page, error)
	Close() error
}
