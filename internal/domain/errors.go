package domain

import "errors"

// Fatal scrape errors. Everything else degrades to partial results.
var (
	// ErrAuthenticationRequired means navigation resolved to an
	// identity-provider domain instead of the report. The caller must
	// re-run the interactive login setup; the scrape is not retried.
	ErrAuthenticationRequired = errors.New("authentication required: session expired or missing")

	// ErrNavigationTimeout means the initial page load exceeded the
	// bounded navigation timeout.
	ErrNavigationTimeout = errors.New("navigation timeout: report did not load")
)
