package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScrollSweepTerminatesOnGrowingPage(t *testing.T) {
	// Models an infinite-scroll race: every time the scroll position is
	// read, the scrollable area has grown again, so the bottom is never
	// reached and only the attempt bound can stop the loop.
	height := 2000
	scrollTop := 0
	infoReads := 0
	page := &fakePage{}
	page.evaluate = func(js string, out any) error {
		switch {
		case strings.Contains(js, "selectors = ['.mainBlock'"):
			return setOut(out, scrollProbe{
				Found: true, Selector: ".mainBlock",
				ScrollHeight: height, ClientHeight: 800,
			})
		case strings.Contains(js, "container.scrollTop = container.scrollHeight"):
			scrollTop = height - 800
			return setOut(out, scrollTop)
		case strings.Contains(js, "scrollTop: container.scrollTop"):
			infoReads++
			height += 500 // the page grows on every poll
			return setOut(out, scrollInfo{
				ScrollTop: scrollTop, ScrollHeight: height, ClientHeight: 800,
			})
		case strings.Contains(js, "container.scrollTop ="):
			return setOut(out, 0)
		}
		return nil
	}

	cfg := fastSettleConfig()
	cfg.MaxBottomAttempts = 5
	s := NewSettler(cfg, zap.NewNop())

	s.ScrollSweep(context.Background(), page)

	require.Equal(t, cfg.MaxBottomAttempts, infoReads,
		"bottom settle must stop at its attempt bound")
}

func TestScrollSweepStopsWhenBottomStable(t *testing.T) {
	const height, client = 3000, 800
	scrollTop := 0
	infoReads := 0
	page := &fakePage{}
	page.evaluate = func(js string, out any) error {
		switch {
		case strings.Contains(js, "selectors = ['.mainBlock'"):
			return setOut(out, scrollProbe{
				Found: true, Selector: ".mainBlock",
				ScrollHeight: height, ClientHeight: client,
			})
		case strings.Contains(js, "container.scrollTop = container.scrollHeight"):
			scrollTop = height - client
			return setOut(out, scrollTop)
		case strings.Contains(js, "scrollTop: container.scrollTop"):
			infoReads++
			return setOut(out, scrollInfo{
				ScrollTop: scrollTop, ScrollHeight: height, ClientHeight: client,
			})
		}
		return nil
	}

	s := NewSettler(fastSettleConfig(), zap.NewNop())
	s.ScrollSweep(context.Background(), page)

	// Read 1 sees the top, read 2 sees the bottom freshly reached, read 3
	// sees it unchanged and stops, well under the attempt bound.
	require.Equal(t, 3, infoReads)
}

func TestSettleMarkerTimeoutIsNonFatal(t *testing.T) {
	page := &fakePage{waitErr: errors.New("waiting for selector: timeout")}
	s := NewSettler(fastSettleConfig(), zap.NewNop())

	// Must return normally; a report with unusual markup still gets
	// extracted from whatever rendered.
	s.Settle(context.Background(), page)
}
