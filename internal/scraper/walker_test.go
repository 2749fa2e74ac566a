package scraper

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type navFixture struct {
	page     *fakePage
	semantic []navCandidate
	margin   []navCandidate
	dead     map[int]bool // indices that fail the clickable re-check
}

func newNavFixture() *navFixture {
	f := &navFixture{page: &fakePage{}, dead: map[int]bool{}}
	f.page.evaluate = func(js string, out any) error {
		switch {
		case strings.Contains(js, `'[role="tab"]'`):
			return setOut(out, f.semantic)
		case strings.Contains(js, "r.left < 100"):
			return setOut(out, f.margin)
		case strings.Contains(js, "return !el.disabled"):
			for idx := range f.dead {
				if strings.Contains(js, `[data-nav-idx="`+strconv.Itoa(idx)+`"]`) {
					return setOut(out, false)
				}
			}
			return setOut(out, true)
		}
		return nil
	}
	return f
}

func newTestWalker(cfg WalkConfig) *Walker {
	logger := zap.NewNop()
	settler := NewSettler(fastSettleConfig(), logger)
	return NewWalker(cfg, settler, NewExtractor(logger), nil, logger)
}

func TestExploreNeverVisitsSameTextTwice(t *testing.T) {
	f := newNavFixture()
	f.semantic = []navCandidate{
		{Index: 0, Text: "Overview"},
		{Index: 1, Text: "Paid Media"},
		{Index: 2, Text: "Overview"}, // same tab matched by a second selector
	}
	f.margin = []navCandidate{
		{Index: 3, Text: "Paid Media"}, // reappears in the left margin
		{Index: 4, Text: "7"},
	}

	w := newTestWalker(WalkConfig{MaxTabs: 20})
	explored, results := w.Explore(context.Background(), f.page, ExploreOptions{})

	require.Equal(t, []string{"Overview", "Paid Media", "7"}, explored)
	require.Len(t, results, 3)
	require.Equal(t, []string{
		`[data-nav-idx="0"]`,
		`[data-nav-idx="1"]`,
		`[data-nav-idx="4"]`,
	}, f.page.clicked)
}

func TestExploreBoundedByMaxTabs(t *testing.T) {
	f := newNavFixture()
	f.semantic = []navCandidate{
		{Index: 0, Text: "1"}, {Index: 1, Text: "2"},
		{Index: 2, Text: "3"}, {Index: 3, Text: "4"},
	}

	w := newTestWalker(WalkConfig{MaxTabs: 2})
	explored, _ := w.Explore(context.Background(), f.page, ExploreOptions{})

	require.Equal(t, []string{"1", "2"}, explored)
}

func TestExploreSkipsFailedClicks(t *testing.T) {
	f := newNavFixture()
	f.semantic = []navCandidate{
		{Index: 0, Text: "Summary"},
		{Index: 1, Text: "Detail"},
		{Index: 2, Text: "Trends"},
	}
	f.page.clickErr = map[string]error{
		`[data-nav-idx="1"]`: errors.New("node not found"),
	}

	w := newTestWalker(WalkConfig{MaxTabs: 20})
	explored, _ := w.Explore(context.Background(), f.page, ExploreOptions{})

	// One unreachable control must never abort the rest of the walk.
	require.Equal(t, []string{"Summary", "Trends"}, explored)
}

func TestExploreSkipsControlsRemovedByPriorClicks(t *testing.T) {
	f := newNavFixture()
	f.semantic = []navCandidate{
		{Index: 0, Text: "Summary"},
		{Index: 1, Text: "Detail"},
	}
	f.dead[1] = true

	w := newTestWalker(WalkConfig{MaxTabs: 20})
	explored, _ := w.Explore(context.Background(), f.page, ExploreOptions{})

	require.Equal(t, []string{"Summary"}, explored)
	require.Equal(t, []string{`[data-nav-idx="0"]`}, f.page.clicked)
}
