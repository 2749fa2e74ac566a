package scraper

import (
	"context"
	"encoding/json"
	"time"
)

// fakePage implements browser.Page against canned data. Evaluate is
// dispatched through a per-test closure so each test models exactly the
// page behavior it cares about.
type fakePage struct {
	html       string
	title      string
	url        string
	screenshot []byte
	waitErr    error
	evaluate   func(js string, out any) error
	clicked    []string
	clickErr   map[string]error
	closed     bool
}

func (p *fakePage) CurrentURL(context.Context) (string, error) { return p.url, nil }
func (p *fakePage) Title(context.Context) (string, error)      { return p.title, nil }
func (p *fakePage) HTML(context.Context) (string, error)       { return p.html, nil }

func (p *fakePage) Evaluate(_ context.Context, js string, out any) error {
	if p.evaluate == nil {
		return nil
	}
	return p.evaluate(js, out)
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	if err := p.clickErr[selector]; err != nil {
		return err
	}
	p.clicked = append(p.clicked, selector)
	return nil
}

func (p *fakePage) WaitVisible(context.Context, string, time.Duration) error {
	return p.waitErr
}

func (p *fakePage) Screenshot(context.Context) ([]byte, error) {
	return p.screenshot, nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// setOut delivers a fake script result the same way chromedp would:
// through a JSON round trip.
func setOut(out, v any) error {
	if out == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// fastSettleConfig keeps settler waits negligible in tests.
func fastSettleConfig() SettleConfig {
	return SettleConfig{
		MarkerTimeout:     10 * time.Millisecond,
		RenderGrace:       0,
		ScrollSteps:       8,
		StepPause:         0,
		BottomPause:       0,
		MaxBottomAttempts: 10,
	}
}
