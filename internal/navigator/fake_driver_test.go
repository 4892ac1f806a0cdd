package navigator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"timenav/internal/browser"
)

// fakeDriver scripts a browser for planner tests. Pages are kept in
// activation order, most recent last, like the real manager.
type fakeDriver struct {
	mu      sync.Mutex
	pages   []*fakePage
	actions []string
	// lastOpened is the page the most recent click handler opened, consumed
	// by ExpectPopup.
	lastOpened *fakePage
}

func (d *fakeDriver) record(action string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, action)
}

func (d *fakeDriver) recorded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.actions...)
}

func (d *fakeDriver) Pages() ([]browser.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]browser.Page, len(d.pages))
	for i, p := range d.pages {
		out[i] = p
	}
	return out, nil
}

func (d *fakeDriver) OpenPage() (browser.Page, error) {
	d.record("open-page")
	p := &fakePage{id: fmt.Sprintf("page-%d", len(d.pages)), drv: d, url: "about:blank"}
	d.mu.Lock()
	d.pages = append(d.pages, p)
	d.mu.Unlock()
	return p, nil
}

func (d *fakeDriver) addPage(id, url string) *fakePage {
	p := &fakePage{id: id, drv: d, url: url}
	d.mu.Lock()
	d.pages = append(d.pages, p)
	d.mu.Unlock()
	return p
}

func (d *fakeDriver) markMostRecent(page *fakePage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, p := range d.pages {
		if p == page {
			d.pages = append(d.pages[:i], d.pages[i+1:]...)
			d.pages = append(d.pages, page)
			return
		}
	}
}

type fakePage struct {
	id  string
	drv *fakeDriver

	mu    sync.Mutex
	url   string
	urlFn func() string // when set, wins over url
	// urlFailures makes the next n URL reads fail, like mid-navigation reads
	// against a detaching target do.
	urlFailures int

	// onClick maps a locator name to its effect. Clicks on names without a
	// handler fail like a missing element would.
	onClick map[string]func()
	// onNavigate overrides the default "URL becomes the target" behavior.
	onNavigate func(url string)
}

func (p *fakePage) ID() string { return p.id }

func (p *fakePage) URL() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.urlFailures > 0 {
		p.urlFailures--
		return "", fmt.Errorf("target detached")
	}
	if p.urlFn != nil {
		return p.urlFn(), nil
	}
	return p.url, nil
}

func (p *fakePage) setURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

func (p *fakePage) Navigate(url string) error {
	p.drv.record("navigate:" + url)
	p.drv.markMostRecent(p)
	if p.onNavigate != nil {
		p.onNavigate(url)
		return nil
	}
	p.setURL(url)
	return nil
}

func (p *fakePage) BringToFront() error {
	p.drv.record("front:" + p.id)
	p.drv.markMostRecent(p)
	return nil
}

func (p *fakePage) Close() error { return nil }

func (p *fakePage) Click(ctx context.Context, loc browser.Locator) error {
	p.drv.record("click:" + loc.Name)
	handler, ok := p.onClick[loc.Name]
	if !ok {
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, loc)
	}
	if handler != nil {
		handler()
	}
	return nil
}

func (p *fakePage) Fill(ctx context.Context, loc browser.Locator, text string) error {
	p.drv.record("fill:" + loc.Name + "=" + text)
	return nil
}

func (p *fakePage) Press(ctx context.Context, loc browser.Locator, key string) error {
	p.drv.record("press:" + key)
	return nil
}

func (p *fakePage) ExpectPopup(ctx context.Context, action func() error) (browser.Page, error) {
	if err := action(); err != nil {
		return nil, err
	}
	p.drv.mu.Lock()
	opened := p.drv.lastOpened
	p.drv.lastOpened = nil
	p.drv.mu.Unlock()
	if opened == nil {
		return nil, fmt.Errorf("no popup opened")
	}
	return opened, nil
}

func (p *fakePage) WaitElement(ctx context.Context, selector string) error { return nil }

func (p *fakePage) Eval(ctx context.Context, js string) (json.RawMessage, error) {
	return json.RawMessage("null"), nil
}
