package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// elementTimeout bounds a single locator lookup. Missing elements are hard
// failures, so there is no point waiting out the whole navigation budget.
const elementTimeout = 2 * time.Second

type rodPage struct {
	id   string
	page *rod.Page
	mgr  *Manager
}

func (p *rodPage) ID() string { return p.id }

func (p *rodPage) URL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", fmt.Errorf("read page url: %w", err)
	}
	return info.URL, nil
}

func (p *rodPage) Navigate(url string) error {
	if err := p.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	p.mgr.touch(p.page.TargetID)
	return nil
}

func (p *rodPage) BringToFront() error {
	if _, err := p.page.Activate(); err != nil {
		return fmt.Errorf("bring page to front: %w", err)
	}
	p.mgr.touch(p.page.TargetID)
	return nil
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

func (p *rodPage) Click(ctx context.Context, loc Locator) error {
	el, err := p.find(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

func (p *rodPage) Fill(ctx context.Context, loc Locator, text string) error {
	el, err := p.find(ctx, loc)
	if err != nil {
		return err
	}
	// Replace, don't append: select whatever is in the field first.
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text in %s: %w", loc, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

func (p *rodPage) Press(ctx context.Context, loc Locator, key string) error {
	k, err := keyByName(key)
	if err != nil {
		return err
	}
	el, err := p.find(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Type(k); err != nil {
		return fmt.Errorf("press %s on %s: %w", key, loc, err)
	}
	return nil
}

func (p *rodPage) ExpectPopup(ctx context.Context, action func() error) (Page, error) {
	wait := p.page.Context(ctx).WaitOpen()
	if err := action(); err != nil {
		return nil, err
	}
	opened, err := wait()
	if err != nil {
		return nil, fmt.Errorf("wait for popup: %w", err)
	}
	return p.mgr.adopt(opened), nil
}

func (p *rodPage) WaitElement(ctx context.Context, selector string) error {
	if _, err := p.page.Context(ctx).Element(selector); err != nil {
		return fmt.Errorf("%w: selector %q", ErrElementNotFound, selector)
	}
	return nil
}

func (p *rodPage) Eval(ctx context.Context, js string) (json.RawMessage, error) {
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return evalPayload(res)
}

// evalPayload extracts the JSON value from an evaluate result. A nil result
// without an error means the page produced nothing usable.
func evalPayload(res *proto.RuntimeRemoteObject) (json.RawMessage, error) {
	if res == nil {
		return nil, errors.New("evaluate returned no result")
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal eval result: %w", err)
	}
	return raw, nil
}

func (p *rodPage) find(ctx context.Context, loc Locator) (*rod.Element, error) {
	scoped := p.page.Context(ctx).Timeout(elementTimeout)
	el, err := resolve(scoped, loc)
	if err != nil {
		return nil, err
	}
	return el, nil
}

func keyByName(name string) (input.Key, error) {
	switch name {
	case "Tab":
		return input.Tab, nil
	case "Enter":
		return input.Enter, nil
	case "Escape":
		return input.Escape, nil
	case "Backspace":
		return input.Backspace, nil
	}
	if len([]rune(name)) == 1 {
		return input.Key([]rune(name)[0]), nil
	}
	return 0, fmt.Errorf("unsupported key %q", name)
}
