package browser

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrElementNotFound is returned when no element on the page matches a locator.
var ErrElementNotFound = errors.New("element not found")

// Locator addresses an element either by accessible role + visible name (the
// way a human would describe it) or by a CSS selector. Within optionally
// scopes the search to a container selector.
type Locator struct {
	Role     string `json:"role,omitempty"`
	Name     string `json:"name,omitempty"`
	Exact    bool   `json:"exact,omitempty"`
	Selector string `json:"selector,omitempty"`
	Within   string `json:"within,omitempty"`
}

// ByRole locates an element by accessible role and name.
func ByRole(role, name string) Locator { return Locator{Role: role, Name: name} }

// BySelector locates an element by CSS selector.
func BySelector(selector string) Locator { return Locator{Selector: selector} }

// Driver is the narrow surface the navigator needs from a browser. The live
// page list is the source of truth for "what is open right now"; callers must
// not assume handles stay valid across navigations they did not perform.
type Driver interface {
	// Pages returns all open page handles ordered by activation, most recent last.
	Pages() ([]Page, error)
	// OpenPage creates a fresh blank page and returns its handle.
	OpenPage() (Page, error)
}

// Page is one browser tab or popup.
type Page interface {
	// ID is a stable identifier for this handle within the process.
	ID() string
	// URL re-reads the page's current location. It can change at any time due
	// to redirects outside our control, so never cache the result.
	URL() (string, error)
	Navigate(url string) error
	BringToFront() error
	Close() error

	Click(ctx context.Context, loc Locator) error
	Fill(ctx context.Context, loc Locator, text string) error
	Press(ctx context.Context, loc Locator, key string) error

	// ExpectPopup runs action and resolves with the page the action opened.
	ExpectPopup(ctx context.Context, action func() error) (Page, error)

	// WaitElement blocks until selector resolves on the page.
	WaitElement(ctx context.Context, selector string) error
	// Eval runs a JS function in the page and returns its JSON result.
	Eval(ctx context.Context, js string) (json.RawMessage, error)
}
