package browser

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod"
)

// roleSelectors maps an accessible role to the CSS candidates that can carry
// it, explicit [role=...] markup first, then the HTML elements with that
// implicit role.
var roleSelectors = map[string]string{
	"button":    `[role="button"], button, input[type="button"], input[type="submit"]`,
	"link":      `[role="link"], a[href], a`,
	"textbox":   `[role="textbox"], input:not([type]), input[type="text"], input[type="email"], input[type="password"], textarea`,
	"searchbox": `[role="searchbox"], input[type="search"]`,
	"listitem":  `[role="listitem"], [role="option"], li`,
	"checkbox":  `[role="checkbox"], input[type="checkbox"]`,
}

func selectorForRole(role string) string {
	if sel, ok := roleSelectors[role]; ok {
		return sel
	}
	return fmt.Sprintf(`[role=%q]`, role)
}

// nameMatches reports whether an element's candidate accessible-name strings
// match the requested name. Non-exact matching is a case-insensitive
// substring check, which is what the recorded flows rely on ("Internal"
// matching "Internal Projects Ltd").
func nameMatches(want string, exact bool, candidates ...string) bool {
	if want == "" {
		return true
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if exact {
			if c == want {
				return true
			}
			continue
		}
		if strings.Contains(strings.ToLower(c), strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// resolve finds the first element matching loc under root. Search order
// favors stable accessibility attributes over visible text: aria-label,
// title, placeholder, name attribute, then rendered text.
func resolve(root *rod.Page, loc Locator) (*rod.Element, error) {
	if loc.Selector != "" {
		el, err := root.Element(loc.Selector)
		if err != nil {
			return nil, fmt.Errorf("%w: selector %q", ErrElementNotFound, loc.Selector)
		}
		return el, nil
	}

	var scope interface {
		Elements(selector string) (rod.Elements, error)
	} = root
	if loc.Within != "" {
		container, err := root.Element(loc.Within)
		if err != nil {
			return nil, fmt.Errorf("%w: scope %q", ErrElementNotFound, loc.Within)
		}
		scope = container
	}

	candidates, err := scope.Elements(selectorForRole(loc.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: role %q", ErrElementNotFound, loc.Role)
	}

	for _, el := range candidates {
		names := make([]string, 0, 5)
		for _, attr := range []string{"aria-label", "title", "placeholder", "name"} {
			if v, err := el.Attribute(attr); err == nil && v != nil {
				names = append(names, *v)
			}
		}
		if text, err := el.Text(); err == nil {
			names = append(names, text)
		}
		if nameMatches(loc.Name, loc.Exact, names...) {
			return el, nil
		}
	}

	return nil, fmt.Errorf("%w: role %q name %q", ErrElementNotFound, loc.Role, loc.Name)
}

// String renders the locator for error messages and logs.
func (l Locator) String() string {
	if l.Selector != "" {
		return fmt.Sprintf("css=%s", l.Selector)
	}
	if l.Within != "" {
		return fmt.Sprintf("%s[role=%s name=%q]", l.Within, l.Role, l.Name)
	}
	return fmt.Sprintf("role=%s name=%q", l.Role, l.Name)
}
