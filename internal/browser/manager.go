package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"timenav/internal/config"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// Manager owns the Chrome instance and implements Driver on top of it. It
// keeps an activation-ordered view of the open targets: Pages() reports the
// most recently foregrounded page last, which is what the navigator treats as
// "active".
type Manager struct {
	cfg        config.BrowserConfig
	mu         sync.Mutex
	browser    *rod.Browser
	controlURL string
	order      []proto.TargetTargetID
	tracked    map[proto.TargetTargetID]*rodPage
}

func NewManager(cfg config.BrowserConfig) *Manager {
	return &Manager{
		cfg:     cfg,
		tracked: make(map[proto.TargetTargetID]*rodPage),
	}
}

// Start connects to an existing Chrome or launches a new one using Rod's launcher.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// If we already have a browser, verify it's still alive.
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		log.Printf("stale browser connection detected, reconnecting...")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
		m.order = nil
		m.tracked = make(map[proto.TargetTargetID]*rodPage)
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" && len(m.cfg.Launch) > 0 {
		bin := m.cfg.Launch[0]
		launch := launcher.New().Bin(bin).Headless(m.cfg.IsHeadless())
		if m.cfg.UserDataDir != "" {
			launch = launch.UserDataDir(m.cfg.UserDataDir)
		}
		for _, rawFlag := range m.cfg.Launch[1:] {
			name, val, hasVal := strings.Cut(strings.TrimLeft(rawFlag, "-"), "=")
			if hasVal {
				launch = launch.Set(flags.Flag(name), val)
			} else {
				launch = launch.Set(flags.Flag(name))
			}
		}
		url, err := launch.Launch()
		if err != nil {
			// Fallback: let Rod pick the port and defaults.
			fallback := launcher.New().Bin(bin).Headless(m.cfg.IsHeadless())
			if alt, altErr := fallback.Launch(); altErr == nil {
				controlURL = alt
			} else {
				return fmt.Errorf("launch chrome: %w (fallback: %v)", err, altErr)
			}
		} else {
			controlURL = url
		}
	}

	if controlURL == "" {
		return errors.New("no debugger_url or launch command provided")
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.controlURL = controlURL
	log.Printf("browser connected at %s", controlURL)
	return nil
}

// ControlURL returns the WebSocket debugger URL for the connected browser.
func (m *Manager) ControlURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.controlURL
}

// Shutdown closes the underlying browser. Pages opened by the tenant stay
// untouched when we only attached to a running Chrome.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = nil
	m.tracked = make(map[proto.TargetTargetID]*rodPage)

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.controlURL = ""
	log.Printf("browser shutdown complete")
	return err
}

// Pages reconciles our activation order against the live target list:
// externally opened tabs are appended, closed ones dropped. The cached order
// is convenience only; the live list is the source of truth.
func (m *Manager) Pages() ([]Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil, errors.New("browser not connected")
	}

	live, err := m.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	alive := make(map[proto.TargetTargetID]*rod.Page, len(live))
	for _, p := range live {
		alive[p.TargetID] = p
	}

	kept := m.order[:0]
	for _, id := range m.order {
		if _, ok := alive[id]; ok {
			kept = append(kept, id)
		} else {
			delete(m.tracked, id)
		}
	}
	m.order = kept

	for _, p := range live {
		if _, ok := m.tracked[p.TargetID]; !ok {
			m.tracked[p.TargetID] = m.newTrackedPage(p)
			m.order = append(m.order, p.TargetID)
		}
	}

	pages := make([]Page, 0, len(m.order))
	for _, id := range m.order {
		pages = append(pages, m.tracked[id])
	}
	return pages, nil
}

// OpenPage creates a fresh blank tab and marks it most recent.
func (m *Manager) OpenPage() (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return nil, errors.New("browser not connected")
	}

	page, err := m.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		log.Printf("warning: failed to set viewport: %v", err)
	}

	tracked := m.newTrackedPage(page)
	m.tracked[page.TargetID] = tracked
	m.order = append(m.order, page.TargetID)
	return tracked, nil
}

func (m *Manager) newTrackedPage(p *rod.Page) *rodPage {
	return &rodPage{id: uuid.NewString(), page: p, mgr: m}
}

// adopt registers a page Rod handed us outside of OpenPage (a popup) and
// marks it most recent.
func (m *Manager) adopt(p *rod.Page) *rodPage {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.tracked[p.TargetID]; ok {
		m.markMostRecentLocked(p.TargetID)
		return existing
	}
	tracked := m.newTrackedPage(p)
	m.tracked[p.TargetID] = tracked
	m.order = append(m.order, p.TargetID)
	return tracked
}

func (m *Manager) touch(id proto.TargetTargetID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markMostRecentLocked(id)
}

func (m *Manager) markMostRecentLocked(id proto.TargetTargetID) {
	for i, other := range m.order {
		if other == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			m.order = append(m.order, id)
			return
		}
	}
	m.order = append(m.order, id)
}
