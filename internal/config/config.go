package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures all tunable settings for the timenav automation agent.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Browser   BrowserConfig   `yaml:"browser"`
	Portal    PortalConfig    `yaml:"portal"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Timesheet TimesheetConfig `yaml:"timesheet"`
	MCP       MCPConfig       `yaml:"mcp"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	LogFile string `yaml:"log_file"`
}

// BrowserConfig configures how we attach to or launch Chrome for Rod.
type BrowserConfig struct {
	// Control endpoint for Rod (e.g., ws://localhost:9222). Required when launch is empty.
	DebuggerURL string `yaml:"debugger_url"`
	// Optional launch command to start Chrome (e.g., ["chrome", "--start-maximized"]).
	Launch []string `yaml:"launch"`
	// Headless controls whether Chrome runs in headless mode. Defaults to false:
	// the login hop needs a human in front of a visible window.
	Headless *bool `yaml:"headless"`
	// UserDataDir keeps the browsing profile between runs so the portal login
	// session survives process restarts.
	UserDataDir string `yaml:"user_data_dir"`
	// Viewport width for pages (default: 1920).
	ViewportWidth int `yaml:"viewport_width"`
	// Viewport height for pages (default: 1080).
	ViewportHeight int `yaml:"viewport_height"`
}

// PortalConfig names the portal entry point and the UI texts the navigator
// clicks through. These track the target tenant, not this program, so they are
// configuration rather than constants.
type PortalConfig struct {
	// HomeURL is opened when the session starts from an unknown state.
	HomeURL string `yaml:"home_url"`
	// AppSearchText is typed into the portal app search box.
	AppSearchText string `yaml:"app_search_text"`
	// Accessible names of the portal-side controls.
	AppLauncherName string `yaml:"app_launcher_name"`
	SearchBoxName   string `yaml:"search_box_name"`
	SearchFillName  string `yaml:"search_fill_name"`
	AppEntryName    string `yaml:"app_entry_name"`
	// Accessible names of the in-app navigation links.
	TrackTimeLink   string `yaml:"track_time_link"`
	WeeklySheetLink string `yaml:"weekly_sheet_link"`
	HomeLink        string `yaml:"home_link"`
}

// TimeoutConfig bounds the navigator's waits. Login is deliberately long: it
// completes only when a human finishes authenticating in the open window.
type TimeoutConfig struct {
	Navigation   string `yaml:"navigation"`
	Login        string `yaml:"login"`
	PollInterval string `yaml:"poll_interval"`
}

// TimesheetConfig controls how time entries are recorded.
type TimesheetConfig struct {
	// WorkdayStart is the clock time entries begin at, "HH:MM".
	WorkdayStart string `yaml:"workday_start"`
	// ProjectLink is the customer/project popup entry clicked for work days.
	ProjectLink string `yaml:"project_link"`
	// TaskLink is the case/task popup entry clicked for work days.
	TaskLink string `yaml:"task_link"`
	// InternalCustomerText selects the internal customer for non-work days.
	InternalCustomerText string `yaml:"internal_customer_text"`
}

type MCPConfig struct {
	// When set, starts an SSE server on this port instead of stdio-only.
	SSEPort int `yaml:"sse_port"`
}

// DefaultConfig provides reasonable defaults for an attended local run.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:    "timenav",
			Version: "0.2.0",
			LogFile: "timenav.log",
		},
		Browser: BrowserConfig{
			ViewportWidth:  1920,
			ViewportHeight: 1080,
		},
		Portal: PortalConfig{
			HomeURL:         "https://ibase1.sharepoint.com/sites/hub/il",
			AppSearchText:   "netsuite",
			AppLauncherName: "App launcher",
			SearchBoxName:   "Find Microsoft 365 apps",
			SearchFillName:  "Search all your Microsoft 365",
			AppEntryName:    "Netsuite will be opened in new tab",
			TrackTimeLink:   "Track Time",
			WeeklySheetLink: "Weekly Timesheet",
			HomeLink:        "Home",
		},
		Timeouts: TimeoutConfig{
			Navigation:   "10s",
			Login:        "5m",
			PollInterval: "1s",
		},
		Timesheet: TimesheetConfig{
			WorkdayStart:         "07:30",
			ProjectLink:          "PRJ13058 Meta Platforms :",
			TaskLink:             "Standard Time (Project Task)",
			InternalCustomerText: "Internal",
		},
		MCP: MCPConfig{
			SSEPort: 0,
		},
	}
}

// Load reads YAML config from disk and overlays defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, errors.New("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate ensures required fields exist so the agent can start deterministically.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if c.Portal.HomeURL == "" {
		return errors.New("portal.home_url is required")
	}
	if c.Browser.DebuggerURL == "" && len(c.Browser.Launch) == 0 {
		return errors.New("browser.debugger_url or browser.launch must be provided")
	}
	return nil
}

// IsHeadless returns whether Chrome should run in headless mode (default: false).
func (b BrowserConfig) IsHeadless() bool {
	if b.Headless == nil {
		return false // attended by default; login needs a visible window
	}
	return *b.Headless
}

// GetViewportWidth returns the viewport width with a sane default.
func (b BrowserConfig) GetViewportWidth() int {
	if b.ViewportWidth <= 0 {
		return 1920
	}
	return b.ViewportWidth
}

// GetViewportHeight returns the viewport height with a sane default.
func (b BrowserConfig) GetViewportHeight() int {
	if b.ViewportHeight <= 0 {
		return 1080
	}
	return b.ViewportHeight
}

// NavigationTimeout returns the parsed navigation timeout with a sane default.
func (t TimeoutConfig) NavigationTimeout() time.Duration {
	return parseDurationOr(t.Navigation, 10*time.Second)
}

// LoginTimeout returns the parsed login timeout with a sane default. This is
// how long we give a human to finish authenticating.
func (t TimeoutConfig) LoginTimeout() time.Duration {
	return parseDurationOr(t.Login, 5*time.Minute)
}

// PollDuration returns the parsed URL polling interval with a sane default.
func (t TimeoutConfig) PollDuration() time.Duration {
	return parseDurationOr(t.PollInterval, time.Second)
}

// WorkdayStartClock returns the parsed workday start, defaulting to 07:30.
func (s TimesheetConfig) WorkdayStartClock() (hour, minute int) {
	t, err := time.Parse("15:04", s.WorkdayStart)
	if err != nil {
		return 7, 30
	}
	return t.Hour(), t.Minute()
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
