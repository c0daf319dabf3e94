// File: internal/config/config.go
package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/vgrid/internal/vgrid/breakpoint"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Grid() GridConfig
	Terminal() TerminalConfig
	Browser() BrowserConfig
	Catalog() CatalogConfig

	SetBrowserHeadless(bool)
	SetCatalogDriver(string)
	SetCatalogDSN(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	GridCfg     GridConfig     `mapstructure:"grid" yaml:"grid"`
	TerminalCfg TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	CatalogCfg  CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Grid() GridConfig         { return c.GridCfg }
func (c *Config) Terminal() TerminalConfig { return c.TerminalCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Catalog() CatalogConfig   { return c.CatalogCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool) { c.BrowserCfg.Headless = b }
func (c *Config) SetCatalogDriver(d string) { c.CatalogCfg.Driver = d }
func (c *Config) SetCatalogDSN(dsn string)  { c.CatalogCfg.DSN = dsn }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
	// Color paints console levels with ANSI colors. JSON output ignores it.
	Color bool `mapstructure:"color" yaml:"color"`
}

// GridConfig holds timing shared by every grid instance.
type GridConfig struct {
	// LandingDelay defers the one-shot anchor jump after the first layout.
	LandingDelay time.Duration `mapstructure:"landing_delay" yaml:"landing_delay"`
	// FrameRate caps coalesced layout passes per second.
	FrameRate float64 `mapstructure:"frame_rate" yaml:"frame_rate"`
}

// RuleConfig is one breakpoint rule as written in the config file.
// An empty query or "all" is the always-true fallback.
type RuleConfig struct {
	Query          string  `mapstructure:"query" yaml:"query"`
	Gap            float64 `mapstructure:"gap" yaml:"gap"`
	MinColumnWidth float64 `mapstructure:"min_column_width" yaml:"min_column_width"`
}

// Rule parses the query and builds the breakpoint rule.
func (r RuleConfig) Rule() (breakpoint.Rule, error) {
	q, err := breakpoint.ParseQuery(r.Query)
	if err != nil {
		return breakpoint.Rule{}, err
	}
	return breakpoint.Rule{Query: q, Gap: r.Gap, MinColumnWidth: r.MinColumnWidth}, nil
}

// ParseRules converts an ordered rule list and validates it as a set.
func ParseRules(rcs []RuleConfig) ([]breakpoint.Rule, error) {
	rules := make([]breakpoint.Rule, 0, len(rcs))
	for i, rc := range rcs {
		r, err := rc.Rule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, r)
	}
	if err := breakpoint.ValidateSet(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// TerminalConfig configures the terminal host. Lengths are in character cells.
type TerminalConfig struct {
	CellHeight float64      `mapstructure:"cell_height" yaml:"cell_height"`
	Rules      []RuleConfig `mapstructure:"rules" yaml:"rules"`
	// WheelStep is the number of lines one wheel notch scrolls.
	WheelStep int `mapstructure:"wheel_step" yaml:"wheel_step"`
	// AnimationInterval is the tick of animated scrolling.
	AnimationInterval time.Duration `mapstructure:"animation_interval" yaml:"animation_interval"`
	// AnimationSteps is how many ticks an animated scroll takes.
	AnimationSteps int `mapstructure:"animation_steps" yaml:"animation_steps"`
}

// BrowserConfig configures the Chrome host. Lengths are in CSS pixels.
type BrowserConfig struct {
	Headless       bool          `mapstructure:"headless" yaml:"headless"`
	Args           []string      `mapstructure:"args" yaml:"args"`
	ViewportWidth  int           `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height" yaml:"viewport_height"`
	CellHeight     float64       `mapstructure:"cell_height" yaml:"cell_height"`
	Rules          []RuleConfig  `mapstructure:"rules" yaml:"rules"`
	StartupTimeout time.Duration `mapstructure:"startup_timeout" yaml:"startup_timeout"`
}

// CatalogConfig selects where grid items are loaded from.
type CatalogConfig struct {
	// Driver is one of synthetic, sqlite or postgres.
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
	Table  string `mapstructure:"table" yaml:"table"`
	// MaxConns bounds the postgres pool.
	MaxConns int32 `mapstructure:"max_conns" yaml:"max_conns"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "vgrid")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.color", true)

	// -- Grid --
	v.SetDefault("grid.landing_delay", "100ms")
	v.SetDefault("grid.frame_rate", 60)

	// -- Terminal --
	v.SetDefault("terminal.cell_height", 3)
	v.SetDefault("terminal.rules", []map[string]interface{}{
		{"query": "all", "gap": 0},
		{"query": "(min-width: 80)", "gap": 1, "min_column_width": 36},
		{"query": "(min-width: 160)", "gap": 2, "min_column_width": 40},
	})
	v.SetDefault("terminal.wheel_step", 3)
	v.SetDefault("terminal.animation_interval", "16ms")
	v.SetDefault("terminal.animation_steps", 12)

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.viewport_width", 1280)
	v.SetDefault("browser.viewport_height", 800)
	v.SetDefault("browser.cell_height", 160)
	v.SetDefault("browser.rules", []map[string]interface{}{
		{"query": "all", "gap": 16},
		{"query": "(min-width: 500px)", "gap": 32, "min_column_width": 360},
		{"query": "(min-width: 960px)", "gap": 32, "min_column_width": 420},
	})
	v.SetDefault("browser.startup_timeout", "30s")

	// -- Catalog --
	v.SetDefault("catalog.driver", "synthetic")
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("catalog.table", "grid_items")
	v.SetDefault("catalog.max_conns", 4)
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("catalog.dsn", "VGRID_CATALOG_DSN")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.GridCfg.FrameRate <= 0 {
		return fmt.Errorf("grid.frame_rate must be positive")
	}
	if c.GridCfg.LandingDelay < 0 {
		return fmt.Errorf("grid.landing_delay must not be negative")
	}
	if err := c.TerminalCfg.Validate(); err != nil {
		return fmt.Errorf("terminal configuration invalid: %w", err)
	}
	if err := c.BrowserCfg.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if err := c.CatalogCfg.Validate(); err != nil {
		return fmt.Errorf("catalog configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the terminal host settings.
func (t *TerminalConfig) Validate() error {
	if t.CellHeight < 1 {
		return fmt.Errorf("cell_height must be at least one row")
	}
	if t.WheelStep <= 0 {
		return fmt.Errorf("wheel_step must be a positive integer")
	}
	if t.AnimationSteps <= 0 || t.AnimationInterval <= 0 {
		return fmt.Errorf("animation_steps and animation_interval must be positive")
	}
	if _, err := ParseRules(t.Rules); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

// Validate checks the browser host settings.
func (b *BrowserConfig) Validate() error {
	if b.CellHeight <= 0 {
		return fmt.Errorf("cell_height must be positive")
	}
	if b.ViewportWidth <= 0 || b.ViewportHeight <= 0 {
		return fmt.Errorf("viewport_width and viewport_height must be positive integers")
	}
	if _, err := ParseRules(b.Rules); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	return nil
}

// Validate checks the catalog settings.
func (c *CatalogConfig) Validate() error {
	switch c.Driver {
	case "synthetic":
		return nil
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown driver %q (want synthetic, sqlite or postgres)", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn is required for the %s driver", c.Driver)
	}
	if !identifierPattern.MatchString(c.Table) {
		return fmt.Errorf("table %q is not a plain SQL identifier", c.Table)
	}
	if c.Driver == "postgres" && c.MaxConns <= 0 {
		return fmt.Errorf("max_conns must be a positive integer")
	}
	return nil
}
