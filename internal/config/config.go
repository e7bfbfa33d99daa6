// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Automation() AutomationConfig

	// Browser Setters
	SetBrowserExecPath(path string)
	SetBrowserStealth(bool)

	// Logger Setters
	SetLoggerLevel(level string)
}

// Config holds the ambient application settings. Account credentials are not part
// of it; they come from the environment file (see env.go).
type Config struct {
	LoggerCfg     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	BrowserCfg    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	AutomationCfg AutomationConfig `mapstructure:"automation" yaml:"automation"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig         { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig       { return c.BrowserCfg }
func (c *Config) Automation() AutomationConfig { return c.AutomationCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserExecPath(path string) { c.BrowserCfg.ExecPath = path }
func (c *Config) SetBrowserStealth(b bool)       { c.BrowserCfg.Stealth = b }
func (c *Config) SetLoggerLevel(level string)    { c.LoggerCfg.Level = level }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the controlled Chrome process. Headless mode
// and the user-data directory are account settings and live in Account.
type BrowserConfig struct {
	// ExecPath overrides Chrome discovery. Empty means chromedp's own lookup.
	ExecPath      string         `mapstructure:"exec_path" yaml:"exec_path"`
	WindowWidth   int            `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight  int            `mapstructure:"window_height" yaml:"window_height"`
	Args          []string       `mapstructure:"args" yaml:"args"`
	LaunchTimeout time.Duration  `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	Stealth       bool           `mapstructure:"stealth" yaml:"stealth"`
	Debug         bool           `mapstructure:"debug" yaml:"debug"`
	Humanoid      HumanoidConfig `mapstructure:"humanoid" yaml:"humanoid"`
}

// AutomationConfig tunes the waits and pacing of the Instagram flow.
type AutomationConfig struct {
	PageTimeout          time.Duration `mapstructure:"page_timeout" yaml:"page_timeout"`
	ClickTimeout         time.Duration `mapstructure:"click_timeout" yaml:"click_timeout"`
	ScrollRounds         int           `mapstructure:"scroll_rounds" yaml:"scroll_rounds"`
	ScrollStep           int           `mapstructure:"scroll_step" yaml:"scroll_step"`
	ScrollPause          time.Duration `mapstructure:"scroll_pause" yaml:"scroll_pause"`
	SettleDelay          time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	ActionsPerSecond     float64       `mapstructure:"actions_per_second" yaml:"actions_per_second"`
	DismissInterstitials bool          `mapstructure:"dismiss_interstitials" yaml:"dismiss_interstitials"`
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
	v.SetDefault("logger.service_name", "igcomment")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.launch_timeout", "45s")
	v.SetDefault("browser.stealth", false)
	v.SetDefault("browser.debug", false)
	setHumanoidDefaults(v)

	// -- Automation --
	v.SetDefault("automation.page_timeout", "20s")
	v.SetDefault("automation.click_timeout", "5s")
	v.SetDefault("automation.scroll_rounds", 10)
	v.SetDefault("automation.scroll_step", 400)
	v.SetDefault("automation.scroll_pause", "500ms")
	v.SetDefault("automation.settle_delay", "3s")
	v.SetDefault("automation.actions_per_second", 2.0)
	v.SetDefault("automation.dismiss_interstitials", true)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if err := c.BrowserCfg.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if err := c.AutomationCfg.Validate(); err != nil {
		return fmt.Errorf("automation configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the BrowserConfig settings.
func (b *BrowserConfig) Validate() error {
	if b.WindowWidth <= 0 || b.WindowHeight <= 0 {
		return fmt.Errorf("window_width and window_height must be positive")
	}
	if b.LaunchTimeout <= 0 {
		return fmt.Errorf("launch_timeout must be a positive duration")
	}
	return b.Humanoid.Validate()
}

// Validate checks the AutomationConfig settings.
func (a *AutomationConfig) Validate() error {
	if a.PageTimeout <= 0 || a.ClickTimeout <= 0 {
		return fmt.Errorf("page_timeout and click_timeout must be positive durations")
	}
	if a.ScrollRounds < 1 {
		return fmt.Errorf("scroll_rounds must be at least 1")
	}
	if a.ActionsPerSecond <= 0 {
		return fmt.Errorf("actions_per_second must be greater than 0")
	}
	if a.SettleDelay < 0 || a.ScrollPause < 0 {
		return fmt.Errorf("settle_delay and scroll_pause must not be negative")
	}
	return nil
}
