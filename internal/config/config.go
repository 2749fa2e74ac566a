package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application. The settle and
// navigation waits are explicit, tunable parameters: the target dashboards
// expose no render-complete signal, so bounded delay-then-poll is the only
// synchronization mechanism available.
type Config struct {
	PostgresURL       string `mapstructure:"POSTGRES_URL"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	ServerPort        string `mapstructure:"SERVER_PORT"`
	MaxRetries        int    `mapstructure:"MAX_RETRIES"`
	ScrapeWorkers     int    `mapstructure:"SCRAPE_WORKERS"`
	DeduplicationHrs  int    `mapstructure:"DEDUPLICATION_HOURS"`

	ProfileDir     string `mapstructure:"PROFILE_DIR"`
	Headless       bool   `mapstructure:"HEADLESS"`
	UserAgent      string `mapstructure:"USER_AGENT"`
	ViewportWidth  int    `mapstructure:"VIEWPORT_WIDTH"`
	ViewportHeight int    `mapstructure:"VIEWPORT_HEIGHT"`
	NavTimeoutSec  int    `mapstructure:"NAV_TIMEOUT_SECONDS"`

	MarkerTimeoutSec  int `mapstructure:"MARKER_TIMEOUT_SECONDS"`
	RenderGraceSec    int `mapstructure:"RENDER_GRACE_SECONDS"`
	ScrollSteps       int `mapstructure:"SCROLL_STEPS"`
	ScrollStepPauseMs int `mapstructure:"SCROLL_STEP_PAUSE_MS"`
	BottomPauseMs     int `mapstructure:"BOTTOM_PAUSE_MS"`
	MaxBottomAttempts int `mapstructure:"MAX_BOTTOM_ATTEMPTS"`

	ExploreNavigation bool `mapstructure:"EXPLORE_NAVIGATION"`
	EnableScrolling   bool `mapstructure:"ENABLE_SCROLLING"`
	EnableOCR         bool `mapstructure:"ENABLE_OCR"`
	MaxTabs           int  `mapstructure:"MAX_TABS"`
	TabSettleSec      int  `mapstructure:"TAB_SETTLE_SECONDS"`
	ScrapeTimeoutSec  int  `mapstructure:"SCRAPE_TIMEOUT_SECONDS"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MAX_RETRIES", 2)
	viper.SetDefault("SCRAPE_WORKERS", 2)
	viper.SetDefault("DEDUPLICATION_HOURS", 12)

	viper.SetDefault("PROFILE_DIR", "browser_data_chromium")
	viper.SetDefault("HEADLESS", true)
	viper.SetDefault("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("VIEWPORT_WIDTH", 1920)
	viper.SetDefault("VIEWPORT_HEIGHT", 1080)
	viper.SetDefault("NAV_TIMEOUT_SECONDS", 60)

	viper.SetDefault("MARKER_TIMEOUT_SECONDS", 30)
	viper.SetDefault("RENDER_GRACE_SECONDS", 10)
	viper.SetDefault("SCROLL_STEPS", 8)
	viper.SetDefault("SCROLL_STEP_PAUSE_MS", 2500)
	viper.SetDefault("BOTTOM_PAUSE_MS", 2000)
	viper.SetDefault("MAX_BOTTOM_ATTEMPTS", 10)

	viper.SetDefault("EXPLORE_NAVIGATION", true)
	viper.SetDefault("ENABLE_SCROLLING", true)
	viper.SetDefault("ENABLE_OCR", true)
	viper.SetDefault("MAX_TABS", 20)
	viper.SetDefault("TAB_SETTLE_SECONDS", 8)
	viper.SetDefault("SCRAPE_TIMEOUT_SECONDS", 1800)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
