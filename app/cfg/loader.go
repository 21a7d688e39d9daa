package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./congresswire.db" description:"Path to the sqlite database file"`

	// Congress.gov API
	CongressAPIKey  string `long:"congress-api-key" env:"CONGRESS_API_KEY" description:"Congress.gov API key"`
	CongressAPIBase string `long:"congress-api-base" env:"CONGRESS_API_BASE" default:"https://api.congress.gov/v3" description:"Congress.gov API base URL"`

	// Bluesky publishing
	BlueskyHost     string `long:"bluesky-host" env:"BLUESKY_HOST" default:"https://bsky.social" description:"Bluesky PDS host"`
	BlueskyHandle   string `long:"bluesky-handle" env:"BLUESKY_HANDLE" description:"Bluesky account handle"`
	BlueskyPassword string `long:"bluesky-password" env:"BLUESKY_PASSWORD" description:"Bluesky app password"`

	// Anthropic summarization (optional)
	AnthropicAPIKey  string `long:"anthropic-api-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key for summarization (optional)"`
	AnthropicAPIBase string `long:"anthropic-api-base" env:"ANTHROPIC_API_BASE" default:"https://api.anthropic.com" description:"Anthropic API base URL"`
	AnthropicModel   string `long:"anthropic-model" env:"ANTHROPIC_MODEL" default:"claude-3-haiku-20240307" description:"Model used for summaries"`

	// Pipeline configuration
	BatchSize        int    `long:"batch-size" env:"BATCH_SIZE" default:"10" description:"Maximum items per publish or summarize batch"`
	MaxPostAttempts  int    `long:"max-post-attempts" env:"MAX_POST_ATTEMPTS" default:"5" description:"Attempt ceiling before an item needs operator attention"`
	RetryMaxAttempts int    `long:"retry-max-attempts" env:"RETRY_MAX_ATTEMPTS" default:"3" description:"Attempts per operation for transient failures"`
	RetryBaseDelayMS int    `long:"retry-base-delay-ms" env:"RETRY_BASE_DELAY_MS" default:"2000" description:"Initial retry delay in milliseconds"`
	Port             string `long:"port" env:"PORT" default:"8080" description:"HTTP server port for serve mode"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"congresswire/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	// Command options
	Date     string `long:"date" description:"Target activity date (YYYY-MM-DD, default: yesterday)"`
	MaxItems int    `long:"max-items" description:"Override the batch size for this run"`
	DryRun   bool   `long:"dry-run" description:"Render posts without publishing or changing state"`

	Args struct {
		Command string `positional-arg-name:"command" description:"fetch | publish | summarize | stats | serve"`
	} `positional-args:"yes"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		CongressAPIKey:   raw.CongressAPIKey,
		CongressAPIBase:  raw.CongressAPIBase,
		BlueskyHost:      raw.BlueskyHost,
		BlueskyHandle:    raw.BlueskyHandle,
		BlueskyPassword:  raw.BlueskyPassword,
		AnthropicAPIKey:  raw.AnthropicAPIKey,
		AnthropicAPIBase: raw.AnthropicAPIBase,
		AnthropicModel:   raw.AnthropicModel,
		BatchSize:        raw.BatchSize,
		MaxPostAttempts:  raw.MaxPostAttempts,
		RetryMaxAttempts: raw.RetryMaxAttempts,
		RetryBaseDelayMS: raw.RetryBaseDelayMS,
		Port:             raw.Port,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
		Command:          raw.Args.Command,
		Date:             raw.Date,
		MaxItems:         raw.MaxItems,
		DryRun:           raw.DryRun,
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
