package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Congress.gov API
	CongressAPIKey  string
	CongressAPIBase string

	// Bluesky publishing
	BlueskyHost     string
	BlueskyHandle   string
	BlueskyPassword string

	// Anthropic summarization
	AnthropicAPIKey  string
	AnthropicAPIBase string
	AnthropicModel   string

	// Pipeline configuration
	BatchSize        int
	MaxPostAttempts  int
	RetryMaxAttempts int
	RetryBaseDelayMS int
	Port             string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string

	// Command invocation
	Command  string
	Date     string
	MaxItems int
	DryRun   bool
}
