package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// configValidate validates Config struct tags
var configValidate = validator.New()

// Config holds the complete sentidash configuration
type Config struct {
	Data         DataConfig         `yaml:"data" mapstructure:"data"`
	Session      SessionConfig      `yaml:"session" mapstructure:"session"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Cascade      CascadeConfig      `yaml:"cascade" mapstructure:"cascade"`
	Highlights   HighlightsConfig   `yaml:"highlights" mapstructure:"highlights"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the feedback table
type DataConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Format    string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=csv sqlite"` // Empty = infer from extension
	Table     string `yaml:"table" mapstructure:"table" validate:"required"`                     // SQLite table name
	StripHTML bool   `yaml:"strip_html" mapstructure:"strip_html"`

	Remote RemoteConfig `yaml:"remote" mapstructure:"remote"` // Used when Path is an http(s) URL
}

// RemoteConfig controls downloading a feedback table over HTTP
type RemoteConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	MaxBytes   int64         `yaml:"max_bytes" mapstructure:"max_bytes" validate:"gte=0"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	Robots     bool          `yaml:"robots" mapstructure:"robots"`                        // Honour robots.txt
	CacheTTL   time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"gte=0"` // 0 disables the download cache
	CacheDir   string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// SessionConfig controls selection snapshot storage
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gt=0"`
	Dir string        `yaml:"dir" mapstructure:"dir"` // Disk layer for CLI sessions; empty = memory only
}

// ServerConfig controls the HTTP adapter
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"`
}

// CascadeConfig controls option list memoisation
type CascadeConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"gte=0"`
}

// HighlightsConfig controls random highlight sampling
type HighlightsConfig struct {
	Count    int   `yaml:"count" mapstructure:"count" validate:"gt=0"`
	Rankings []int `yaml:"rankings" mapstructure:"rankings" validate:"min=1"`
}

// ConcurrencyConfig controls batch workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gt=0"`
}

// RateLimitingConfig controls per-client request limits on the HTTP adapter
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"` // 0 disables
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=0"`
}

// LLMConfig configures the optional feedback digest
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=openai ollama"`
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"` // seconds
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	MaxEntries int    `yaml:"max_entries" mapstructure:"max_entries" validate:"gte=0"` // Feedback rows sent per digest
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format" validate:"oneof=table json yaml markdown"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level int8 `yaml:"level" mapstructure:"level" validate:"gte=-1,lte=5"` // zapcore level, -1 = debug
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Path:  "feedback.csv",
			Table: "feedback",
			Remote: RemoteConfig{
				Timeout:   time.Minute,
				MaxBytes:  64 << 20,
				UserAgent: "sentidash/" + Version,
				Robots:    true,
				CacheTTL:  time.Hour,
			},
		},
		Session: SessionConfig{
			TTL: 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:         ":8057",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Cascade: CascadeConfig{
			CacheTTL: 10 * time.Minute,
		},
		Highlights: HighlightsConfig{
			Count:    5,
			Rankings: []int{1, 5},
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 20,
			BurstSize:         40,
		},
		LLM: LLMConfig{
			Timeout:    30,
			MaxTokens:  600,
			MaxEntries: 20,
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
