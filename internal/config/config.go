// Package config builds the process configuration from defaults, an optional
// JSON file and the environment. It is assembled once at start-up; components
// receive only the slice they need.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/post-curator/internal/drafting"
)

// ErrMissingCredential is returned when an entry point needs a credential that is not configured.
var ErrMissingCredential = errors.New("missing credential")

// Review store backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendNotion   = "notion"
)

// Defaults
const (
	DefaultSQLitePath   = "post_agent.db"
	DefaultRedirectURI  = "http://localhost:8000/callback"
	DefaultTokenFile    = "linkedin_token.json"
	DefaultPollInterval = 60 * time.Second
	DefaultLogLevel     = "info"
)

// Config is the complete process configuration.
type Config struct {
	Store     StoreConfig     `json:"store"`
	LLM       LLMConfig       `json:"llm"`
	Publish   PublishConfig   `json:"publish"`
	Discovery DiscoveryConfig `json:"discovery"`

	PollInterval time.Duration `json:"-" validate:"gte=0"`
	// PollIntervalSeconds is the file form of PollInterval
	PollIntervalSeconds int    `json:"poll_interval_seconds,omitempty" validate:"gte=0"`
	LogLevel            string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
}

// StoreConfig selects and configures the review store and the staged-URL ledger.
type StoreConfig struct {
	// Backend is empty until resolved: notion when Notion keys are set, else sqlite
	Backend          string `json:"backend,omitempty" validate:"omitempty,oneof=memory sqlite postgres notion"`
	SQLitePath       string `json:"sqlite_path,omitempty"`
	DatabaseURL      string `json:"database_url,omitempty"`
	NotionAPIKey     string `json:"notion_api_key,omitempty"`
	NotionDatabaseID string `json:"notion_database_id,omitempty"`
	RedisURL         string `json:"redis_url,omitempty"`
}

// LLMConfig holds the generative provider credentials.
type LLMConfig struct {
	AnthropicKey string `json:"anthropic_api_key,omitempty"`
	OpenAIKey    string `json:"openai_api_key,omitempty"`
	GeminiKey    string `json:"gemini_api_key,omitempty"`
}

// PublishConfig holds LinkedIn credentials and OAuth client settings.
type PublishConfig struct {
	AccessToken  string `json:"access_token,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty" validate:"omitempty,url"`
	TokenFile    string `json:"token_file,omitempty"`
	// TokenKey is an optional 32-byte hex key encrypting the token file
	TokenKey string `json:"token_key,omitempty" validate:"omitempty,hexadecimal,len=64"`
}

// DiscoveryConfig tunes RSS discovery. Zero values take the discovery defaults.
type DiscoveryConfig struct {
	MaxPerSource int  `json:"max_per_source,omitempty" validate:"gte=0"`
	DaysBack     int  `json:"days_back,omitempty" validate:"gte=0"`
	Limit        int  `json:"limit,omitempty" validate:"gte=0"`
	UseBrowser   bool `json:"use_browser,omitempty"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Store:        StoreConfig{SQLitePath: DefaultSQLitePath},
		Publish:      PublishConfig{RedirectURI: DefaultRedirectURI, TokenFile: DefaultTokenFile},
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
	}
}

// Load builds the configuration: defaults, then the JSON file at path (when
// non-empty), then the environment read through getenv. The result is validated.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if getenv != nil {
		if err := cfg.FromEnv(getenv); err != nil {
			return nil, err
		}
	}
	cfg.resolveBackend()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from a JSON file over the defaults.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.PollIntervalSeconds > 0 {
		cfg.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second
	}

	return cfg, nil
}

// FromEnv overlays non-empty environment values onto the configuration.
func (c *Config) FromEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.LLM.AnthropicKey, "ANTHROPIC_API_KEY")
	set(&c.LLM.OpenAIKey, "OPENAI_API_KEY")
	set(&c.LLM.GeminiKey, "GEMINI_API_KEY")

	set(&c.Store.Backend, "REVIEW_STORE")
	set(&c.Store.NotionAPIKey, "NOTION_API_KEY")
	set(&c.Store.NotionDatabaseID, "NOTION_DATABASE_ID")
	set(&c.Store.DatabaseURL, "DATABASE_URL")
	set(&c.Store.SQLitePath, "SQLITE_PATH")
	set(&c.Store.RedisURL, "REDIS_URL")

	set(&c.Publish.AccessToken, "LINKEDIN_ACCESS_TOKEN")
	set(&c.Publish.ClientID, "LINKEDIN_CLIENT_ID")
	set(&c.Publish.ClientSecret, "LINKEDIN_CLIENT_SECRET")
	set(&c.Publish.RedirectURI, "LINKEDIN_REDIRECT_URI")
	set(&c.Publish.TokenFile, "LINKEDIN_TOKEN_FILE")
	set(&c.Publish.TokenKey, "LINKEDIN_TOKEN_KEY")

	set(&c.LogLevel, "LOG_LEVEL")
	c.Store.Backend = strings.ToLower(c.Store.Backend)
	c.LogLevel = strings.ToLower(c.LogLevel)

	if raw := strings.TrimSpace(getenv("POLL_INTERVAL")); raw != "" {
		d, err := parseInterval(raw)
		if err != nil {
			return fmt.Errorf("invalid POLL_INTERVAL %q: %w", raw, err)
		}
		c.PollInterval = d
	}
	return nil
}

// parseInterval accepts a Go duration ("90s") or a bare number of seconds.
func parseInterval(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("must be positive")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}

func (c *Config) resolveBackend() {
	if c.Store.Backend != "" {
		return
	}
	if c.Store.NotionAPIKey != "" && c.Store.NotionDatabaseID != "" {
		c.Store.Backend = BackendNotion
		return
	}
	c.Store.Backend = BackendSQLite
}

// Validate checks that the configuration has valid values.
// Missing credentials are not reported here; see RequireStore and RequirePublish.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if (c.Publish.ClientID == "") != (c.Publish.ClientSecret == "") {
		return fmt.Errorf("config error: LinkedIn client id and secret must be set together")
	}
	if c.Store.Backend == BackendSQLite && strings.TrimSpace(c.Store.SQLitePath) == "" {
		return fmt.Errorf("config error: sqlite store needs a path")
	}
	return nil
}

// RequireStore checks the selected review store has its credentials.
func (c *Config) RequireStore() error {
	switch c.Store.Backend {
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("postgres review store needs DATABASE_URL: %w", ErrMissingCredential)
		}
	case BackendNotion:
		var missing []string
		if c.Store.NotionAPIKey == "" {
			missing = append(missing, "NOTION_API_KEY")
		}
		if c.Store.NotionDatabaseID == "" {
			missing = append(missing, "NOTION_DATABASE_ID")
		}
		if len(missing) > 0 {
			return fmt.Errorf("notion review store needs %s: %w", strings.Join(missing, ", "), ErrMissingCredential)
		}
	}
	return nil
}

// RequirePublish checks that a LinkedIn credential source exists: an access
// token in the environment or a token file on disk.
func (c *Config) RequirePublish() error {
	if c.Publish.AccessToken != "" {
		return nil
	}
	if c.Publish.TokenFile != "" {
		if _, err := os.Stat(c.Publish.TokenFile); err == nil {
			return nil
		}
	}
	return fmt.Errorf("set LINKEDIN_ACCESS_TOKEN or run `post_agent auth`: %w", ErrMissingCredential)
}

// RequireOAuth checks the OAuth client settings needed by the auth flow.
func (c *Config) RequireOAuth() error {
	if c.Publish.ClientID == "" || c.Publish.ClientSecret == "" {
		return fmt.Errorf("set LINKEDIN_CLIENT_ID and LINKEDIN_CLIENT_SECRET: %w", ErrMissingCredential)
	}
	return nil
}

// Credentials returns the provider keys in the form the drafting package expects.
func (l LLMConfig) Credentials() drafting.Credentials {
	return drafting.Credentials{
		AnthropicKey: l.AnthropicKey,
		OpenAIKey:    l.OpenAIKey,
		GeminiKey:    l.GeminiKey,
	}
}
