package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	DefaultAppURL  = "http://localhost:3000"
	DefaultTimeout = 60 * time.Second
	DefaultLimit   = 100
)

// Config represents the application configuration loaded from a TOML file.
//
// It is built once at startup and handed to components by value; nothing reads the environment after that.
type Config struct {
	Wahoo   WahooConfig   `toml:"wahoo"`
	App     AppConfig     `toml:"app"`
	Server  ServerConfig  `toml:"server"`
	Scraper ScraperConfig `toml:"scraper"`
	Log     LogConfig     `toml:"log"`
}

// WahooConfig contains the OAuth2 client registration for the Wahoo API.
type WahooConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURI  string   `toml:"redirect_uri"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	Scopes       []string `toml:"scopes"`
}

// AppConfig contains settings for the browser-facing application.
type AppConfig struct {
	BaseURL string `toml:"base_url"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string  `toml:"host"`
	Port        int     `toml:"port"`
	ScrapeRate  float64 `toml:"scrape_rate"`  // scrape requests per second
	ScrapeBurst int     `toml:"scrape_burst"` // burst size for the scrape limiter
}

// ScraperConfig describes how to invoke the external extraction program.
type ScraperConfig struct {
	Command        string   `toml:"command"`
	Args           []string `toml:"args"`
	WorkDir        string   `toml:"work_dir"`
	ArtifactDir    string   `toml:"artifact_dir"`
	OutputFlag     string   `toml:"output_flag"` // empty means the extractor picks its own timestamped name
	TimeoutSeconds int      `toml:"timeout_seconds"`
	DefaultLimit   int      `toml:"default_limit"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Missing returns the names of required OAuth settings that are empty.
func (w WahooConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(w.ClientID) == "" {
		missing = append(missing, "client_id")
	}
	if strings.TrimSpace(w.ClientSecret) == "" {
		missing = append(missing, "client_secret")
	}
	if strings.TrimSpace(w.RedirectURI) == "" {
		missing = append(missing, "redirect_uri")
	}
	return missing
}

// Complete reports whether client id, secret and redirect URI are all set.
func (w WahooConfig) Complete() bool {
	return len(w.Missing()) == 0
}

// URL returns the application base URL without a trailing slash, falling back to [DefaultAppURL].
func (a AppConfig) URL() string {
	u := strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if u == "" {
		return DefaultAppURL
	}
	return u
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	port := s.Port
	if port == 0 {
		port = 3000
	}
	return fmt.Sprintf("%s:%d", s.Host, port)
}

// Timeout returns the job timeout, defaulting to [DefaultTimeout].
func (s ScraperConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Limit returns the activity limit used when a request omits one.
func (s ScraperConfig) Limit() int {
	if s.DefaultLimit <= 0 {
		return DefaultLimit
	}
	return s.DefaultLimit
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys absent from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFiles loads the given dotenv files into the process environment.
//
// Files that do not exist are skipped; variables already set are not overwritten.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment values onto the config using lookup (usually [os.LookupEnv]).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.Wahoo.ClientID, "WAHOO_CLIENT_ID")
	set(&c.Wahoo.ClientSecret, "WAHOO_CLIENT_SECRET")
	set(&c.Wahoo.RedirectURI, "WAHOO_REDIRECT_URI")
	set(&c.App.BaseURL, "APP_URL", "NEXT_PUBLIC_APP_URL")
	set(&c.Scraper.Command, "WAHOO_SCRAPER_COMMAND")
	set(&c.Log.Level, "LOG_LEVEL")
}
