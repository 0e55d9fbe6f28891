package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the segue API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Redis     RedisConfig     `yaml:"redis"`
	LastFM    LastFMConfig    `yaml:"lastfm"`
	Subsonic  SubsonicConfig  `yaml:"subsonic"`
	Recommend RecommendConfig `yaml:"recommend"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RedisConfig holds the artist-cache store settings. Leave addrs empty to
// run with the in-process cache instead.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	CacheTTLSec      int      `yaml:"cache_ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LastFMConfig holds Last.fm API client settings.
type LastFMConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SubsonicConfig holds the media server client settings.
type SubsonicConfig struct {
	BaseURL    string `yaml:"base_url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	ClientName string `yaml:"client_name"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// RecommendConfig holds recommendation pipeline tuning.
type RecommendConfig struct {
	DefaultLimit      int `yaml:"default_limit"`
	MaxLimit          int `yaml:"max_limit"`
	QueryDelayMs      int `yaml:"query_delay_ms"`
	LookupTimeoutSec  int `yaml:"lookup_timeout_sec"`
	MaxPerArtist      int `yaml:"max_per_artist"`
	MinDistinctArtist int `yaml:"min_distinct_artists"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "segue:"
	}
	if c.Redis.CacheTTLSec <= 0 {
		c.Redis.CacheTTLSec = 3600
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.LastFM.BaseURL == "" {
		c.LastFM.BaseURL = "https://ws.audioscrobbler.com/2.0"
	}
	if c.LastFM.TimeoutSec <= 0 {
		c.LastFM.TimeoutSec = 10
	}
	if c.Subsonic.ClientName == "" {
		c.Subsonic.ClientName = "segue"
	}
	if c.Subsonic.TimeoutSec <= 0 {
		c.Subsonic.TimeoutSec = 10
	}
	if c.Recommend.DefaultLimit <= 0 {
		c.Recommend.DefaultLimit = 20
	}
	if c.Recommend.MaxLimit <= 0 {
		c.Recommend.MaxLimit = 100
	}
	if c.Recommend.QueryDelayMs <= 0 {
		c.Recommend.QueryDelayMs = 150
	}
	if c.Recommend.LookupTimeoutSec <= 0 {
		c.Recommend.LookupTimeoutSec = 3
	}
	if c.Recommend.MaxPerArtist <= 0 {
		c.Recommend.MaxPerArtist = 1
	}
	if c.Recommend.MinDistinctArtist <= 0 {
		c.Recommend.MinDistinctArtist = 2
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.LastFM.APIKey == "" {
		return fmt.Errorf("lastfm.api_key is required")
	}
	if c.Subsonic.BaseURL == "" {
		return fmt.Errorf("subsonic.base_url is required")
	}
	if c.Subsonic.Username == "" || c.Subsonic.Password == "" {
		return fmt.Errorf("subsonic.username and subsonic.password are required")
	}
	if c.Recommend.DefaultLimit > c.Recommend.MaxLimit {
		return fmt.Errorf(
			"recommend.default_limit (%d) must not exceed recommend.max_limit (%d)",
			c.Recommend.DefaultLimit, c.Recommend.MaxLimit,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
