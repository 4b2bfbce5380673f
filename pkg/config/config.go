// Package config loads the TOML configuration file and the search API
// credentials. Credentials come from the environment (optionally seeded
// from a .env file) so they never land in the config file on disk.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

type Config struct {
	StorageDir string          `toml:"storage_dir"`
	ListenAddr string          `toml:"listen_addr"`
	WebSearch  WebSearchConfig `toml:"websearch"`
	Extractor  ExtractorConfig `toml:"extractor"`
	Indicators IndicatorConfig `toml:"indicators"`
}

// WebSearchConfig configures the external search client. APIKey and
// SearchEngineID are filled from the environment, not from TOML.
type WebSearchConfig struct {
	APIKey         string   `toml:"-"`
	SearchEngineID string   `toml:"-"`
	Language       string   `toml:"language"`
	CacheTTL       Duration `toml:"cache_ttl"`
	Timeout        Duration `toml:"timeout"`
}

type ExtractorConfig struct {
	Timeout Duration `toml:"timeout"`
}

type IndicatorConfig struct {
	RefreshInterval Duration `toml:"refresh_interval"`
	CacheTTL        Duration `toml:"cache_ttl"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	config := &Config{
		StorageDir: storageDir,
	}
	config.applyDefaults()
	return config, nil
}

// LoadConfig reads configPath, falling back to defaults when the file does
// not exist, and then overlays the search credentials from the environment.
func LoadConfig(configPath string) (*Config, error) {
	config, err := loadFile(configPath)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	config.loadCredentials()
	return config, nil
}

func loadFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8787"
	}
	if c.WebSearch.Language == "" {
		c.WebSearch.Language = "lang_es"
	}
	if c.WebSearch.CacheTTL.Duration == 0 {
		c.WebSearch.CacheTTL = Duration{7 * 24 * time.Hour}
	}
	if c.WebSearch.Timeout.Duration == 0 {
		c.WebSearch.Timeout = Duration{15 * time.Second}
	}
	if c.Extractor.Timeout.Duration == 0 {
		c.Extractor.Timeout = Duration{20 * time.Second}
	}
	if c.Indicators.RefreshInterval.Duration == 0 {
		c.Indicators.RefreshInterval = Duration{time.Hour}
	}
	if c.Indicators.CacheTTL.Duration == 0 {
		c.Indicators.CacheTTL = Duration{time.Hour}
	}
}

// loadCredentials pulls the Google Custom Search credentials from the
// environment, seeding it from a .env file when one is present. Missing
// credentials are not an error: web search degrades silently.
func (c *Config) loadCredentials() {
	_ = godotenv.Load()

	c.WebSearch.APIKey = os.Getenv("GOOGLE_API_KEY")
	c.WebSearch.SearchEngineID = os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
}

// DBPath returns the SQLite database path inside the storage directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.StorageDir, "blueedu.db")
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	// Replace the placeholder storage_dir with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/blueedu", storageDir, 1)
	return template, nil
}

// GetDefaultStorageDir returns the default storage directory for the database
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	storageDir := filepath.Join(dataDir, "blueedu")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", storageDir, err)
	}

	return storageDir, nil
}

// GetConfigDir returns the configuration directory
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	appConfigDir := filepath.Join(configDir, "blueedu")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(appConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", appConfigDir, err)
	}

	return appConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
