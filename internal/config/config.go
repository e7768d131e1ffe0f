package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all cbudget configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Data       DataConfig       `toml:"data"`
	Remote     RemoteConfig     `toml:"remote"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Currency    string   `toml:"currency"`
	DefaultDays int      `toml:"default_days"`
	Categories  []string `toml:"categories,omitempty"`
}

// DataConfig holds storage locations.
type DataConfig struct {
	DBPath   string `toml:"db_path,omitempty"`
	InboxDir string `toml:"inbox_dir,omitempty"`
}

// RemoteConfig holds hosted backend settings.
type RemoteConfig struct {
	URL         string `toml:"url,omitempty"`
	AnonKey     string `toml:"anon_key,omitempty"`
	AccessToken string `toml:"access_token,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// Environment variables that override file settings.
const (
	EnvRemoteURL   = "CBUDGET_REMOTE_URL"
	EnvAnonKey     = "CBUDGET_ANON_KEY"
	EnvAccessToken = "CBUDGET_ACCESS_TOKEN"
	EnvDBPath      = "CBUDGET_DB"
	EnvInboxDir    = "CBUDGET_INBOX"
	EnvCurrency    = "CBUDGET_CURRENCY"
	EnvDefaultDays = "CBUDGET_DAYS"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency:    DefaultCurrency,
			DefaultDays: 30,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 30,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cbudget")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cbudget")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	LoadEnvFiles()
	ApplyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// LoadEnvFiles loads .env from the working directory, then from the config
// directory. Variables already set in the environment win.
func LoadEnvFiles() {
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(ConfigDir(), ".env"))
}

// ApplyEnv overrides cfg with any CBUDGET_* variables that are set.
func ApplyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Remote.URL, EnvRemoteURL)
	setString(&cfg.Remote.AnonKey, EnvAnonKey)
	setString(&cfg.Remote.AccessToken, EnvAccessToken)
	setString(&cfg.Data.DBPath, EnvDBPath)
	setString(&cfg.Data.InboxDir, EnvInboxDir)
	setString(&cfg.General.Currency, EnvCurrency)

	if v := os.Getenv(EnvDefaultDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.General.DefaultDays = n
		}
	}
}

// RemoteConfigured reports whether enough remote settings exist to sync.
func (c Config) RemoteConfigured() bool {
	return c.Remote.URL != "" && c.Remote.AnonKey != ""
}
