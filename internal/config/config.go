package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/randompixle/Flame/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognised keys.
const (
	KeyLogLevel            = "log_level"
	KeyLogPretty           = "log_pretty"
	KeyDependencyInstaller = "dependency_installer"
	KeyMaxDownloadBytes    = "max_download_bytes"
	KeyHTTPTimeout         = "http_timeout"
	KeyWatchExtensions     = "watch_extensions"
	KeyDefaultRepo         = "default_repo"
	KeyDefaultBranch       = "default_branch"
	KeyPromptColor         = "prompt_color"
)

// DefaultMaxDownloadBytes caps a single fetched payload.
const DefaultMaxDownloadBytes = 16 << 20

// Settings is the typed view of the loaded configuration.
type Settings struct {
	LogLevel            string
	LogPretty           bool
	DependencyInstaller string
	MaxDownloadBytes    int64
	HTTPTimeout         time.Duration
	WatchExtensions     bool
	DefaultRepo         string
	DefaultBranch       string
	PromptColor         bool
}

// Dir returns the Flame home directory. FLAME_HOME wins over ~/.flame.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.flame/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyLogPretty, true)
	viper.SetDefault(KeyDependencyInstaller, "")
	viper.SetDefault(KeyMaxDownloadBytes, DefaultMaxDownloadBytes)
	viper.SetDefault(KeyHTTPTimeout, "60s")
	viper.SetDefault(KeyWatchExtensions, false)
	viper.SetDefault(KeyDefaultRepo, branding.GitHubRepo())
	viper.SetDefault(KeyDefaultBranch, branding.DefaultBranch())
	viper.SetDefault(KeyPromptColor, true)
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	setDefaults()
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Current returns the typed settings from the loaded configuration.
func Current() Settings {
	timeout := viper.GetDuration(KeyHTTPTimeout)
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxBytes := viper.GetInt64(KeyMaxDownloadBytes)
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDownloadBytes
	}
	return Settings{
		LogLevel:            viper.GetString(KeyLogLevel),
		LogPretty:           viper.GetBool(KeyLogPretty),
		DependencyInstaller: viper.GetString(KeyDependencyInstaller),
		MaxDownloadBytes:    maxBytes,
		HTTPTimeout:         timeout,
		WatchExtensions:     viper.GetBool(KeyWatchExtensions),
		DefaultRepo:         viper.GetString(KeyDefaultRepo),
		DefaultBranch:       viper.GetString(KeyDefaultBranch),
		PromptColor:         viper.GetBool(KeyPromptColor),
	}
}

// Keys lists the recognised configuration keys in sorted order.
func Keys() []string {
	keys := []string{
		KeyLogLevel, KeyLogPretty, KeyDependencyInstaller, KeyMaxDownloadBytes,
		KeyHTTPTimeout, KeyWatchExtensions, KeyDefaultRepo, KeyDefaultBranch,
		KeyPromptColor,
	}
	sort.Strings(keys)
	return keys
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
