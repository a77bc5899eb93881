package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mountstack/mountstack/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized configuration keys.
const (
	KeyPackageManager     = "package_manager"
	KeyLogLevel           = "log_level"
	KeyDefaultDestination = "default_destination"
)

// Dir returns the path to the config directory (~/.mountstack/).
// MOUNTSTACK_HOME overrides the location.
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("HOME")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.mountstack/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// LogFilePath returns the path of the diagnostic log file.
func LogFilePath() string {
	return filepath.Join(Dir(), "logs", branding.CLIName()+".log")
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyPackageManager, "pnpm")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyDefaultDestination, "./my-app")

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// PackageManager returns the executable used to run the generators.
func PackageManager() string { return Get(KeyPackageManager) }

// LogLevel returns the configured diagnostic log level.
func LogLevel() string { return Get(KeyLogLevel) }

// DefaultDestination returns the destination offered when the prompt is left empty.
func DefaultDestination() string { return Get(KeyDefaultDestination) }

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
