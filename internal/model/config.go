package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// APIConfig holds settings for talking to the taskboard backend.
type APIConfig struct {
	// BaseURL is the root URL of the backend (e.g., http://localhost:8080).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// UserID is the acting user sent with every request.
	UserID string `mapstructure:"user_id" yaml:"user_id"`
}

// ServerConfig holds settings for the reference backend.
type ServerConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	DBPath string `mapstructure:"db_path" yaml:"db_path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme            string `mapstructure:"theme" yaml:"theme"`
	ActivityPageSize int    `mapstructure:"activity_page_size" yaml:"activity_page_size"`
	Markdown         bool   `mapstructure:"markdown" yaml:"markdown"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`

	// File is where the TUI writes its log. The server logs to stderr
	// when File is empty.
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskboard/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskboard")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			UserID:  "me",
		},
		Server: ServerConfig{
			Addr:   ":8080",
			DBPath: filepath.Join(dir, "taskboard.db"),
		},
		Display: DisplayConfig{
			Theme:            "default",
			ActivityPageSize: 20,
			Markdown:         true,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "taskboard.log"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory is loaded first, and TASKBOARD_*
// environment variables override file values. If the file does not exist,
// defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("taskboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so
	// AutomaticEnv can see every key.
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.user_id", def.API.UserID)
	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.db_path", def.Server.DBPath)
	v.SetDefault("display.theme", def.Display.Theme)
	v.SetDefault("display.activity_page_size", def.Display.ActivityPageSize)
	v.SetDefault("display.markdown", def.Display.Markdown)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.ActivityPageSize <= 0 || cfg.Display.ActivityPageSize > 100 {
		cfg.Display.ActivityPageSize = def.Display.ActivityPageSize
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("server", cfg.Server)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
