package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ErrNoMailStore is returned when no IMAP server or account is configured.
var ErrNoMailStore = errors.New("no mail store configured: set imap.server and imap.username")

// BreakerConfig tunes the circuit breaker around mail store calls.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32 `mapstructure:"max_failures" yaml:"max_failures"`

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// IMAPConfig holds the mail store connection settings.
type IMAPConfig struct {
	Server   string `mapstructure:"server" yaml:"server"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`

	// Password may be left empty; the keyring is consulted instead.
	Password string `mapstructure:"password" yaml:"password"`

	// TLS selects implicit TLS. When false, STARTTLS is used.
	TLS bool `mapstructure:"tls" yaml:"tls"`

	Breaker BreakerConfig `mapstructure:"breaker" yaml:"breaker"`
}

// PathsConfig locates the files the pipeline reads and writes.
type PathsConfig struct {
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir"`
	ContactsFile  string `mapstructure:"contacts_file" yaml:"contacts_file"`
	ScoringFile   string `mapstructure:"scoring_file" yaml:"scoring_file"`
	BlacklistFile string `mapstructure:"blacklist_file" yaml:"blacklist_file"`
}

// StorageConfig selects the collection backend.
type StorageConfig struct {
	// Backend is "json" (one file per folder) or "sqlite".
	Backend    string `mapstructure:"backend" yaml:"backend"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	IMAP    IMAPConfig    `mapstructure:"imap" yaml:"imap"`
	Paths   PathsConfig   `mapstructure:"paths" yaml:"paths"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// Addr returns host:port of the configured mail server.
func (c IMAPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}

// Validate reports ErrNoMailStore when the mail store cannot be reached
// with the current settings.
func (c IMAPConfig) Validate() error {
	if c.Server == "" || c.Username == "" {
		return ErrNoMailStore
	}
	return nil
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailscore/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailscore", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		IMAP: IMAPConfig{
			Port: 993,
			TLS:  true,
			Breaker: BreakerConfig{
				MaxFailures: 3,
				Timeout:     60 * time.Second,
			},
		},
		Paths: PathsConfig{
			OutputDir:     "output",
			ContactsFile:  filepath.Join("output", "contacts.json"),
			ScoringFile:   "scoring_config.json",
			BlacklistFile: "blacklist.txt",
		},
		Storage: StorageConfig{
			Backend:    "json",
			SQLitePath: filepath.Join("output", "mailscore.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration. The
// IMAP_SERVER, IMAP_PORT, EMAIL_ADDRESS and EMAIL_PASSWORD environment
// variables override the file in both cases.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := defaultAppConfig()
	v.SetDefault("imap.port", def.IMAP.Port)
	v.SetDefault("imap.tls", def.IMAP.TLS)
	v.SetDefault("imap.breaker.max_failures", def.IMAP.Breaker.MaxFailures)
	v.SetDefault("imap.breaker.timeout", def.IMAP.Breaker.Timeout)
	v.SetDefault("paths.output_dir", def.Paths.OutputDir)
	v.SetDefault("paths.contacts_file", def.Paths.ContactsFile)
	v.SetDefault("paths.scoring_file", def.Paths.ScoringFile)
	v.SetDefault("paths.blacklist_file", def.Paths.BlacklistFile)
	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.sqlite_path", def.Storage.SQLitePath)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.pretty", def.Log.Pretty)

	_ = v.BindEnv("imap.server", "IMAP_SERVER")
	_ = v.BindEnv("imap.port", "IMAP_PORT")
	_ = v.BindEnv("imap.username", "EMAIL_ADDRESS")
	_ = v.BindEnv("imap.password", "EMAIL_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed. The password is never written.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	imapCfg := cfg.IMAP
	imapCfg.Password = ""

	v.Set("imap", imapCfg)
	v.Set("paths", cfg.Paths)
	v.Set("storage", cfg.Storage)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
