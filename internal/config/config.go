// Package config loads the gosecret settings file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/e-XpertSolutions/go-secret/internal/logging"
)

// FileName is the name of the settings file inside the user config directory.
const FileName = "config.toml"

// Config is the content of the settings file.
type Config struct {
	// StorePath is the location of the store file. A leading "~/" is expanded.
	// Default: "~/.passwords.txt"
	StorePath string `toml:"store_path"`

	// MaxResults is the number of entries a search returns.
	// Default: 10
	MaxResults int `toml:"max_results"`

	REPL REPLSettings `toml:"repl"`
	Logs LogSettings  `toml:"logs"`
}

// REPLSettings configures the interactive front end.
type REPLSettings struct {
	// Prompt is printed before every command line.
	Prompt string `toml:"prompt"`

	// Preview is the number of search results shown with their value.
	Preview int `toml:"preview"`

	// ShowHelp prints the command list when the REPL starts.
	ShowHelp bool `toml:"show_help"`
}

// LogSettings configures internal/logging.
type LogSettings struct {
	// Dir holds the rotated log file. Empty disables file logging.
	Dir string `toml:"dir"`

	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `toml:"level"`

	// Format is "json" (default) or "text"
	Format string `toml:"format"`

	MaxSizeMB  int `toml:"max_size_mb"`
	MaxBackups int `toml:"max_backups"`
	MaxAgeDays int `toml:"max_age_days"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		StorePath:  "~/.passwords.txt",
		MaxResults: 10,
		REPL: REPLSettings{
			Prompt:   "> ",
			Preview:  2,
			ShowHelp: true,
		},
		Logs: LogSettings{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 10,
		},
	}
}

// DefaultPath returns the settings file location in the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot locate user config directory")
	}
	return filepath.Join(dir, "gosecret", FileName), nil
}

// Load reads the settings file at path. Keys missing from the file keep their
// default value. A missing file yields the defaults; a file that cannot be
// parsed yields the defaults and the parse error, so the caller can report it
// and carry on.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), errors.Wrapf(err, "cannot parse %s", path)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize puts back defaults for values the file set out of range.
func (c *Config) normalize() {
	def := Default()
	if c.MaxResults <= 0 {
		c.MaxResults = def.MaxResults
	}
	if c.REPL.Preview < 0 {
		c.REPL.Preview = 0
	}
	if c.Logs.MaxSizeMB <= 0 {
		c.Logs.MaxSizeMB = def.Logs.MaxSizeMB
	}
	if c.Logs.MaxBackups <= 0 {
		c.Logs.MaxBackups = def.Logs.MaxBackups
	}
	if c.Logs.MaxAgeDays <= 0 {
		c.Logs.MaxAgeDays = def.Logs.MaxAgeDays
	}
}

// Logging converts the log settings for logging.Init.
func (c Config) Logging(debug bool) logging.Config {
	return logging.Config{
		Dir:        ExpandHome(c.Logs.Dir),
		Level:      c.Logs.Level,
		Format:     c.Logs.Format,
		MaxSizeMB:  c.Logs.MaxSizeMB,
		MaxBackups: c.Logs.MaxBackups,
		MaxAgeDays: c.Logs.MaxAgeDays,
		Debug:      debug,
	}
}

// ExpandHome replaces a leading "~" or "~/" with the home directory. The path
// is returned unchanged when the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
