// Package config loads exactmass settings from defaults, exactmass.yaml,
// EXACTMASS_* environment variables and command line flags.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

// Defaults
const (
	DefaultPrecision   = 4
	DefaultElimination = "H2O"
	DefaultThreads     = 1
	DefaultOutput      = "table"
	DefaultAddr        = ":8080"

	envPrefix = "EXACTMASS_"
)

// ConfigFiles are looked up in the working directory when no file is given
var ConfigFiles = []string{"exactmass.yaml", "exactmass.yml"}

// OutputFormats accepted by the output key
var OutputFormats = []string{"table", "json", "csv", "markdown"}

// IonConfig defines an ion column the way a user types it
type IonConfig struct {
	Name   string `koanf:"name"`
	Modify string `koanf:"modify"` // e.g. "+H2O-NH3"
	Adduct string `koanf:"adduct"`
	Charge string `koanf:"charge"` // e.g. "+", "2-", "-1"
}

// Config holds all exactmass settings
type Config struct {
	Precision   int         `koanf:"precision"`
	Elimination string      `koanf:"elimination"`
	Threads     int         `koanf:"threads"`
	Verbose     bool        `koanf:"verbose"`
	Output      string      `koanf:"output"`
	Addr        string      `koanf:"addr"`
	Ions        []IonConfig `koanf:"ions"`

	// FileUsed is the config file that was loaded, if any
	FileUsed string `koanf:"-"`
}

// Load reads configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Only flags that were set on the command line override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"precision":   DefaultPrecision,
		"elimination": DefaultElimination,
		"threads":     DefaultThreads,
		"verbose":     false,
		"output":      DefaultOutput,
		"addr":        DefaultAddr,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	fileUsed, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if fileUsed != "" {
		if err := k.Load(file.Provider(fileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", fileUsed, err)
		}
	}

	// 3. Environment: EXACTMASS_PRECISION -> precision
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = fileUsed

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the explicit file, which must exist, or the first
// default file present in the working directory.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	for _, name := range ConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Precision < 0 || c.Precision > core.MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", core.MaxPrecision, c.Precision)
	}
	if c.Elimination != "" {
		if err := core.ValidateFormula(c.Elimination); err != nil {
			return fmt.Errorf("elimination: %w", err)
		}
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	if !slices.Contains(OutputFormats, c.Output) {
		return fmt.Errorf("output must be one of %s, got %q", strings.Join(OutputFormats, "|"), c.Output)
	}
	if _, err := c.IonColumns(); err != nil {
		return err
	}
	return nil
}

// IonColumns returns the configured ion columns, or the defaults when none are set.
// The first column must be the neutral mass.
func (c *Config) IonColumns() ([]core.IonColumn, error) {
	if len(c.Ions) == 0 {
		return core.DefaultIonColumns(), nil
	}

	columns := make([]core.IonColumn, 0, len(c.Ions))
	for i, ion := range c.Ions {
		col, err := core.NewIonColumn(ion.Name, ion.Modify, ion.Adduct, ion.Charge)
		if err != nil {
			return nil, fmt.Errorf("ions[%d]: %w", i, err)
		}
		columns = append(columns, col)
	}

	if err := core.NewTable(columns).Validate(); err != nil {
		return nil, fmt.Errorf("ions: %w", err)
	}
	return columns, nil
}

// MassPrecision returns the precision in the form the mass functions take
func (c *Config) MassPrecision() int32 {
	return int32(c.Precision)
}

// NewLogger returns a text logger on w, at debug level when verbose
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
