// Package config loads runtime settings from defaults, an optional TOML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix for environment overrides, e.g. FILLMEM_MAX_LINE
const EnvPrefix = "FILLMEM"

// DefaultFile is read when present and no path is given
const DefaultFile = "fillmem.toml"

// Bell modes
const (
	BellTerminal = "terminal"
	BellTone     = "tone"
	BellNone     = "none"
)

// MaxLineLimit bounds the edit buffer cap
const MaxLineLimit = 240

// Duration is a time.Duration read from text such as "250ms"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML and env
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Decode lets envconfig use the text form
func (d *Duration) Decode(value string) error {
	return d.UnmarshalText([]byte(value))
}

type Sampler struct {
	Enabled        bool     `toml:"enabled" envconfig:"ENABLED"`
	Interval       Duration `toml:"interval" envconfig:"INTERVAL"`
	SluggishFactor int      `toml:"sluggish_factor" envconfig:"SLUGGISH_FACTOR"`
}

type Log struct {
	Debug bool   `toml:"debug" envconfig:"DEBUG"`
	Level string `toml:"level" envconfig:"LEVEL"`
	Dir   string `toml:"dir" envconfig:"DIR"`
}

type Metrics struct {
	// Listen is the promhttp address; empty disables the endpoint
	Listen string `toml:"listen" envconfig:"LISTEN"`
}

type Kstat struct {
	ProcRoot string `toml:"proc_root" envconfig:"PROC_ROOT"`
	SysRoot  string `toml:"sys_root" envconfig:"SYS_ROOT"`
}

// Config is the full runtime configuration
type Config struct {
	Prompt       string   `toml:"prompt" envconfig:"PROMPT"`
	MaxLine      int      `toml:"max_line" envconfig:"MAX_LINE"`
	PollInterval Duration `toml:"poll_interval" envconfig:"POLL_INTERVAL"`
	Bell         string   `toml:"bell" envconfig:"BELL"`

	Sampler Sampler `toml:"sampler" envconfig:"SAMPLER"`
	Log     Log     `toml:"log" envconfig:"LOG"`
	Metrics Metrics `toml:"metrics" envconfig:"METRICS"`
	Kstat   Kstat   `toml:"kstat" envconfig:"KSTAT"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Prompt:       "fillmem> ",
		MaxLine:      60,
		PollInterval: Duration{250 * time.Millisecond},
		Bell:         BellTerminal,
		Sampler: Sampler{
			Enabled:        true,
			Interval:       Duration{500 * time.Millisecond},
			SluggishFactor: 3,
		},
		Log: Log{
			Level: "info",
			Dir:   "logs",
		},
		Kstat: Kstat{
			ProcRoot: "/proc",
			SysRoot:  "/sys",
		},
	}
}

// Load applies the TOML file at path over the defaults, then the environment.
// An empty path reads DefaultFile if it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("config env: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("config %s:%d:%d: %s", path, row, col, derr.Error())
		}
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the program cannot run with
func (c Config) Validate() error {
	var errs []error

	if c.MaxLine < 1 || c.MaxLine > MaxLineLimit {
		errs = append(errs, fmt.Errorf("max_line %d outside 1..%d", c.MaxLine, MaxLineLimit))
	}
	if c.PollInterval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive"))
	}
	if c.Sampler.Interval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("sampler.interval must be positive"))
	}
	if c.Sampler.SluggishFactor < 1 {
		errs = append(errs, fmt.Errorf("sampler.sluggish_factor must be at least 1"))
	}
	switch c.Bell {
	case BellTerminal, BellTone, BellNone:
	default:
		errs = append(errs, fmt.Errorf("unknown bell mode %q", c.Bell))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// Encode renders c as TOML
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
