package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/numethods/num"
)

// EnvVar names the environment variable holding a config file path.
const EnvVar = "NUMETHODS_CONFIG"

// Config holds the complete application configuration
type Config struct {
	Solver SolverConfig `toml:"solver" yaml:"solver"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Server ServerConfig `toml:"server" yaml:"server"`
}

// SolverConfig holds the defaults passed to every solver
type SolverConfig struct {
	// Tolerance is decimal text so that 0.001 stays exactly 1/1000 in
	// rational mode.
	Tolerance string `toml:"tolerance" yaml:"tolerance"`
	Rational  bool   `toml:"rational" yaml:"rational"`
	Swap      bool   `toml:"swap" yaml:"swap"`
	Trace     bool   `toml:"trace" yaml:"trace"`
}

// OutputConfig holds console presentation settings
type OutputConfig struct {
	Format    string `toml:"format" yaml:"format"`
	Precision int    `toml:"precision" yaml:"precision"`
	Color     string `toml:"color" yaml:"color"`
	Timing    bool   `toml:"timing" yaml:"timing"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// ServerConfig holds the HTTP tool endpoint settings
type ServerConfig struct {
	Host         string   `toml:"host" yaml:"host"`
	Port         int      `toml:"port" yaml:"port"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes" yaml:"max_body_bytes"`
	// RateLimit is the sustained number of tool calls per second; 0 disables
	// limiting.
	RateLimit float64 `toml:"rate_limit" yaml:"rate_limit"`
	Burst     int     `toml:"burst" yaml:"burst"`
	// MaxRationalBits caps exact estimates in tool calls.
	MaxRationalBits int `toml:"max_rational_bits" yaml:"max_rational_bits"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file, or a YAML file when the
// extension is .yaml or .yml. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		md, err := toml.Decode(string(content), &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config %s: unknown key %s", path, undecoded[0])
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Discover loads the first configuration found in order: the explicit path,
// $NUMETHODS_CONFIG, ./numethods.toml, ./numethods.yaml and
// $HOME/.config/numethods/config.toml. With none present it returns the
// defaults and an empty path.
func Discover(explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	if path := os.Getenv(EnvVar); path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}
	defaultPaths := []string{
		"./numethods.toml",
		"./numethods.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		defaultPaths = append(defaultPaths, filepath.Join(home, ".config", "numethods", "config.toml"))
	}
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			cfg, err := Load(p)
			return cfg, p, err
		}
	}
	return Default(), "", nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Solver
	if c.Solver.Tolerance == "" {
		c.Solver.Tolerance = "0.001"
	}

	// Output
	if c.Output.Format == "" {
		c.Output.Format = "table"
	}
	if c.Output.Precision == 0 {
		c.Output.Precision = 4
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 10 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}
	if c.Server.Burst == 0 {
		c.Server.Burst = 40
	}
	if c.Server.MaxRationalBits == 0 {
		c.Server.MaxRationalBits = 4096
	}
}

var (
	outputFormats = []string{"table", "json", "yaml"}
	colorModes    = []string{"auto", "always", "never"}
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"console", "json"}
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if tol, err := c.Tolerance(num.ModeRational); err != nil {
		errs = append(errs, fmt.Errorf("solver.tolerance: %w", err))
	} else if tol.Sign() <= 0 {
		errs = append(errs, fmt.Errorf("solver.tolerance must be positive, got %s", c.Solver.Tolerance))
	}
	errs = append(errs,
		oneOf("output.format", c.Output.Format, outputFormats),
		oneOf("output.color", c.Output.Color, colorModes),
		oneOf("log.level", c.Log.Level, logLevels),
		oneOf("log.format", c.Log.Format, logFormats),
	)
	if c.Output.Precision <= 0 {
		errs = append(errs, fmt.Errorf("output.precision must be positive, got %d", c.Output.Precision))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must not be negative"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative"))
	}
	if c.Server.MaxRationalBits < 0 {
		errs = append(errs, fmt.Errorf("server.max_rational_bits must not be negative"))
	}
	return errors.Join(errs...)
}

// Tolerance parses the solver tolerance in mode m.
func (c *Config) Tolerance(m num.Mode) (num.Value, error) {
	return num.Parse(c.Solver.Tolerance, m)
}

func oneOf(key, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}
