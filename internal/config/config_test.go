package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/numethods/num"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	d := Duration{5 * time.Minute}
	result, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(result) != "5m0s" {
		t.Errorf("MarshalText() = %v, want 5m0s", string(result))
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.001", cfg.Solver.Tolerance)
	assert.False(t, cfg.Solver.Rational)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Output.Precision)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 4096, cfg.Server.MaxRationalBits)
	assert.NoError(t, cfg.Validate())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "numethods.toml", `
[solver]
tolerance = "1/2048"
rational = true

[output]
format = "json"
precision = 6

[server]
port = 9000
read_timeout = "2s"
rate_limit = 5.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Solver.Rational)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 6, cfg.Output.Precision)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout.Duration, "default kept")
	assert.Equal(t, 5.5, cfg.Server.RateLimit)

	tol, err := cfg.Tolerance(num.ModeRational)
	require.NoError(t, err)
	assert.Equal(t, "1/2048", tol.String())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "numethods.yaml", `
solver:
  swap: true
log:
  level: debug
  format: json
server:
  write_timeout: 1m
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Solver.Swap)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout.Duration)
}

func TestLoad_EmptyYAMLUsesDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output.Format)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown toml key", "a.toml", "[solver]\nmaxiter = 3\n", "unknown key solver.maxiter"},
		{"unknown yaml key", "a.yaml", "output:\n  colour: never\n", "colour"},
		{"bad format", "a.toml", "[output]\nformat = \"xml\"\n", "output.format"},
		{"bad tolerance", "a.toml", "[solver]\ntolerance = \"-1\"\n", "solver.tolerance must be positive"},
		{"bad duration", "a.toml", "[server]\nread_timeout = \"soon\"\n", "failed to parse"},
		{"bad port", "a.toml", "[server]\nport = 70000\n", "server.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "config file not found")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Output.Color = "sometimes"
	cfg.Log.Level = "loud"
	cfg.Output.Precision = 0
	cfg.Server.MaxRationalBits = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.color")
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "output.precision must be positive, got 0")
	assert.Contains(t, err.Error(), "server.max_rational_bits")
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	t.Setenv(EnvVar, "")

	cfg, path, err := Discover("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "numethods.toml"), []byte("[output]\nprecision = 8\n"), 0o644))
	cfg, path, err = Discover("")
	require.NoError(t, err)
	assert.Equal(t, "./numethods.toml", path)
	assert.Equal(t, 8, cfg.Output.Precision)

	envPath := writeFile(t, "env.toml", "[output]\nprecision = 2\n")
	t.Setenv(EnvVar, envPath)
	cfg, _, err = Discover("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Output.Precision)

	explicit := writeFile(t, "explicit.yaml", "output:\n  precision: 3\n")
	cfg, path, err = Discover(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
	assert.Equal(t, 3, cfg.Output.Precision)
}
