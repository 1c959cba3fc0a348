package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/njchilds90/numethods"
	"github.com/njchilds90/numethods/internal/config"
	"github.com/njchilds90/numethods/internal/render"
)

// runIn executes the command line with dir as working and home directory.
func runIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	t.Setenv(config.EnvVar, "")

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runIn(t, t.TempDir(), args...)
}

func TestBisectionCommand(t *testing.T) {
	out, err := run(t, "bisection", "x^2 - 8x + 11", "1", "2", "--tol", "0.001", "--rational", "--exact", "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "ITERATION:")
	assert.Contains(t, out, "The root is: 1807/1024")
	assert.Contains(t, out, "Iterations: 10")
}

func TestSwapFlag(t *testing.T) {
	out, err := run(t, "false-position", "x^2 - 8x + 11", "2", "1", "--swap")
	require.NoError(t, err)
	assert.Contains(t, out, "The root is: 1.7639")

	out, err = run(t, "false-position", "x^2 - 8x + 11", "2", "1")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "--swap")
}

func TestOpenMethodCommands(t *testing.T) {
	out, err := run(t, "newton-raphson", "x^2 - 8x + 11", "1", "-o", "json")
	require.NoError(t, err)
	var report struct {
		Method string `json:"method"`
		Root   string `json:"root"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "newton_raphson", report.Method)
	assert.Equal(t, "1.7639320225000217", report.Root)

	out, err = run(t, "fixed-point", "(x^2 + 11)/8", "3", "--precision", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "The root is: 1.763991")
}

func TestSolverFailures(t *testing.T) {
	out, err := run(t, "bisection", "x^2 - 8x + 11", "2", "3")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "should have different signs")

	out, err = run(t, "fixed-point", "8x - 11", "3")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "indefinite function")

	_, err = run(t, "newton-raphson", "x", "one")
	assert.ErrorContains(t, err, "Xn")

	_, err = run(t, "bisection", "x", "1")
	assert.Error(t, err, "missing b")

	_, err = run(t, "bisection", "x", "0", "1", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestConfigFileDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "numethods.toml"), []byte(`
[solver]
tolerance = "1/64"
rational = true

[output]
format = "yaml"
`), 0o644))

	out, err := runIn(t, dir, "bisection", "x^2 - 8x + 11", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "method: bisection")
	assert.Contains(t, out, "tolerance: 1/64")
	assert.Contains(t, out, "iterations: 6")

	out, err = runIn(t, dir, "bisection", "x^2 - 8x + 11", "1", "2", "-o", "table", "--tol", "0.001")
	require.NoError(t, err)
	assert.Contains(t, out, "Iterations: 10", "flags override the file")

	_, err = runIn(t, dir, "--config", filepath.Join(dir, "missing.toml"), "version")
	assert.ErrorContains(t, err, "config file not found")
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "parse", "x^2-8x+11")
	require.NoError(t, err)
	assert.Contains(t, out, "x^2 - 8*x + 11")
	assert.Contains(t, out, "2*x - 8")

	out, err = run(t, "parse", "x +")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "Syntax error at column")
}

func TestEstimateCommand(t *testing.T) {
	out, err := run(t, "estimate", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "Expected iterations: 10\n", out)

	out, err = run(t, "estimate", "0", "1", "1/8")
	require.NoError(t, err)
	assert.Equal(t, "Expected iterations: 3\n", out)
}

func TestVersionAndArgs(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "numethods v"+Version)

	_, err = run(t, "interactive", "secant")
	assert.Error(t, err)

	_, err = run(t, "--log-level", "loud", "version")
	assert.ErrorContains(t, err, "log.level")
}

// script replays canned replies and then reports EOF.
type script struct {
	lines   []string
	prompts []string
	history []string
	closed  bool
}

func (s *script) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *script) AppendHistory(item string) { s.history = append(s.history, item) }
func (s *script) Close() error              { s.closed = true; return nil }

func interact(t *testing.T, name string, opts numethods.Options, lines ...string) (string, *script) {
	t.Helper()
	m, ok := findMethod(name)
	require.True(t, ok)
	in := &script{lines: lines}
	var out bytes.Buffer
	s := newSession(m, in, &out, render.Options{Precision: 4, Color: "never"}, opts, "0.001", zap.NewNop())
	require.NoError(t, s.run())
	return out.String(), in
}

func TestInteractiveBisection(t *testing.T) {
	out, in := interact(t, "bisection", numethods.Options{Trace: true}, "x^2-8x+11", "1", "2", "", "exit")

	assert.Equal(t, []string{"Formula >> ", "a Value >> ", "b Value >> ", "Error Value [0.001] >> ", "Formula >> "}, in.prompts)
	assert.Contains(t, out, "ITERATION:")
	assert.Contains(t, out, "The root is: 1.7646")
	assert.Contains(t, out, "Exiting...")
	assert.True(t, in.closed)
	assert.Equal(t, []string{"x^2-8x+11", "1", "2"}, in.history)
}

func TestInteractiveRecoversFromBadInput(t *testing.T) {
	out, _ := interact(t, "newton-raphson", numethods.Options{},
		"x^2-8x+11", "one", "1",
		"x +", "1",
	)
	assert.Contains(t, out, `Not a number: "one"`)
	assert.Contains(t, out, "The root is: 1.7639")
	assert.Contains(t, out, "Syntax error at column")
	assert.Contains(t, out, "Exiting...", "EOF ends the session")
}

func TestInteractiveFixedPointDiverges(t *testing.T) {
	out, _ := interact(t, "fixed-point", numethods.Options{Rational: true}, "8x-11", "3", "exit")
	assert.Contains(t, out, "indefinite function")
	assert.Contains(t, out, separator)
}
