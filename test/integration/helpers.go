//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	APIKeyID     string
	APISecretKey string
	BinaryPath   string
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		APIKeyID:     os.Getenv("APCA_API_KEY_ID"),
		APISecretKey: os.Getenv("APCA_API_SECRET_KEY"),
		BinaryPath:   getBinaryPath(),
		Verbose:      os.Getenv("ALPACA_VERBOSE") == "true",
	}
}

func getBinaryPath() string {
	if path := os.Getenv("ALPACA_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../alpaca", "./alpaca", "../alpaca"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "alpaca"
}

// SkipIfMissingConfig skips the test unless paper credentials and the
// binary are available.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIKeyID == "" || config.APISecretKey == "" {
		t.Skip("APCA_API_KEY_ID and APCA_API_SECRET_KEY not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("alpaca binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// CommandRunner runs the alpaca binary against the paper environment.
type CommandRunner struct {
	config *TestConfig
	home   string
	t      *testing.T
}

// NewCommandRunner creates a runner with an isolated HOME so no local
// config file leaks into the test.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config: config,
		home:   t.TempDir(),
		t:      t,
	}
}

// Run executes an alpaca command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+runner.home,
		"APCA_TRADING_BASE_URL=https://paper-api.alpaca.markets",
	)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON runs a command with JSON output and decodes the result into out.
func (runner *CommandRunner) RunJSON(out interface{}, args ...string) {
	runner.t.Helper()

	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	require.NoError(runner.t, err, "alpaca %s: %s", strings.Join(args, " "), stderr)
	require.NoError(runner.t, json.Unmarshal([]byte(stdout), out), "output is not JSON: %s", stdout)
}

// GenerateClientOrderID creates a unique client order ID.
func GenerateClientOrderID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// WaitForCondition polls condition until it holds or timeout passes.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}
