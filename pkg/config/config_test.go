package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2000, cfg.Timeout)
	assert.Equal(t, 2000, cfg.Watchdog)
	assert.True(t, cfg.ChildProcess)
	assert.Equal(t, 2*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, 2*time.Second, cfg.WatchdogDuration())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ergotest.config.yml")
	content := `
timeout: 5000
childProcess: false
renderer: plain
modules:
  - /modules/math_test
values:
  greeting: hello
  port: 8080
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Timeout)
	assert.False(t, cfg.ChildProcess)
	assert.Equal(t, "plain", cfg.Renderer)
	assert.Equal(t, []string{"/modules/math_test"}, cfg.Modules)
	assert.Equal(t, "hello", cfg.Values["greeting"])
	assert.Equal(t, 8080, cfg.Values["port"])
	// Unspecified fields keep their defaults.
	assert.Equal(t, 2000, cfg.Watchdog)
}

func TestLoadConfigFromFileExpandsEnvironment(t *testing.T) {
	t.Setenv("ERGOTEST_TEST_RENDERER", "fancy")

	dir := t.TempDir()
	path := filepath.Join(dir, "ergotest.config.yml")
	content := "renderer: ${ERGOTEST_TEST_RENDERER}\nvalues:\n  key: ${ERGOTEST_TEST_RENDERER}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fancy", cfg.Renderer)
	assert.Equal(t, "fancy", cfg.Values["key"])
}

func TestLoadConfigFromFileReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ERGOTEST_DOTENV_VALUE=from-dotenv\n"), 0644))
	path := filepath.Join(dir, "ergotest.config.yml")
	require.NoError(t, os.WriteFile(path, []byte("renderer: ${ERGOTEST_DOTENV_VALUE}\n"), 0644))
	defer os.Unsetenv("ERGOTEST_DOTENV_VALUE")

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Renderer)
}

func TestLoadConfigFromFileRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ergotest.config.yml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [not a number"), 0644))

	_, err := LoadConfigFromFile(path)
	assert.Error(t, err)
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(original) }()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ergotest.config.yml")

	original := &Config{
		Timeout:      1234,
		ChildProcess: true,
		Watchdog:     2500,
		Renderer:     "plain",
		Modules:      []string{"/modules/a_test"},
	}
	require.NoError(t, SaveConfig(original, path))

	restored, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, original.Timeout, restored.Timeout)
	assert.Equal(t, original.Watchdog, restored.Watchdog)
	assert.Equal(t, original.Renderer, restored.Renderer)
	assert.Equal(t, original.Modules, restored.Modules)
}
