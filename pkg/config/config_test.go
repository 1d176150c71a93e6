package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/input", cfg.InputDir)
	assert.Equal(t, "/tmp/output", cfg.OutputDir)
	assert.Equal(t, "UP42Manifest.json", cfg.Manifest)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.MetricsPort)
	assert.Equal(t, []string{"python3", "-m", "supres.infer"}, cfg.Inference.Command)
	assert.Equal(t, 2*time.Hour, cfg.Inference.Timeout)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/input", cfg.InputDir)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.yaml")
	doc := `
input_dir: /data/in
output_dir: /data/out
log_level: debug
metrics_port: 9402
inference:
  command: ["python3", "predict.py"]
  timeout: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9402, cfg.MetricsPort)
	assert.Equal(t, []string{"python3", "predict.py"}, cfg.Inference.Command)
	assert.Equal(t, 30*time.Minute, cfg.Inference.Timeout)
	// untouched fields still default
	assert.Equal(t, "UP42Manifest.json", cfg.Manifest)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BLOCKFORGE_INPUT_DIR", "/env/in")
	t.Setenv("BLOCKFORGE_LOG_LEVEL", "warn")
	t.Setenv("BLOCKFORGE_METRICS_PORT", "9500")
	t.Setenv("BLOCKFORGE_INFERENCE__TIMEOUT", "45m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/env/in", cfg.InputDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 9500, cfg.MetricsPort)
	assert.Equal(t, 45*time.Minute, cfg.Inference.Timeout)
	// untouched fields still default
	assert.Equal(t, "/tmp/output", cfg.OutputDir)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))
	t.Setenv("BLOCKFORGE_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
