// Package config loads runner configuration from an optional YAML file
// merged with environment overrides.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// InferenceCfg controls how the model process is invoked.
type InferenceCfg struct {
	Command []string      `koanf:"command"` // argv of the inference process
	Timeout time.Duration `koanf:"timeout"`
}

type Config struct {
	InputDir   string `koanf:"input_dir"`
	OutputDir  string `koanf:"output_dir"`
	Manifest   string `koanf:"manifest"`    // block manifest path
	ParamsFile string `koanf:"params_file"` // optional, overrides the task env var

	LogLevel    string `koanf:"log_level"`
	MetricsPort int    `koanf:"metrics_port"` // 0 disables the endpoint

	Inference InferenceCfg `koanf:"inference"`
}

// Load merges YAML (if present) with env-vars
// (prefix `BLOCKFORGE_`, delimiter `__`).
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	// BLOCKFORGE_INFERENCE__TIMEOUT -> inference.timeout
	_ = k.Load(env.Provider("BLOCKFORGE_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "BLOCKFORGE_")), "__", ".")
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.InputDir == "" {
		c.InputDir = "/tmp/input"
	}
	if c.OutputDir == "" {
		c.OutputDir = "/tmp/output"
	}
	if c.Manifest == "" {
		c.Manifest = "UP42Manifest.json"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.Inference.Command) == 0 {
		c.Inference.Command = []string{"python3", "-m", "supres.infer"}
	}
	if c.Inference.Timeout == 0 {
		c.Inference.Timeout = 2 * time.Hour
	}
}
