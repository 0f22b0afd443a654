package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultUsername   = "admin"
	defaultBaseURL    = "http://192.168.10.254"
	defaultDebugDir   = "debug"
	defaultOutputFile = "device_report.json"
	defaultLogFile    = "modemtrack.log"
)

// Config captures everything the tracker needs for one run.
type Config struct {
	Username   string
	Password   string
	BaseURL    string
	Headless   bool
	DebugDir   string
	OutputFile string
	LogFile    string
}

// fileConfig is the YAML shape; pointer fields keep "absent" distinguishable
// from zero values so defaults apply per key.
type fileConfig struct {
	Username   *string `yaml:"username"`
	Password   *string `yaml:"password"`
	BaseURL    *string `yaml:"base_url"`
	Headless   *bool   `yaml:"headless"`
	DebugDir   *string `yaml:"debug_dir"`
	OutputFile *string `yaml:"output_file"`
	LogFile    *string `yaml:"log_file"`
}

// Default returns the built-in configuration targeting the gateway on its
// factory LAN address.
func Default() Config {
	return Config{
		Username:   defaultUsername,
		BaseURL:    defaultBaseURL,
		DebugDir:   defaultDebugDir,
		OutputFile: defaultOutputFile,
		LogFile:    defaultLogFile,
	}
}

// Load reads an optional YAML config file. A missing or malformed file is
// not fatal: the defaults come back along with the error so the caller can
// warn and continue.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if file.Username != nil {
		cfg.Username = *file.Username
	}
	if file.Password != nil {
		cfg.Password = *file.Password
	}
	if file.BaseURL != nil {
		cfg.BaseURL = strings.TrimRight(*file.BaseURL, "/")
	}
	if file.Headless != nil {
		cfg.Headless = *file.Headless
	}
	if file.DebugDir != nil {
		cfg.DebugDir = *file.DebugDir
	}
	if file.OutputFile != nil {
		cfg.OutputFile = *file.OutputFile
	}
	if file.LogFile != nil {
		cfg.LogFile = *file.LogFile
	}
	return cfg, nil
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return filepath.Clean(path)
}
