package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested
// sections map naturally to the flag names.
type FileConfig struct {
	Addr string `yaml:"addr" json:"addr"`

	Renderer struct {
		Mode       string        `yaml:"mode" json:"mode"`
		RemoteURL  string        `yaml:"remoteURL" json:"remoteURL"`
		ChromePath string        `yaml:"chromePath" json:"chromePath"`
		Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"renderer" json:"renderer"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig fills unset cfg fields from the file. Explicit flag and
// env values take precedence over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.Addr == "" {
		cfg.Addr = fc.Addr
	}
	if cfg.Renderer == "" {
		cfg.Renderer = fc.Renderer.Mode
	}
	if cfg.RemoteURL == "" {
		cfg.RemoteURL = fc.Renderer.RemoteURL
	}
	if cfg.ChromePath == "" {
		cfg.ChromePath = fc.Renderer.ChromePath
	}
	if cfg.RenderTimeout == 0 {
		cfg.RenderTimeout = fc.Renderer.Timeout
	}
	if !cfg.Verbose {
		cfg.Verbose = fc.Verbose
	}
}
