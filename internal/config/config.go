// Package config loads plinject settings from a YAML file.
//
// A configuration file looks like
//
//	marker: dict
//	declaration: DOCTYPE
//	indent: 2
//	formatter: [plutil, -convert, xml1]
//
// All the keys are optional.
package config

import (
	"fmt"
	"os"

	"github.com/arnodel/plinject/inject"
	"github.com/goccy/go-yaml"
)

type Config struct {
	Marker      string   `yaml:"marker"`
	Declaration string   `yaml:"declaration"`
	Indent      int      `yaml:"indent"`
	Formatter   []string `yaml:"formatter"`
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration.  Unknown keys are rejected so that typos do
// not go unnoticed.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, err
	}
	if cfg.Indent < -1 {
		return nil, fmt.Errorf("indent must be -1 or more, got %d", cfg.Indent)
	}
	return cfg, nil
}

// InjectOptions returns the injector settings of the configuration.
func (c *Config) InjectOptions() inject.Options {
	return inject.Options{
		Marker:            c.Marker,
		DeclarationMarker: c.Declaration,
		Indent:            c.Indent,
	}
}
