// Package config loads and saves problem descriptions as YAML and ships a
// few built-in presets for the CLI.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tscircuit/fastforce/internal/problem"
)

// Load reads a problem description from a YAML file. Schedule fields the file
// omits keep their documented defaults.
func Load(path string) (*problem.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := problem.New()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// Save writes a problem description to a YAML file.
func Save(path string, p *problem.Problem) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
