// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package settings loads experiment settings from YAML files.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"nickandperla.net/itemscript/internal/value"
)

// Settings holds the values of a settings file. Pointer fields are nil
// when the file does not set them.
type Settings struct {
	Width         *int    `yaml:"width,omitempty"`
	Height        *int    `yaml:"height,omitempty"`
	AutoResponse  *bool   `yaml:"auto_response,omitempty"`
	RoundDecimals *int    `yaml:"round_decimals,omitempty"`
	Foreground    *string `yaml:"foreground,omitempty"`
	Background    *string `yaml:"background,omitempty"`
	Database      string  `yaml:"database,omitempty"`

	// Variables are extra experiment variables in file order.
	Variables []Variable `yaml:"-"`
}

// Variable is a named experiment variable from the 'variables' mapping.
type Variable struct {
	Name  string
	Value value.Value
}

// Load reads a settings file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes settings from YAML.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	// Decode again into a node tree to keep the order of the variables.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	vars, err := variables(&root)
	if err != nil {
		return nil, err
	}
	s.Variables = vars
	return &s, nil
}

func variables(root *yaml.Node) ([]Variable, error) {
	node := root
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("settings must be a mapping")
	}

	var vars *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "variables" {
			vars = node.Content[i+1]
		}
	}
	if vars == nil {
		return nil, nil
	}
	if vars.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: 'variables' must be a mapping", vars.Line)
	}

	out := make([]Variable, 0, len(vars.Content)/2)
	for i := 0; i+1 < len(vars.Content); i += 2 {
		key, val := vars.Content[i], vars.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: variable '%s' must be a scalar", val.Line, key.Value)
		}
		out = append(out, Variable{Name: key.Value, Value: value.AutoType(val.Value)})
	}
	return out, nil
}
