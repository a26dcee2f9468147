// Package manifest reads YAML contract manifests: declarative lists of
// interfaces and implementations that the CLI builds into engine objects.
package manifest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest errors.
var (
	ErrInvalidPattern        = errors.New("invalid pattern")
	ErrInvalidParamKind      = errors.New("invalid parameter kind")
	ErrUnknownInterface      = errors.New("unknown interface")
	ErrUnknownImplementation = errors.New("unknown implementation")
	ErrDuplicateName         = errors.New("duplicate name")
	ErrEmptyName             = errors.New("name must not be empty")
)

// Manifest is the top-level YAML document.
type Manifest struct {
	Interfaces      []InterfaceSpec      `yaml:"interfaces"`
	Implementations []ImplementationSpec `yaml:"implementations"`
}

// InterfaceSpec declares one interface.
type InterfaceSpec struct {
	Name       string          `yaml:"name"`
	Includes   []string        `yaml:"includes"`
	Operations []OperationSpec `yaml:"operations"`
}

// OperationSpec declares one contract clause. Returns and Args hold
// pattern strings (see ParsePattern).
type OperationSpec struct {
	Name    string   `yaml:"name"`
	Returns string   `yaml:"returns"`
	Args    []string `yaml:"args"`
}

// ImplementationSpec declares one concrete type and the shapes of the
// operation bodies it provides.
type ImplementationSpec struct {
	Name       string          `yaml:"name"`
	Extends    string          `yaml:"extends"`
	Implements []string        `yaml:"implements"`
	Declares   []OperationSpec `yaml:"declares"`
	Methods    []MethodSpec    `yaml:"methods"`
}

// MethodSpec gives the parameter kinds of one operation body.
type MethodSpec struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
}

// Parse decodes a manifest and checks that names are present and unique.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

func (m *Manifest) validate() error {
	seen := make(map[string]bool)
	check := func(kind, name string) error {
		if name == "" {
			return fmt.Errorf("%s: %w", kind, ErrEmptyName)
		}
		if seen[name] {
			return fmt.Errorf("%s %q: %w", kind, name, ErrDuplicateName)
		}
		seen[name] = true
		return nil
	}
	for _, is := range m.Interfaces {
		if err := check("interface", is.Name); err != nil {
			return err
		}
	}
	for _, im := range m.Implementations {
		if err := check("implementation", im.Name); err != nil {
			return err
		}
	}
	return nil
}
