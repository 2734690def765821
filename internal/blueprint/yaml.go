package blueprint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads a single blueprint from a YAML file. The document is
// one ModuleShape; the blueprint takes its name from the file stem.
func LoadYAML(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	shape := &ModuleShape{}
	if err := yaml.Unmarshal(data, shape); err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: fmt.Sprintf("decoding %s: %v", path, err)}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Blueprint{Name: name, Root: normalizeShape(shape)}, nil
}

// normalizeShape replaces nil child maps left by the decoder so
// downstream walks never nil-check.
func normalizeShape(m *ModuleShape) *ModuleShape {
	if m == nil {
		return &ModuleShape{}
	}
	for key, child := range m.Modules {
		m.Modules[key] = normalizeShape(child)
	}
	return m
}
