package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadTableDef reads a table definition from a YAML or JSON file.
func LoadTableDef(path string) (*TableDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table definition: %w", err)
	}
	return ParseTableDef(data, filepath.Ext(path))
}

// ParseTableDef decodes a table definition. ext selects the format and
// includes the leading dot, as returned by filepath.Ext.
func ParseTableDef(data []byte, ext string) (*TableDef, error) {
	def := &TableDef{}

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, def); err != nil {
			return nil, fmt.Errorf("failed to parse YAML table definition: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, def); err != nil {
			return nil, fmt.Errorf("failed to parse JSON table definition: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported table definition format: %s", ext)
	}

	return def, nil
}
