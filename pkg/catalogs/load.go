package catalogs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/dialoggauge/catalogsync/pkg/errors"
)

// LoadFile reads a collection from a JSON or YAML file, keyed by
// extension. The file must hold an array of records.
func LoadFile(t Type, path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapParse("yaml", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, errors.WrapParse("json", path, err)
		}
	default:
		return nil, &errors.ValidationError{
			Field:   "path",
			Value:   path,
			Message: "unsupported extension " + ext,
		}
	}

	records := make([]Record, len(raw))
	for i, m := range raw {
		records[i] = Record(m)
	}
	return &Collection{Type: t, Records: records}, nil
}

// SaveFile writes the collection to a JSON or YAML file, keyed by
// extension. JSON output is indented to stay diffable under version
// control, matching how the surrounding tooling stores catalog files.
func (c *Collection) SaveFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c.Records)
	case ".json":
		data, err = json.MarshalIndent(c.Records, "", "  ")
	default:
		return &errors.ValidationError{
			Field:   "path",
			Value:   path,
			Message: "unsupported extension " + ext,
		}
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
