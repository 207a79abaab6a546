package server

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thesavant42/renewables-explorer/internal/models"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog maps source names to their descriptive metadata.
type Catalog map[string]models.SourceMetadata

// LoadCatalog reads a YAML catalog from path, or the built-in one when path
// is empty.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	catalog := Catalog{}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return catalog, nil
}

// Lookup returns the metadata for source, or a stub naming it.
func (c Catalog) Lookup(source string) models.SourceMetadata {
	if meta, ok := c[source]; ok {
		return meta
	}
	return models.SourceMetadata{Name: source, Description: "No metadata available."}
}
