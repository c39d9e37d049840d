package filestore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lessonplanner-ai/internal/storage"
)

// ManifestEntry describes one prompt module file.
type ManifestEntry struct {
	Kind   storage.ModuleKind `yaml:"kind"`
	File   string             `yaml:"file"`
	Title  string             `yaml:"title"`
	Global bool               `yaml:"global"`
}

// Manifest supplies titles and global flags for module files.
type Manifest struct {
	Modules []ManifestEntry `yaml:"modules"`
}

// LoadManifest reads a YAML manifest. An empty path yields an empty manifest.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read modules manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse modules manifest: %w", err)
	}
	for i, e := range m.Modules {
		if !e.Kind.Valid() {
			return Manifest{}, fmt.Errorf("modules manifest entry %d: unknown kind %q", i, e.Kind)
		}
		if e.File == "" {
			return Manifest{}, fmt.Errorf("modules manifest entry %d: file is required", i)
		}
	}
	return m, nil
}

// Lookup finds the entry for a module file name of the given kind.
func (m Manifest) Lookup(kind storage.ModuleKind, file string) (ManifestEntry, bool) {
	for _, e := range m.Modules {
		if e.Kind == kind && e.File == file {
			return e, true
		}
	}
	return ManifestEntry{}, false
}
