// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// ManifestName is the file written into the output directory when
// manifest generation is enabled.
const ManifestName = "manifest.yaml"

// Manifest is the on-disk record of one export run.
type Manifest struct {
	Source      string          `yaml:"source"`
	Mode        string          `yaml:"mode"`
	Format      string          `yaml:"format"`
	GeneratedAt time.Time       `yaml:"generated_at"`
	Files       []ManifestEntry `yaml:"files"`
}

// ManifestEntry records how one input file was exported.
type ManifestEntry struct {
	Path      string `yaml:"path"`
	SizeBytes int64  `yaml:"size_bytes"`
	Formatter string `yaml:"formatter,omitempty"`
	Fallback  string `yaml:"fallback,omitempty"`
	Artifact  string `yaml:"artifact"`
}

// writeManifest saves the run record next to the artifacts.
func (e *Exporter) writeManifest(sourceDir, outDir string, docs []*document) error {
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		abs = sourceDir
	}

	m := Manifest{
		Source:      abs,
		Mode:        string(e.cfg.Mode),
		Format:      string(e.cfg.Format),
		GeneratedAt: time.Now().UTC(),
		Files:       make([]ManifestEntry, len(docs)),
	}
	for i, doc := range docs {
		entry := ManifestEntry{
			Path:      doc.RelPath,
			SizeBytes: doc.Size,
			Artifact:  doc.artifact,
		}
		if doc.fallback != "" {
			entry.Formatter = doc.rule
			entry.Fallback = doc.fallback
		} else if doc.rule != "" {
			entry.Formatter = doc.rule
		}
		m.Files[i] = entry
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	path := filepath.Join(outDir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
