// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes scanned files into TXT or PDF artifacts,
// either combined into one output (single mode) or one artifact per
// input file (separate mode).
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/codebinder/internal/format"
	"github.com/pdiddy/codebinder/internal/scan"
	"github.com/pdiddy/codebinder/pkg/types"
)

// Formatter produces the export content for a file. *format.Invoker is
// the production implementation; a nil Formatter exports raw content.
type Formatter interface {
	Format(path string, raw []byte) format.Result
}

// BatchResult holds the outcome of an export run.
type BatchResult struct {
	// Exported is the number of input files written into artifacts.
	Exported int

	// Fallbacks counts files exported unformatted although a formatter
	// rule matched them.
	Fallbacks int

	// Artifacts lists the paths of the written output files.
	Artifacts []string
}

// Exporter writes scanned files to the output directory.
type Exporter struct {
	cfg       types.ExportConfig
	formatter Formatter
	logger    *zap.Logger
}

// New builds an Exporter. formatter may be nil to skip formatting.
func New(cfg types.ExportConfig, formatter Formatter, logger *zap.Logger) *Exporter {
	return &Exporter{cfg: cfg, formatter: formatter, logger: logger}
}

// document is one input file with its resolved export content.
type document struct {
	scan.FileInfo
	content  string
	rule     string
	fallback string
	artifact string // relative artifact name, set once written
}

// Export writes the files discovered under sourceDir as artifacts,
// printing one status line per file to w. Any unreadable input aborts
// the run; formatter fallbacks do not.
func (e *Exporter) Export(sourceDir string, files []scan.FileInfo, w io.Writer) (BatchResult, error) {
	outDir := e.OutputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	docs := make([]*document, 0, len(files))
	var result BatchResult
	for _, f := range files {
		raw, err := os.ReadFile(f.Path)
		if err != nil {
			fmt.Fprintf(w, "failed:   %s (%v)\n", f.RelPath, err)
			return result, fmt.Errorf("reading %s: %w", f.RelPath, err)
		}

		doc := &document{FileInfo: f}
		if e.formatter != nil {
			res := e.formatter.Format(f.Path, raw)
			doc.content = normalize(res.Content)
			doc.rule = res.Rule
			doc.fallback = res.Fallback
		} else {
			doc.content = normalize(string(raw))
		}

		if doc.fallback != "" {
			result.Fallbacks++
			fmt.Fprintf(w, "fallback: %s (%s)\n", f.RelPath, doc.fallback)
		} else {
			fmt.Fprintf(w, "exported: %s\n", f.RelPath)
		}
		docs = append(docs, doc)
	}

	artifacts, err := e.write(sourceDir, outDir, docs)
	if err != nil {
		return result, err
	}
	result.Exported = len(docs)
	result.Artifacts = artifacts

	if e.cfg.Manifest {
		if err := e.writeManifest(sourceDir, outDir, docs); err != nil {
			return result, err
		}
	}

	fmt.Fprintf(w, "\nExport summary: %d files, %d formatter fallbacks, %d artifacts in %s\n",
		result.Exported, result.Fallbacks, len(result.Artifacts), outDir)
	return result, nil
}

// OutputDir returns the directory artifacts are written to: the
// configured override, or pdf_output/ and txt_output/ under the working
// directory.
func (e *Exporter) OutputDir() string {
	if e.cfg.OutputDir != "" {
		return e.cfg.OutputDir
	}
	if e.cfg.Format == types.FormatTXT {
		return "txt_output"
	}
	return "pdf_output"
}

// write dispatches to the mode- and format-specific writers and returns
// the artifact paths.
func (e *Exporter) write(sourceDir, outDir string, docs []*document) ([]string, error) {
	switch e.cfg.Mode {
	case types.ModeSeparate:
		return e.writeSeparate(outDir, docs)
	default:
		return e.writeSingle(sourceDir, outDir, docs)
	}
}

func (e *Exporter) writeSingle(sourceDir, outDir string, docs []*document) ([]string, error) {
	name := singleArtifactName(sourceDir, e.cfg.Format)
	path := filepath.Join(outDir, name)

	var err error
	if e.cfg.Format == types.FormatTXT {
		err = e.writeCombinedTXT(path, docs)
	} else {
		err = e.writeCombinedPDF(path, docs)
	}
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		doc.artifact = name
	}
	e.logger.Info("wrote combined artifact",
		zap.String("artifact", path),
		zap.Int("files", len(docs)))
	return []string{path}, nil
}

func (e *Exporter) writeSeparate(outDir string, docs []*document) ([]string, error) {
	ext := artifactExt(e.cfg.Format)

	used := make(map[string]bool)
	artifacts := make([]string, 0, len(docs))
	for _, doc := range docs {
		name := assignName(used, stemOf(doc.RelPath), ext)
		path := filepath.Join(outDir, name)

		var err error
		if e.cfg.Format == types.FormatTXT {
			err = e.writeSingleTXT(path, doc)
		} else {
			err = e.writeSinglePDF(path, doc)
		}
		if err != nil {
			return nil, err
		}
		doc.artifact = name
		artifacts = append(artifacts, path)
	}

	e.logger.Info("wrote separate artifacts",
		zap.String("outputDir", outDir),
		zap.Int("artifacts", len(artifacts)))
	return artifacts, nil
}

// PlannedArtifacts returns the artifact paths an export of files would
// write, in input order. Separate-mode names are resolved with the same
// collision handling the writer uses.
func (e *Exporter) PlannedArtifacts(sourceDir string, files []scan.FileInfo) []string {
	outDir := e.OutputDir()
	if e.cfg.Mode != types.ModeSeparate {
		return []string{filepath.Join(outDir, singleArtifactName(sourceDir, e.cfg.Format))}
	}

	ext := artifactExt(e.cfg.Format)
	used := make(map[string]bool)
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, filepath.Join(outDir, assignName(used, stemOf(f.RelPath), ext)))
	}
	return paths
}

func artifactExt(f types.ArtifactFormat) string {
	if f == types.FormatTXT {
		return ".txt"
	}
	return ".pdf"
}

// stemOf returns the base name of relPath without its extension.
func stemOf(relPath string) string {
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// assignName picks the artifact name for stem, suffixing with -2, -3, ...
// until it collides with nothing already assigned in this run. The chosen
// name is recorded in used.
func assignName(used map[string]bool, stem, ext string) string {
	name := stem + ext
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	used[name] = true
	return name
}

// singleArtifactName derives the combined artifact name from the source
// folder's base name.
func singleArtifactName(sourceDir string, f types.ArtifactFormat) string {
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		abs = sourceDir
	}
	base := filepath.Base(abs)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "combined"
	}
	if f == types.FormatTXT {
		return base + ".txt"
	}
	return base + ".pdf"
}

// normalize converts CRLF line endings and guarantees a trailing newline
// so concatenated files never run together.
func normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content
}
