// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration structures shared by the
// codebinder pipeline stages.
package types

// ExportMode selects how scanned files are grouped into artifacts.
type ExportMode string

const (
	// ModeSingle combines every scanned file into one artifact.
	ModeSingle ExportMode = "single"

	// ModeSeparate writes one artifact per scanned file.
	ModeSeparate ExportMode = "separate"
)

// ArtifactFormat identifies the output artifact format.
type ArtifactFormat string

const (
	FormatPDF ArtifactFormat = "pdf"
	FormatTXT ArtifactFormat = "txt"
)

// ScanConfig holds settings for the folder scanning stage.
type ScanConfig struct {
	// Extensions is the allow-list of file suffixes eligible for export.
	// Entries are matched case-insensitively, with or without a leading dot.
	Extensions []string `json:"extensions" yaml:"extensions"`

	// Recursive controls whether subdirectories are walked (default true).
	Recursive bool `json:"recursive" yaml:"recursive"`

	// Exclude holds gitignore-style patterns applied to paths relative to
	// the scan root.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// MaxFileSizeKB is the largest file size to export (default 1024);
	// larger files are skipped.
	MaxFileSizeKB int `json:"max_file_size_kb" yaml:"max_file_size_kb"`
}

// FormatRule binds a set of file extensions to an external formatter
// command. The file path is appended as the final argument and the
// formatted content is read from stdout.
type FormatRule struct {
	// Name is a short label for the rule (e.g. "gofmt").
	Name string `json:"name" yaml:"name"`

	// Command is the formatter binary, resolved on PATH.
	Command string `json:"command" yaml:"command"`

	// Args are passed before the file path argument.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	// Extensions lists the file suffixes the rule applies to.
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// FormatConfig holds settings for the formatter invocation stage.
type FormatConfig struct {
	// Enabled controls whether formatters run at all (default true).
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Rules maps extensions to formatter commands. When empty the
	// built-in rule set is used.
	Rules []FormatRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// Mode selects single or separate artifact grouping.
	Mode ExportMode `json:"mode" yaml:"mode"`

	// Format selects the artifact format: pdf or txt.
	Format ArtifactFormat `json:"format" yaml:"format"`

	// OutputDir overrides the default pdf_output/ or txt_output/
	// directory created under the working directory.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	// FontFile is a TTF loaded for PDF body text. When missing the
	// built-in Courier font is used.
	FontFile string `json:"font_file,omitempty" yaml:"font_file,omitempty"`

	// FontSize is the PDF body font size in points (default 8).
	FontSize float64 `json:"font_size" yaml:"font_size"`

	// Manifest controls whether a manifest.yaml is written next to the
	// artifacts.
	Manifest bool `json:"manifest" yaml:"manifest"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Scan   ScanConfig   `json:"scan" yaml:"scan"`
	Format FormatConfig `json:"format" yaml:"format"`
	Export ExportConfig `json:"export" yaml:"export"`
}

// DefaultExtensions is the allow-list applied when none is configured.
var DefaultExtensions = []string{
	".py", ".c", ".h", ".yaml", ".yml", ".cpp", ".java", ".txt", ".go",
}

const (
	// DefaultMaxFileSizeKB caps exported file size at 1 MiB.
	DefaultMaxFileSizeKB = 1024

	// DefaultFontSize is the PDF body font size in points.
	DefaultFontSize = 8

	// DefaultFontFile is probed in the working directory; a missing file
	// silently falls back to the built-in font.
	DefaultFontFile = "calibri.ttf"
)

// DefaultConfig returns the pipeline configuration used when no config
// file or flags override it.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		Scan: ScanConfig{
			Extensions:    append([]string(nil), DefaultExtensions...),
			Recursive:     true,
			MaxFileSizeKB: DefaultMaxFileSizeKB,
		},
		Format: FormatConfig{
			Enabled: true,
		},
		Export: ExportConfig{
			Mode:     ModeSingle,
			Format:   FormatPDF,
			FontFile: DefaultFontFile,
			FontSize: DefaultFontSize,
		},
	}
}
