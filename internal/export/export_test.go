// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/codebinder/internal/format"
	"github.com/pdiddy/codebinder/internal/scan"
	"github.com/pdiddy/codebinder/pkg/types"
)

// stubFormatter lets tests control formatting outcomes per file.
type stubFormatter struct {
	fn func(path string, raw []byte) format.Result
}

func (s stubFormatter) Format(path string, raw []byte) format.Result {
	return s.fn(path, raw)
}

// writeInputs creates source files and returns their scan records in
// export order.
func writeInputs(t *testing.T, dir string, files map[string]string) []scan.FileInfo {
	t.Helper()
	infos := make([]scan.FileInfo, 0, len(files))
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		infos = append(infos, scan.FileInfo{
			Path:    path,
			RelPath: rel,
			Size:    int64(len(content)),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].RelPath < infos[j].RelPath })
	return infos
}

func TestExportSeparateTXTProducesPerFileArtifacts(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := writeInputs(t, src, map[string]string{
		"alpha.go": "package alpha\n",
		"beta.py":  "print('beta')\n",
		"gamma.c":  "int g;\n",
	})

	e := New(types.ExportConfig{
		Mode:      types.ModeSeparate,
		Format:    types.FormatTXT,
		OutputDir: out,
	}, nil, zap.NewNop())

	var buf bytes.Buffer
	result, err := e.Export(src, files, &buf)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Exported)
	require.Len(t, result.Artifacts, 3)
	for _, want := range []string{"alpha.txt", "beta.txt", "gamma.txt"} {
		_, err := os.Stat(filepath.Join(out, want))
		assert.NoError(t, err, "expected artifact %s", want)
	}
}

func TestExportSingleTXTOrderedConcatenation(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := writeInputs(t, src, map[string]string{
		"a.go":     "package a\n",
		"b.go":     "package b\n",
		"sub/c.go": "package c\n",
	})

	e := New(types.ExportConfig{
		Mode:      types.ModeSingle,
		Format:    types.FormatTXT,
		OutputDir: out,
	}, nil, zap.NewNop())

	var buf bytes.Buffer
	result, err := e.Export(src, files, &buf)
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 1)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1, "single mode writes exactly one artifact")

	data, err := os.ReadFile(result.Artifacts[0])
	require.NoError(t, err)
	content := string(data)

	iA := strings.Index(content, "package a")
	iB := strings.Index(content, "package b")
	iC := strings.Index(content, "package c")
	require.True(t, iA >= 0 && iB >= 0 && iC >= 0, "all inputs present")
	assert.Less(t, iA, iB)
	assert.Less(t, iB, iC)
	assert.Contains(t, content, "# Source: a.go")
	assert.Contains(t, content, "# Source: sub/c.go")
}

func TestExportSingleArtifactNamedAfterSourceFolder(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "myproject")
	require.NoError(t, os.MkdirAll(src, 0o755))
	out := filepath.Join(base, "out")
	files := writeInputs(t, src, map[string]string{"a.go": "package a\n"})

	e := New(types.ExportConfig{
		Mode:      types.ModeSingle,
		Format:    types.FormatTXT,
		OutputDir: out,
	}, nil, zap.NewNop())

	var buf bytes.Buffer
	result, err := e.Export(src, files, &buf)
	require.NoError(t, err)
	assert.Equal(t, "myproject.txt", filepath.Base(result.Artifacts[0]))
}

func TestExportFormatterFallbackStillSucceeds(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := writeInputs(t, src, map[string]string{"main.go": "package  main\n"})

	// Simulates a matching rule whose binary is absent.
	fallback := stubFormatter{fn: func(path string, raw []byte) format.Result {
		return format.Result{
			Content:  string(raw),
			Rule:     "gofmt",
			Fallback: "formatter binary not found",
		}
	}}

	e := New(types.ExportConfig{
		Mode:      types.ModeSingle,
		Format:    types.FormatTXT,
		OutputDir: out,
	}, fallback, zap.NewNop())

	var buf bytes.Buffer
	result, err := e.Export(src, files, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Exported)
	assert.Equal(t, 1, result.Fallbacks)

	data, err := os.ReadFile(result.Artifacts[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "package  main", "raw content exported unformatted")
	assert.Contains(t, buf.String(), "fallback: main.go")
}

func TestExportFormattedContentUsed(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := writeInputs(t, src, map[string]string{"main.go": "package  main\n"})

	formatted := stubFormatter{fn: func(path string, raw []byte) format.Result {
		return format.Result{Content: "package main\n", Rule: "gofmt", Applied: true}
	}}

	e := New(types.ExportConfig{
		Mode:      types.ModeSingle,
		Format:    types.FormatTXT,
		OutputDir: out,
	}, formatted, zap.NewNop())

	var buf bytes.Buffer
	result, err := e.Export(src, files, &buf)
	require.NoError(t, err)

	data, err := os.ReadFile(result.Artifacts[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "package main\n")
	assert.NotContains(t, string(data), "package  main")
	assert.Contains(t, buf.String(), "exported: main.go")
}

func TestExportSinglePDF(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := writeInputs(t, src, map[string]string{
		"a.go": "package a\n\nfunc A() {}\n",
		"b.py": "print('hello')\n",
	})

	e := New(types.ExportConfig{
		Mode:      types.ModeSingle,
		Format:    types.FormatPDF,
		OutputDir: out,
	}, nil, zap.NewNop())

	var buf bytes.Buffer
	result, err := e.Export(src, files, &buf)
	require.NoError(t, err, "save validates the PDF with pdfcpu")
	require.Len(t, result.Artifacts, 1)

	data, err := os.ReadFile(result.Artifacts[0])
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "artifact is a PDF")
}

func TestExportSeparatePDF(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := writeInputs(t, src, map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
	})

	e := New(types.ExportConfig{
		Mode:      types.ModeSeparate,
		Format:    types.FormatPDF,
		OutputDir: out,
	}, nil, zap.NewNop())

	var buf bytes.Buffer
	result, err := e.Export(src, files, &buf)
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 2)
	for _, p := range result.Artifacts {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	}
}

func TestExportSeparateStemCollision(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := writeInputs(t, src, map[string]string{
		"main.go":     "package main\n",
		"sub/main.go": "package sub\n",
	})

	e := New(types.ExportConfig{
		Mode:      types.ModeSeparate,
		Format:    types.FormatTXT,
		OutputDir: out,
	}, nil, zap.NewNop())

	var buf bytes.Buffer
	result, err := e.Export(src, files, &buf)
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 2)

	names := []string{
		filepath.Base(result.Artifacts[0]),
		filepath.Base(result.Artifacts[1]),
	}
	sort.Strings(names)
	assert.Equal(t, []string{"main-2.txt", "main.txt"}, names)
}

func TestExportSeparateSuffixSkipsTakenStems(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := writeInputs(t, src, map[string]string{
		"main-2.go":   "package oldmain\n",
		"main.go":     "package main\n",
		"sub/main.go": "package sub\n",
	})

	e := New(types.ExportConfig{
		Mode:      types.ModeSeparate,
		Format:    types.FormatTXT,
		OutputDir: out,
	}, nil, zap.NewNop())

	var buf bytes.Buffer
	result, err := e.Export(src, files, &buf)
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 3)

	// Every input gets its own artifact; the generated suffix must not
	// land on a stem a real input already claimed.
	unique := make(map[string]bool)
	for _, p := range result.Artifacts {
		unique[p] = true
	}
	assert.Len(t, unique, 3, "artifact paths must be distinct")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	sort.Strings(names)
	assert.Equal(t, []string{"main-2.txt", "main-3.txt", "main.txt"}, names)

	// main-2.txt still holds main-2.go's content, not sub/main.go's.
	data, err := os.ReadFile(filepath.Join(out, "main-2.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package oldmain")
}

func TestPlannedArtifacts(t *testing.T) {
	files := []scan.FileInfo{
		{RelPath: "main-2.go"},
		{RelPath: "main.go"},
		{RelPath: "sub/main.go"},
	}

	t.Run("single mode names one artifact after the folder", func(t *testing.T) {
		e := New(types.ExportConfig{
			Mode:      types.ModeSingle,
			Format:    types.FormatTXT,
			OutputDir: "out",
		}, nil, zap.NewNop())

		got := e.PlannedArtifacts(filepath.Join("some", "proj"), files)
		require.Len(t, got, 1)
		assert.Equal(t, filepath.Join("out", "proj.txt"), got[0])
	})

	t.Run("separate mode matches the writer's collision handling", func(t *testing.T) {
		e := New(types.ExportConfig{
			Mode:      types.ModeSeparate,
			Format:    types.FormatTXT,
			OutputDir: "out",
		}, nil, zap.NewNop())

		got := e.PlannedArtifacts(".", files)
		assert.Equal(t, []string{
			filepath.Join("out", "main-2.txt"),
			filepath.Join("out", "main.txt"),
			filepath.Join("out", "main-3.txt"),
		}, got)
	})
}

func TestExportManifest(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := writeInputs(t, src, map[string]string{"main.go": "package main\n"})

	fallback := stubFormatter{fn: func(path string, raw []byte) format.Result {
		return format.Result{
			Content:  string(raw),
			Rule:     "gofmt",
			Fallback: "formatter binary not found",
		}
	}}

	e := New(types.ExportConfig{
		Mode:      types.ModeSingle,
		Format:    types.FormatTXT,
		OutputDir: out,
		Manifest:  true,
	}, fallback, zap.NewNop())

	var buf bytes.Buffer
	_, err := e.Export(src, files, &buf)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, ManifestName))
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "single", m.Mode)
	assert.Equal(t, "txt", m.Format)
	require.Len(t, m.Files, 1)
	assert.Equal(t, "main.go", m.Files[0].Path)
	assert.Equal(t, "gofmt", m.Files[0].Formatter)
	assert.Equal(t, "formatter binary not found", m.Files[0].Fallback)
	assert.NotEmpty(t, m.Files[0].Artifact)
}

func TestExportUnreadableInputAborts(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	files := []scan.FileInfo{
		{Path: filepath.Join(src, "gone.go"), RelPath: "gone.go"},
	}

	e := New(types.ExportConfig{
		Mode:      types.ModeSingle,
		Format:    types.FormatTXT,
		OutputDir: out,
	}, nil, zap.NewNop())

	var buf bytes.Buffer
	_, err := e.Export(src, files, &buf)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "failed:")
}

func TestOutputDirDefaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.ExportConfig
		want string
	}{
		{"pdf default", types.ExportConfig{Format: types.FormatPDF}, "pdf_output"},
		{"txt default", types.ExportConfig{Format: types.FormatTXT}, "txt_output"},
		{"override wins", types.ExportConfig{Format: types.FormatTXT, OutputDir: "custom"}, "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.cfg, nil, zap.NewNop())
			if got := e.OutputDir(); got != tt.want {
				t.Errorf("OutputDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\r\nb\r\n", "a\nb\n"},
		{"no trailing newline", "no trailing newline\n"},
		{"", ""},
		{"already\n", "already\n"},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
