// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan discovers the files eligible for export under a chosen
// folder. Discovery is recomputed on every run; nothing is cached.
package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/boyter/gocodewalker"
	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"

	"github.com/pdiddy/codebinder/pkg/types"
)

// ErrNoFiles is returned when the scan finds no allow-listed files.
var ErrNoFiles = errors.New("no files matching the extension allow-list")

// FileInfo describes one discovered file.
type FileInfo struct {
	// Path is the absolute path of the file.
	Path string

	// RelPath is the slash-separated path relative to the scan root.
	// It determines export order and artifact headers.
	RelPath string

	// Size is the file size in bytes.
	Size int64
}

// Scanner lists files under a root directory that match the configured
// extension allow-list, minus excluded patterns and oversized files.
type Scanner struct {
	exts    map[string]bool // lowercase, with leading dot
	matcher *ignore.GitIgnore
	cfg     types.ScanConfig
	logger  *zap.Logger
}

// New builds a Scanner from the scan configuration. An empty extension
// list falls back to the default allow-list.
func New(cfg types.ScanConfig, logger *zap.Logger) *Scanner {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = types.DefaultExtensions
	}

	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		extSet[normalizeExt(e)] = true
	}

	var matcher *ignore.GitIgnore
	if len(cfg.Exclude) > 0 {
		matcher = ignore.CompileIgnoreLines(cfg.Exclude...)
	}

	return &Scanner{
		exts:    extSet,
		matcher: matcher,
		cfg:     cfg,
		logger:  logger,
	}
}

// Scan lists eligible files under root, sorted by relative path. It
// returns ErrNoFiles when nothing on the allow-list is found, and an
// error when root is not a readable directory.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var files []FileInfo
	if s.cfg.Recursive {
		files, err = s.walk(absRoot)
	} else {
		files, err = s.list(absRoot)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})

	if len(files) == 0 {
		return nil, fmt.Errorf("scanning %s: %w", root, ErrNoFiles)
	}

	s.logger.Debug("scan complete",
		zap.String("root", absRoot),
		zap.Int("files", len(files)))
	return files, nil
}

// walk traverses root recursively. The walker honors .gitignore files it
// encounters, matching how the rest of the pipeline treats generated and
// vendored trees.
func (s *Scanner) walk(root string) ([]FileInfo, error) {
	queue := make(chan *gocodewalker.File, 128)
	walker := gocodewalker.NewFileWalker(root, queue)

	for ext := range s.exts {
		walker.AllowListExtensions = append(walker.AllowListExtensions, strings.TrimPrefix(ext, "."))
	}
	walker.SetErrorHandler(func(err error) bool {
		s.logger.Warn("skipping unreadable entry", zap.Error(err))
		return true
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- walker.Start()
	}()

	var files []FileInfo
	for f := range queue {
		if fi, ok := s.admit(root, f.Location); ok {
			files = append(files, fi)
		}
	}

	if err := <-errCh; err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// list reads only the immediate entries of root (non-recursive mode).
// gocodewalker always descends, so the flat listing goes through
// os.ReadDir with the same filters.
func (s *Scanner) list(root string) ([]FileInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", root, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !s.exts[normalizeExt(filepath.Ext(entry.Name()))] {
			continue
		}
		if fi, ok := s.admit(root, filepath.Join(root, entry.Name())); ok {
			files = append(files, fi)
		}
	}
	return files, nil
}

// admit applies the exclude patterns and size cap to a candidate path.
func (s *Scanner) admit(root, path string) (FileInfo, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	if s.matcher != nil && s.matcher.MatchesPath(rel) {
		s.logger.Debug("excluded by pattern", zap.String("file", rel))
		return FileInfo{}, false
	}

	info, err := os.Stat(path)
	if err != nil {
		s.logger.Warn("skipping unreadable file", zap.String("file", rel), zap.Error(err))
		return FileInfo{}, false
	}

	maxKB := s.cfg.MaxFileSizeKB
	if maxKB <= 0 {
		maxKB = types.DefaultMaxFileSizeKB
	}
	if info.Size() > int64(maxKB)*1024 {
		s.logger.Info("skipping oversized file",
			zap.String("file", rel),
			zap.Int64("sizeBytes", info.Size()),
			zap.Int("maxSizeKB", maxKB))
		return FileInfo{}, false
	}

	return FileInfo{Path: path, RelPath: rel, Size: info.Size()}, true
}

// normalizeExt lowercases an extension and ensures a leading dot, so
// "Go", "go", and ".go" configure the same suffix.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ext
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
