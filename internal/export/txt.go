// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// txtHeader renders the per-file heading written before each file's
// content in TXT artifacts.
func txtHeader(relPath string) string {
	rule := "# " + strings.Repeat("-", 78)
	return fmt.Sprintf("%s\n# Source: %s\n%s\n\n", rule, relPath, rule)
}

// writeCombinedTXT writes every document into one TXT artifact in order,
// each preceded by its header.
func (e *Exporter) writeCombinedTXT(path string, docs []*document) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for i, doc := range docs {
		if i > 0 {
			if _, err := w.WriteString("\n"); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
		}
		if _, err := w.WriteString(txtHeader(doc.RelPath)); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if _, err := w.WriteString(doc.content); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// writeSingleTXT writes one document to its own TXT artifact.
func (e *Exporter) writeSingleTXT(path string, doc *document) error {
	var b strings.Builder
	b.WriteString(txtHeader(doc.RelPath))
	b.WriteString(doc.content)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
