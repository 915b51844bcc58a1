// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"

	"github.com/pdiddy/codebinder/pkg/types"
)

const (
	headingFont     = "Helvetica"
	headingSize     = 12
	bodyLineFactor  = 0.45 // line height in mm per point of font size
	pageBreakMargin = 15
)

// pdfDoc wraps a gofpdf document with the resolved body font.
type pdfDoc struct {
	doc      *gofpdf.Fpdf
	bodyFont string
	fontSize float64
	utf8     bool
	tr       func(string) string // cp1252 translator for the core fonts
}

// newPDF builds a PDF document using the configured TTF when present,
// falling back to the built-in Courier font otherwise.
func (e *Exporter) newPDF() *pdfDoc {
	p := e.fallbackPDF()

	if e.cfg.FontFile == "" {
		return p
	}
	if _, err := os.Stat(e.cfg.FontFile); err != nil {
		if e.cfg.FontFile != types.DefaultFontFile {
			e.logger.Warn("font file not found, using built-in Courier",
				zap.String("fontFile", e.cfg.FontFile))
		}
		return p
	}

	p.doc.AddUTF8Font("document", "", e.cfg.FontFile)
	if p.doc.Err() {
		e.logger.Warn("font failed to load, using built-in Courier",
			zap.String("fontFile", e.cfg.FontFile),
			zap.Error(p.doc.Error()))
		// A font error poisons the whole document; start over.
		return e.fallbackPDF()
	}

	p.bodyFont = "document"
	p.utf8 = true
	return p
}

// fallbackPDF builds a document with the built-in font only.
func (e *Exporter) fallbackPDF() *pdfDoc {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, pageBreakMargin)

	size := e.cfg.FontSize
	if size <= 0 {
		size = types.DefaultFontSize
	}
	return &pdfDoc{
		doc:      doc,
		bodyFont: "Courier",
		fontSize: size,
		tr:       doc.UnicodeTranslatorFromDescriptor(""),
	}
}

// addFile renders one document on a fresh page: a bold heading naming
// the source path, then the content line by line.
func (p *pdfDoc) addFile(doc *document) {
	p.doc.AddPage()
	p.doc.SetFont(headingFont, "B", headingSize)
	p.doc.MultiCell(0, 6, p.tr(doc.RelPath), "", "L", false)
	p.doc.Ln(3)

	p.doc.SetFont(p.bodyFont, "", p.fontSize)
	lineHeight := p.fontSize * bodyLineFactor
	content := strings.TrimSuffix(doc.content, "\n")
	for _, line := range strings.Split(content, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		if !p.utf8 {
			line = p.tr(line)
		}
		p.doc.MultiCell(0, lineHeight, line, "", "L", false)
	}
}

// save writes the document and verifies the result is a valid PDF.
func (p *pdfDoc) save(path string) error {
	if err := p.doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := api.ValidateFile(path, nil); err != nil {
		return fmt.Errorf("validating %s: %w", path, err)
	}
	return nil
}

// writeCombinedPDF writes every document into one PDF artifact, one file
// per page run, in order.
func (e *Exporter) writeCombinedPDF(path string, docs []*document) error {
	p := e.newPDF()
	for _, doc := range docs {
		p.addFile(doc)
	}
	return p.save(path)
}

// writeSinglePDF writes one document to its own PDF artifact.
func (e *Exporter) writeSinglePDF(path string, doc *document) error {
	p := e.newPDF()
	p.addFile(doc)
	return p.save(path)
}
