package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/tessella-io/docdex/internal/domain"
)

// DOCX extracts plain text from Office Open XML word documents by reading
// word/document.xml inside the zip container.
type DOCX struct{}

// docxDocument covers only the parts of the WordprocessingML schema needed
// for text extraction: paragraphs and their text runs.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Texts []string `xml:"t"`
	} `xml:"r"`
}

// Extract implements Extractor.
func (d *DOCX) Extract(_ context.Context, path, _ string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %v: %w", err, domain.ErrExtractionFailed)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %v: %w", err, domain.ErrExtractionFailed)
		}
		defer rc.Close()

		var doc docxDocument
		if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
			return "", fmt.Errorf("parse document.xml: %v: %w", err, domain.ErrExtractionFailed)
		}

		var paragraphs []string
		for _, p := range doc.Body.Paragraphs {
			var sb strings.Builder
			for _, r := range p.Runs {
				for _, t := range r.Texts {
					sb.WriteString(t)
				}
			}
			if text := strings.TrimSpace(sb.String()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}

		return strings.Join(paragraphs, "\n\n"), nil
	}

	return "", fmt.Errorf("docx has no word/document.xml: %w", domain.ErrExtractionFailed)
}
