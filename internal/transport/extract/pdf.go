package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tessella-io/docdex/internal/domain"
)

// PDF extracts plain text from PDF files.
type PDF struct{}

// Extract implements Extractor.
func (p *PDF) Extract(_ context.Context, path, _ string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %v: %w", err, domain.ErrExtractionFailed)
	}
	defer f.Close()

	var buf bytes.Buffer
	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %v: %w", err, domain.ErrExtractionFailed)
	}
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("read pdf text: %v: %w", err, domain.ErrExtractionFailed)
	}

	return strings.TrimSpace(buf.String()), nil
}
