package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tessella-io/docdex/internal/domain"
)

// PlainText reads text files as-is.
type PlainText struct{}

// Extract implements Extractor.
func (p *PlainText) Extract(_ context.Context, path, _ string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %v: %w", err, domain.ErrExtractionFailed)
	}
	return strings.TrimSpace(string(data)), nil
}
