package extract

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// placeholderText is stored when OCR is unavailable or finds nothing, so
// image uploads still complete the pipeline instead of erroring out.
const placeholderText = "No text found in image"

// Image runs OCR over uploaded images via the tesseract CLI.
type Image struct {
	Binary string
	Logger *zap.Logger
}

// Extract implements Extractor. OCR failures degrade to a placeholder
// rather than failing the document.
func (i *Image) Extract(ctx context.Context, path, _ string) (string, error) {
	if i.Binary == "" {
		return placeholderText, nil
	}

	// "-" writes recognized text to stdout.
	cmd := exec.CommandContext(ctx, i.Binary, path, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if i.Logger != nil {
			i.Logger.Warn("ocr failed, storing placeholder",
				zap.String("path", path),
				zap.String("stderr", strings.TrimSpace(stderr.String())),
				zap.Error(err))
		}
		return placeholderText, nil
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return placeholderText, nil
	}
	return text, nil
}
