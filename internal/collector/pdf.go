package collector

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// maxPDFChars caps extracted PDF text before it enters the pipeline.
const maxPDFChars = 50000

// ExtractPDF pulls per-page text from a PDF, labeling each page with a
// "--- Page N ---" marker. Unreadable files, zero-page files, and files with
// no extractable text (scanned images) all error. Output beyond 50k chars is
// truncated with a marker.
func ExtractPDF(data []byte, filename string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrapf(err, "collector: read pdf %q", filename)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return "", eris.Errorf("collector: pdf %q has no pages", filename)
	}

	var parts []string
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			zap.L().Warn("collector: pdf page extraction failed",
				zap.String("file", filename), zap.Int("page", i), zap.Error(err))
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", i, trimmed))
		}
	}

	if len(parts) == 0 {
		return "", eris.Errorf("collector: no extractable text in pdf %q; it may be image-based (scanned)", filename)
	}

	full := strings.Join(parts, "\n\n")
	if len(full) > maxPDFChars {
		zap.L().Warn("collector: pdf truncated",
			zap.String("file", filename),
			zap.Int("original_chars", len(full)),
			zap.Int("cap", maxPDFChars),
		)
		full = full[:maxPDFChars] + "\n\n[... truncated ...]"
	}

	return full, nil
}
