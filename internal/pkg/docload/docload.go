package docload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// SupportedExt reports whether the file extension is one the ingestion
// pipeline can turn into text. Uploads are rejected earlier with the same
// check; the pipeline re-checks defensively.
func SupportedExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// Load reads the stored file and extracts its plain text.
func Load(path string) (string, error) {
	if !SupportedExt(path) {
		return "", fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document failed: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := extractPDFText(raw)
		if err != nil {
			return "", fmt.Errorf("extract pdf text failed: %w", err)
		}
		return text, nil
	}
	return string(raw), nil
}

func extractPDFText(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
