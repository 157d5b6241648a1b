// Package extract pulls plain text out of uploaded document files and mines
// the text for the structured fields the coherence rules consume.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Result is one extraction pass over a file: raw text plus the structured
// fields recognized in it.
type Result struct {
	Text      string         `json:"text"`
	Extracted map[string]any `json:"extracted"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// Extractor extracts text and fields from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
// Plain text files (.txt, .md) are returned as-is, UTF-8 validated. PDF,
// DOCX and XLSX are parsed from the binary format.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx", ".odt", ".rtf":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".txt", ".md", "":
		return extractPlain(content)
	default:
		// Unknown extension: treat as plain text
		return extractPlain(content)
	}
}

// ExtractFile runs text extraction and field mining in one pass.
func (e *Extractor) ExtractFile(path string) (*Result, error) {
	text, err := e.Extract(path)
	if err != nil {
		return nil, err
	}
	res := &Result{Text: text, Extracted: Fields(text)}
	if strings.TrimSpace(text) == "" {
		res.Warnings = append(res.Warnings, "no extractable text; the file may be an image scan")
	}
	return res, nil
}
