package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// wordBodyPath is the usual location of the document body in a .docx zip.
const wordBodyPath = "word/document.xml"

const wordBodyContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// textNode matches <w:t>...</w:t> including attribute forms such as
// <w:t xml:space="preserve">.
var textNode = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

var bodyOverride = []*regexp.Regexp{
	regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(wordBodyContentType) + `"`),
	regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(wordBodyContentType) + `"[^>]+PartName="([^"]+)"`),
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

// wordBody locates the main document part via [Content_Types].xml,
// falling back to the conventional path when the manifest is absent or
// does not declare one. Attribute order inside Override varies by producer.
func wordBody(zr *zip.Reader) string {
	manifest, err := readZipEntry(zr, "[Content_Types].xml")
	if err != nil || manifest == nil {
		return wordBodyPath
	}
	for _, re := range bodyOverride {
		if m := re.FindSubmatch(manifest); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return wordBodyPath
}

// extractDOCX extracts text from .docx bytes. The file is a zip holding
// OOXML; pulling every <w:t> node keeps the text readable regardless of
// paragraph or run attributes, which full-XML regexes tend to choke on.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}
	path := wordBody(zr)
	body, err := readZipEntry(zr, path)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: read %s: %w", path, err)
	}
	if body == nil {
		return "", fmt.Errorf("extract DOCX: %s not found", path)
	}
	nodes := textNode.FindAllSubmatch(body, -1)
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.Write(bytes.TrimSpace(n[1]))
	}
	return strings.TrimSpace(b.String()), nil
}
