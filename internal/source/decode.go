package source

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/chriscorrea/copycheck/internal/classify"
	"github.com/chriscorrea/copycheck/internal/detect"
	"github.com/chriscorrea/copycheck/internal/extract"
)

type format int

const (
	formatText format = iota
	formatPDF
	formatHTML
)

// formats maps lower-case extensions to decoders.
var formats = map[string]format{
	".txt":  formatText,
	".md":   formatText,
	".pdf":  formatPDF,
	".html": formatHTML,
	".htm":  formatHTML,
}

// Supported reports whether name has a document extension this package reads.
func Supported(name string) bool {
	_, ok := formats[strings.ToLower(filepath.Ext(name))]
	return ok
}

// FromBytes decodes an in-memory document (an upload, for example). The
// format is chosen by the extension of name.
func FromBytes(name string, data []byte, opts Options) (detect.Document, error) {
	ext := strings.ToLower(filepath.Ext(name))
	content, err := decode(ext, data, opts, nil)
	if err != nil {
		return detect.Document{}, fmt.Errorf("failed to read %q: %w", name, err)
	}
	return detect.Document{Name: name, Content: content}, nil
}

func decode(ext string, data []byte, opts Options, baseURL *url.URL) (string, error) {
	text, err := decodeFormat(ext, data, opts, baseURL)
	if err != nil || !opts.StripBoilerplate {
		return text, err
	}

	stripped, removed := classify.New().Strip(text)
	if removed > 0 {
		slog.Debug("Stripped boilerplate paragraphs", "removed", removed)
	}
	return stripped, nil
}

func decodeFormat(ext string, data []byte, opts Options, baseURL *url.URL) (string, error) {
	f, ok := formats[ext]
	if !ok {
		return "", ErrUnsupportedFormat
	}

	switch f {
	case formatPDF:
		return pdfText(data)
	case formatHTML:
		text, err := extract.ToText(bytes.NewReader(data), opts.Selector, opts.IncludeAll, baseURL)
		if err != nil && opts.Selector == "" && !opts.IncludeAll {
			// pages too short for readability still carry text worth comparing
			return extract.ToText(bytes.NewReader(data), "", true, baseURL)
		}
		return text, err
	default:
		if !utf8.Valid(data) {
			return strings.ToValidUTF8(string(data), " "), nil
		}
		return string(data), nil
	}
}

// pdfText concatenates the plain text of every page.
func pdfText(data []byte) (text string, err error) {
	// the PDF parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	return buf.String(), nil
}

// extensionForContentType maps an HTTP Content-Type to a known extension.
// Unknown types are treated as plain text.
func extensionForContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".txt"
	}
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "text/html", "application/xhtml+xml":
		return ".html"
	default:
		return ".txt"
	}
}
