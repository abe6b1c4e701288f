// Package source acquires documents for the detector: the submission from a
// file, URL or standard input, and the reference corpus from a folder.
//
// Supported formats are plain text (.txt, .md), PDF (.pdf) and HTML (.html,
// .htm). Everything is resolved to plain text here; the detector only ever
// sees detect.Document values.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/chriscorrea/copycheck/internal/detect"
)

// Size limits to prevent memory overload
const (
	MaxFileSizeBytes = 50 * 1024 * 1024  // 50MB limit for files
	MaxHTTPSizeBytes = 100 * 1024 * 1024 // 100MB limit for HTTP content (may not have Content-Length)
)

// HTTPRequestTimeout bounds a whole URL fetch.
const HTTPRequestTimeout = 30 * time.Second

// specific timeout thresholds (based on HTTPRequestTimeout)
var (
	HTTPDialTimeout           = HTTPRequestTimeout / 6
	HTTPTLSTimeout            = HTTPRequestTimeout / 6
	HTTPResponseHeaderTimeout = HTTPRequestTimeout / 2
)

var (
	// ErrUnsupportedFormat is returned for documents that are not text, PDF or HTML.
	ErrUnsupportedFormat = errors.New("unsupported document format (use .txt, .md, .pdf, .html or .htm)")
	// ErrNotAFile is returned when a submission path points at a directory.
	ErrNotAFile = errors.New("path is a directory, not a document")
)

// Options controls how HTML documents are reduced to text.
type Options struct {
	Selector         string // CSS selector for HTML content extraction
	IncludeAll       bool   // skip readability filtering for HTML
	StripBoilerplate bool   // drop cover pages, page numbers and similar furniture
}

// limitedReadCloser wraps an io.ReadCloser to enforce size limits
type limitedReadCloser struct {
	io.ReadCloser
	N      int64  // max bytes remaining
	source string // for error messages
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		return 0, fmt.Errorf("content from %q exceeds size limit", l.source)
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// httpClient is shared and safe for concurrent use.
var httpClient = &http.Client{
	Timeout: HTTPRequestTimeout,
	Transport: &http.Transport{
		Dial: (&net.Dialer{
			Timeout: HTTPDialTimeout,
		}).Dial,
		TLSHandshakeTimeout:   HTTPTLSTimeout,
		ResponseHeaderTimeout: HTTPResponseHeaderTimeout,
		DisableKeepAlives:     true,
	},
}

// Read loads a single document. It supports three types of sources:
//   - "-" reads plain text from standard input
//   - URLs starting with "http://" or "https://" are fetched via HTTP
//   - everything else is treated as a local file path
//
// The document name is the file's base name, the URL, or "stdin.txt".
func Read(ctx context.Context, src string, opts Options) (detect.Document, error) {
	switch {
	case src == "-":
		stdin := &limitedReadCloser{ReadCloser: os.Stdin, N: MaxFileSizeBytes, source: "stdin"}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return detect.Document{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return FromBytes("stdin.txt", data, opts)
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		return readURL(ctx, src, opts)
	default:
		return ReadFile(src, opts)
	}
}

// readURL fetches a document over HTTP. The format comes from the URL path
// extension, falling back to the Content-Type header.
func readURL(ctx context.Context, rawURL string, opts Options) (detect.Document, error) {
	body, contentType, err := fetchURL(ctx, rawURL)
	if err != nil {
		return detect.Document{}, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return detect.Document{}, fmt.Errorf("failed to read URL %q: %w", rawURL, err)
	}

	parsed, _ := url.Parse(rawURL) // already validated by the request
	ext := ""
	if parsed != nil {
		ext = strings.ToLower(path.Ext(parsed.Path))
	}
	if _, ok := formats[ext]; !ok {
		ext = extensionForContentType(contentType)
	}

	content, err := decode(ext, data, opts, parsed)
	if err != nil {
		return detect.Document{}, fmt.Errorf("failed to decode URL %q: %w", rawURL, err)
	}
	return detect.Document{Name: rawURL, Content: content}, nil
}

// fetchURL retrieves content from an HTTP or HTTPS URL using a client with timeout configuration
func fetchURL(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request for URL %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", "copycheck/0.1")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL %q: %w", rawURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("HTTP request failed for URL %q: status %d %s", rawURL, resp.StatusCode, resp.Status)
	}

	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil {
			if size > MaxHTTPSizeBytes {
				resp.Body.Close()
				return nil, "", fmt.Errorf("HTTP content too large (%d bytes > %d bytes limit)",
					size, MaxHTTPSizeBytes)
			}
		}
	}

	return &limitedReadCloser{
		ReadCloser: resp.Body,
		N:          MaxHTTPSizeBytes,
		source:     rawURL,
	}, resp.Header.Get("Content-Type"), nil
}

// ReadFile loads a local document, choosing the decoder by extension.
func ReadFile(filePath string, opts Options) (detect.Document, error) {
	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return detect.Document{}, fmt.Errorf("file %q does not exist", filePath)
	}
	if err != nil {
		return detect.Document{}, fmt.Errorf("failed to access file %q: %w", filePath, err)
	}
	if fileInfo.IsDir() {
		return detect.Document{}, fmt.Errorf("%q: %w", filePath, ErrNotAFile)
	}

	// check file size before opening to prevent memory overload
	if fileInfo.Size() > MaxFileSizeBytes {
		return detect.Document{}, fmt.Errorf("file %q is too large (%d bytes > %d bytes limit)",
			filePath, fileInfo.Size(), MaxFileSizeBytes)
	}

	if !Supported(filePath) {
		return detect.Document{}, fmt.Errorf("%q: %w", filePath, ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return detect.Document{}, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	return FromBytes(fileInfo.Name(), data, opts)
}
