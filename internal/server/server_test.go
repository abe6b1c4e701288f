package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chriscorrea/copycheck/internal/config"
	"github.com/chriscorrea/copycheck/internal/detect"
	"github.com/chriscorrea/copycheck/internal/metrics"
	"github.com/chriscorrea/copycheck/internal/source"
)

const mlText = "Machine learning adalah cabang kecerdasan buatan yang mempelajari pola data secara otomatis."

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) (*Server, http.Handler) {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RateLimitRPS = 0
	if mutate != nil {
		mutate(&cfg.Server)
	}
	opts, err := cfg.DetectorOptions()
	if err != nil {
		t.Fatalf("DetectorOptions() unexpected error: %v", err)
	}
	det, err := detect.New(opts)
	if err != nil {
		t.Fatalf("detect.New() unexpected error: %v", err)
	}

	refs := []detect.Document{
		{Name: "weather.txt", Content: "Cuaca cerah sekali dengan angin bertiup pelan menuju pantai selatan."},
		{Name: "ml.txt", Content: mlText},
	}
	s := New(cfg.Server, det, refs, cfg.Detection.Threshold, source.Options{}, metrics.New())
	return s, s.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want 200", rec.Code)
	}
	var body struct {
		Status     string `json:"status"`
		References int    `json:"references"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET /health body: %v", err)
	}
	if body.Status != "healthy" || body.References != 2 {
		t.Errorf("GET /health = %+v, want healthy with 2 references", body)
	}
}

func TestDetect(t *testing.T) {
	_, h := newTestServer(t, nil)

	tests := []struct {
		name            string
		body            any
		wantStatus      int
		wantCode        string
		wantChecked     int
		wantPlagiarized int
	}{
		{
			name:            "startup corpus",
			body:            DetectRequest{Submission: detect.Document{Name: "essay.txt", Content: mlText}},
			wantStatus:      http.StatusOK,
			wantChecked:     2,
			wantPlagiarized: 1,
		},
		{
			name:       "explicit empty corpus",
			body:       DetectRequest{Submission: detect.Document{Content: mlText}, References: []detect.Document{}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid threshold",
			body:       map[string]any{"submission": map[string]string{"content": mlText}, "threshold": 1.5},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_THRESHOLD",
		},
		{
			name:       "malformed body",
			body:       `{"submission":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/v1/detect", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("POST /api/v1/detect status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if got := decodeError(t, rec).Code; got != tt.wantCode {
					t.Errorf("error code = %q, want %q", got, tt.wantCode)
				}
				return
			}

			var report detect.Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("response is not a report: %v", err)
			}
			if report.Stats.TotalChecked != tt.wantChecked || len(report.Plagiarized) != tt.wantPlagiarized {
				t.Errorf("report checked=%d plagiarized=%d, want %d/%d", report.Stats.TotalChecked, len(report.Plagiarized), tt.wantChecked, tt.wantPlagiarized)
			}
			if tt.wantPlagiarized > 0 && report.Results[0].DocName != "ml.txt" {
				t.Errorf("top result = %q, want ml.txt", report.Results[0].DocName)
			}
			if tt.wantChecked == 0 && report.Stats.Similarity != nil {
				t.Errorf("empty corpus similarity stats = %+v, want nil", report.Stats.Similarity)
			}
		})
	}
}

func TestDetectBodyLimit(t *testing.T) {
	_, h := newTestServer(t, func(c *config.ServerConfig) {
		c.MaxUploadBytes = 1024
	})

	body, err := json.Marshal(DetectRequest{
		Submission: detect.Document{Name: "essay.txt", Content: strings.Repeat("kata ", 20000)},
	})
	if err != nil {
		t.Fatalf("Failed to encode body: %v", err)
	}

	tests := []struct {
		name          string
		contentLength int64
	}{
		{name: "declared length", contentLength: int64(len(body))},
		{name: "unknown length", contentLength: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/detect", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.ContentLength = tt.contentLength
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("POST /api/v1/detect status = %d, want %d (%s)", rec.Code, http.StatusRequestEntityTooLarge, rec.Body.String())
			}
			if got := decodeError(t, rec).Code; got != "UPLOAD_TOO_LARGE" {
				t.Errorf("error code = %q, want UPLOAD_TOO_LARGE", got)
			}
		})
	}
}

func multipartRequest(t *testing.T, filename, content, threshold string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = io.WriteString(part, content)
	}
	if threshold != "" {
		_ = w.WriteField("threshold", threshold)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestDetectUpload(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    string
		threshold  string
		maxBytes   int64
		wantStatus int
		wantCode   string
	}{
		{name: "text upload", filename: "essay.txt", content: mlText, wantStatus: http.StatusOK},
		{name: "custom threshold", filename: "essay.md", content: mlText, threshold: "0.99", wantStatus: http.StatusOK},
		{name: "unsupported format", filename: "essay.docx", content: mlText, wantStatus: http.StatusUnsupportedMediaType, wantCode: "UNSUPPORTED_FORMAT"},
		{name: "missing file", wantStatus: http.StatusBadRequest, wantCode: "MISSING_FILE"},
		{name: "non-numeric threshold", filename: "essay.txt", content: mlText, threshold: "high", wantStatus: http.StatusBadRequest, wantCode: "INVALID_THRESHOLD"},
		{name: "threshold out of range", filename: "essay.txt", content: mlText, threshold: "0", wantStatus: http.StatusBadRequest, wantCode: "INVALID_THRESHOLD"},
		{name: "too large", filename: "essay.txt", content: strings.Repeat("kata ", 100), maxBytes: 64, wantStatus: http.StatusRequestEntityTooLarge, wantCode: "UPLOAD_TOO_LARGE"},
		{name: "corrupt pdf", filename: "essay.pdf", content: "not a pdf", wantStatus: http.StatusUnprocessableEntity, wantCode: "UNREADABLE_DOCUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(t, func(c *config.ServerConfig) {
				if tt.maxBytes > 0 {
					c.MaxUploadBytes = tt.maxBytes
				}
			})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, multipartRequest(t, tt.filename, tt.content, tt.threshold))

			if rec.Code != tt.wantStatus {
				t.Fatalf("upload status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if got := decodeError(t, rec).Code; got != tt.wantCode {
					t.Errorf("error code = %q, want %q", got, tt.wantCode)
				}
				return
			}

			var report detect.Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("response is not a report: %v", err)
			}
			if report.Submission != tt.filename {
				t.Errorf("report.Submission = %q, want %q", report.Submission, tt.filename)
			}
			if tt.threshold == "0.99" && report.Threshold != 0.99 {
				t.Errorf("report.Threshold = %v, want 0.99", report.Threshold)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	_, h := newTestServer(t, func(c *config.ServerConfig) { c.RateLimitRPS = 1 })

	body := DetectRequest{Submission: detect.Document{Content: mlText}, References: []detect.Document{}}
	for i := 0; i < 2; i++ {
		if rec := doJSON(t, h, http.MethodPost, "/api/v1/detect", body); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200 within burst", i, rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/detect", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("error code = %q, want RATE_LIMIT_EXCEEDED", got)
	}

	// health is outside the limited group
	if rec := doJSON(t, h, http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", rec.Code)
	}
}

func TestRateLimiterPrunesIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Unix(1_000_000, 0)
	rl.now = func() time.Time { return now }
	rl.lastPrune = now

	if !rl.Allow("a") {
		t.Fatal("Allow(a) first call = false, want true")
	}
	if rl.Allow("a") {
		t.Fatal("Allow(a) second call = true, want false (burst 1)")
	}

	now = now.Add(2 * limiterIdleTTL)
	if !rl.Allow("b") {
		t.Fatal("Allow(b) = false, want true")
	}
	if _, ok := rl.clients["a"]; ok {
		t.Error("idle client a was not pruned")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)

	doJSON(t, h, http.MethodPost, "/api/v1/detect", DetectRequest{Submission: detect.Document{Content: mlText}})

	rec := doJSON(t, h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`copycheck_detections_total{outcome="plagiarized"} 1`,
		"copycheck_reference_documents 2",
		`route="/api/v1/detect"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("GET /metrics missing %q", want)
		}
	}
}

func TestStartAndShutdown(t *testing.T) {
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"

	srv, errc := StartServer(http.NotFoundHandler(), cfg)
	if err := ShutdownServer(srv, time.Second); err != nil {
		t.Fatalf("ShutdownServer() unexpected error: %v", err)
	}
	if err, ok := <-errc; ok && err != nil {
		t.Errorf("StartServer() reported %v after graceful shutdown", err)
	}
}
