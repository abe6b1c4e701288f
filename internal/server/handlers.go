package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chriscorrea/copycheck/internal/detect"
	"github.com/chriscorrea/copycheck/internal/source"
)

// DetectRequest is the JSON body of POST /api/v1/detect. When References is
// omitted the corpus loaded at startup is used; Threshold defaults to the
// configured value.
type DetectRequest struct {
	Submission detect.Document   `json:"submission"`
	References []detect.Document `json:"references,omitempty"`
	Threshold  *float64          `json:"threshold,omitempty"`
}

// Health reports liveness and the size of the loaded corpus.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"references": len(s.references),
	})
}

// Detect handles POST /api/v1/detect.
func (s *Server) Detect(c *gin.Context) {
	if !s.limitBody(c) {
		return
	}

	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.abortTooLarge(c)
			return
		}
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if req.Submission.Name == "" {
		req.Submission.Name = "submission"
	}

	references := s.references
	if req.References != nil {
		references = req.References
	}

	threshold := s.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	s.runDetection(c, req.Submission, references, threshold)
}

// DetectUpload handles POST /api/v1/detect/upload, a multipart form with a
// `file` part and an optional `threshold` field, against the loaded corpus.
func (s *Server) DetectUpload(c *gin.Context) {
	if !s.limitBody(c) {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.abortTooLarge(c)
			return
		}
		abortWithError(c, http.StatusBadRequest, "MISSING_FILE", "Multipart field 'file' is required")
		return
	}

	threshold := s.threshold
	if raw := strings.TrimSpace(c.PostForm("threshold")); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "INVALID_THRESHOLD", "Threshold must be a number")
			return
		}
	}
	// validate before spending time on decoding
	if err := detect.ValidateThreshold(threshold); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_THRESHOLD", err.Error())
		return
	}

	f, err := header.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_UPLOAD", "Could not read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_UPLOAD", "Could not read uploaded file")
		return
	}

	doc, err := source.FromBytes(header.Filename, data, s.sourceOpts)
	if err != nil {
		if errors.Is(err, source.ErrUnsupportedFormat) {
			abortWithError(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", err.Error())
			return
		}
		slog.Warn("Failed to decode upload", "file", header.Filename, "error", err)
		abortWithError(c, http.StatusUnprocessableEntity, "UNREADABLE_DOCUMENT", err.Error())
		return
	}

	s.runDetection(c, doc, s.references, threshold)
}

func (s *Server) runDetection(c *gin.Context, submission detect.Document, references []detect.Document, threshold float64) {
	ctx := c.Request.Context()
	if err := s.sem.Acquire(ctx, 1); err != nil {
		abortWithError(c, http.StatusServiceUnavailable, "CANCELLED", "Request cancelled while waiting for a worker")
		return
	}
	defer s.sem.Release(1)

	start := time.Now()
	report, err := s.detector.Detect(submission, references, threshold)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.metrics.ObserveDetection(elapsed, 0, err)
		if errors.Is(err, detect.ErrInvalidThreshold) {
			abortWithError(c, http.StatusBadRequest, "INVALID_THRESHOLD", err.Error())
			return
		}
		slog.Error("Detection failed", "submission", submission.Name, "error", err)
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Detection failed")
		return
	}
	s.metrics.ObserveDetection(elapsed, len(report.Plagiarized), nil)

	c.JSON(http.StatusOK, report)
}

// limitBody rejects requests whose declared length exceeds MaxUploadBytes and
// caps the body of the rest. It reports whether the request may proceed.
func (s *Server) limitBody(c *gin.Context) bool {
	if c.Request.ContentLength > s.cfg.MaxUploadBytes {
		s.abortTooLarge(c)
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	return true
}

func (s *Server) abortTooLarge(c *gin.Context) {
	abortWithError(c, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
		fmt.Sprintf("Request body exceeds %d bytes", s.cfg.MaxUploadBytes))
}
