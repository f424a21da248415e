package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/feedlens/internal/analysis"
	"github.com/kiranshivaraju/feedlens/internal/api/response"
	"github.com/kiranshivaraju/feedlens/internal/ingest"
	"github.com/kiranshivaraju/feedlens/internal/metrics"
	"github.com/kiranshivaraju/feedlens/pkg/models"
)

// Analyzer defines the interface the feedback handlers depend on.
type Analyzer interface {
	Analyze(ctx context.Context, feedbacks []string) models.AnalysisSummary
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/feedback/analyze.
// The body carries a single feedback text.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Feedback string `json:"feedback"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.Feedback) == "" {
			writeInputError(w, analysis.ErrEmptyFeedback)
			return
		}

		response.JSON(w, svc.Analyze(r.Context(), []string{req.Feedback}))
	}
}

type uploadResponse struct {
	DetectedColumn string `json:"detectedColumn"`
	models.AnalysisSummary
}

// NewUploadHandler returns an http.HandlerFunc for POST /api/v1/feedback/upload.
// The multipart field "file" holds a CSV or spreadsheet; the feedback column
// is detected and every non-empty value in it is analyzed.
func NewUploadHandler(svc Analyzer, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
					"Uploaded file exceeds the size limit", map[string]any{"max_bytes": maxBytes})
				return
			}
			response.Error(w, http.StatusBadRequest, "FILE_REQUIRED", "No file uploaded", nil)
			return
		}
		defer file.Close()

		if !ingest.Supported(header.Filename) {
			response.Error(w, http.StatusBadRequest, "UNSUPPORTED_FILE",
				"File must be .csv, .xlsx, .xlsm or .xltx", nil)
			return
		}

		ds, err := ingest.Parse(header.Filename, file)
		if err != nil {
			slog.Warn("upload parse failed", "filename", header.Filename, "error", err)
			response.Error(w, http.StatusBadRequest, "INVALID_FILE", "Failed to process file", nil)
			return
		}
		metrics.UploadRows.Observe(float64(ds.Len()))

		column, err := analysis.DetectColumn(ds)
		if err != nil {
			writeInputError(w, err)
			return
		}

		feedbacks := analysis.ExtractFeedbacks(ds, column)
		if len(feedbacks) == 0 {
			writeInputError(w, analysis.ErrNoFeedbacks)
			return
		}

		slog.Info("upload parsed",
			"filename", header.Filename,
			"rows", ds.Len(),
			"column", column,
			"feedbacks", len(feedbacks),
		)

		response.JSON(w, uploadResponse{
			DetectedColumn:  column,
			AnalysisSummary: svc.Analyze(r.Context(), feedbacks),
		})
	}
}

// writeInputError maps analysis input errors to their 400 responses.
func writeInputError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrEmptyFeedback):
		response.Error(w, http.StatusBadRequest, "FEEDBACK_REQUIRED", "Feedback text is required", nil)
	case errors.Is(err, analysis.ErrNoData):
		response.Error(w, http.StatusBadRequest, "FILE_EMPTY", "File is empty", nil)
	case errors.Is(err, analysis.ErrNoColumn):
		response.Error(w, http.StatusBadRequest, "COLUMN_NOT_DETECTED", "Could not detect feedback column", nil)
	case errors.Is(err, analysis.ErrNoFeedbacks):
		response.Error(w, http.StatusBadRequest, "NO_FEEDBACK_FOUND", "No valid feedbacks found", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}
