package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kiranshivaraju/feedlens/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	got [][]string
}

func (s *stubAnalyzer) Analyze(_ context.Context, feedbacks []string) models.AnalysisSummary {
	s.got = append(s.got, feedbacks)
	return models.AnalysisSummary{
		Total:       len(feedbacks),
		Neutral:     len(feedbacks),
		TopIssues:   []models.IssueTally{},
		Suggestions: []string{},
		Feedbacks:   []models.FeedbackRecord{},
	}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	fw, err := mpw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mpw.Close())
	return &buf, mpw.FormDataContentType()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", body)
	return errObj
}

func TestAnalyzeHandler_PassesSingleFeedback(t *testing.T) {
	svc := &stubAnalyzer{}
	h := NewAnalyzeHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"feedback":"  fine  "}`))
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.got, 1)
	assert.Equal(t, []string{"  fine  "}, svc.got[0])
}

func TestAnalyzeHandler_InvalidJSON(t *testing.T) {
	svc := &stubAnalyzer{}
	h := NewAnalyzeHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"feedback":`))
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, w)["code"])
	assert.Empty(t, svc.got)
}

func TestUploadHandler_ExtractsDetectedColumn(t *testing.T) {
	svc := &stubAnalyzer{}
	h := NewUploadHandler(svc, 1<<20)

	body, ct := multipartBody(t, "file", "export.CSV", "rating,comments\n5,Loved it\n1,\n2,  Too slow \n")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.got, 1)
	assert.Equal(t, []string{"Loved it", "  Too slow "}, svc.got[0])

	var resp struct {
		Data struct {
			DetectedColumn string `json:"detectedColumn"`
			Total          int    `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "comments", resp.Data.DetectedColumn)
	assert.Equal(t, 2, resp.Data.Total)
}

func TestUploadHandler_WrongField(t *testing.T) {
	h := NewUploadHandler(&stubAnalyzer{}, 1<<20)

	body, ct := multipartBody(t, "attachment", "a.csv", "feedback\nok\n")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FILE_REQUIRED", decodeError(t, w)["code"])
}

func TestUploadHandler_TooLarge(t *testing.T) {
	svc := &stubAnalyzer{}
	h := NewUploadHandler(svc, 256)

	body, ct := multipartBody(t, "file", "big.csv", "feedback\n"+strings.Repeat("x", 4096)+"\n")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	errObj := decodeError(t, w)
	assert.Equal(t, "FILE_TOO_LARGE", errObj["code"])
	assert.Equal(t, float64(256), errObj["details"].(map[string]any)["max_bytes"])
	assert.Empty(t, svc.got)
}

func TestWriteInputError_Unknown(t *testing.T) {
	w := httptest.NewRecorder()
	writeInputError(w, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w)["code"])
}
