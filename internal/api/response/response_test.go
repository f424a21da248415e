package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/feedlens/internal/api/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDataEnvelopes(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, any)
		status int
	}{
		{"ok", response.JSON, http.StatusOK},
		{"created", response.Created, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, map[string]int{"total": 3})

			require.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, map[string]any{"total": float64(3)}, body["data"])
			assert.NotContains(t, body, "meta")
		})
	}
}

func TestCollection_Meta(t *testing.T) {
	w := httptest.NewRecorder()
	response.Collection(w, []string{"k1", "k2"}, response.PaginationMeta{Page: 2, Limit: 2, Total: 5, HasNext: true})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{"k1", "k2"}, body["data"])
	assert.Equal(t, map[string]any{
		"page":     float64(2),
		"limit":    float64(2),
		"total":    float64(5),
		"has_next": true,
	}, body["meta"])
}

func TestCollection_EmptySliceIsArray(t *testing.T) {
	w := httptest.NewRecorder()
	response.Collection(w, []string{}, response.PaginationMeta{Page: 1, Limit: 20})

	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	response.NoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
	assert.Empty(t, w.Header().Get("Content-Type"))
}

func TestError(t *testing.T) {
	tests := []struct {
		name        string
		details     any
		wantDetails bool
	}{
		{"with details", map[string]int{"max_bytes": 1024}, true},
		{"without details", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the upload limit", tt.details)

			require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
			body := decode(t, w)
			assert.NotContains(t, body, "data")

			errObj, ok := body["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "FILE_TOO_LARGE", errObj["code"])
			assert.Equal(t, "File exceeds the upload limit", errObj["message"])
			if tt.wantDetails {
				assert.Equal(t, map[string]any{"max_bytes": float64(1024)}, errObj["details"])
			} else {
				assert.NotContains(t, errObj, "details")
			}
		})
	}
}
