package response_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdslabs/apiconsole/internal/api/response"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	response.Success(w, 200, map[string]string{"hello": "world"}, "req-1")

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	env := decode(t, w)
	data := env["data"].(map[string]any)
	assert.Equal(t, "world", data["hello"])
	assert.Nil(t, env["error"])

	meta := env["meta"].(map[string]any)
	assert.Equal(t, "req-1", meta["requestId"])
	assert.NotEmpty(t, meta["timestamp"])
}

func TestErr(t *testing.T) {
	w := httptest.NewRecorder()

	response.Err(w, 404, "NOT_FOUND", "Project not found", "req-2")

	assert.Equal(t, 404, w.Code)

	env := decode(t, w)
	assert.Nil(t, env["data"])
	apiErr := env["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", apiErr["code"])
	assert.Equal(t, "Project not found", apiErr["message"])
	assert.Nil(t, apiErr["details"])
}

func TestErrWithDetails(t *testing.T) {
	w := httptest.NewRecorder()

	details := []map[string]string{{"field": "name", "message": "name is required"}}
	response.ErrWithDetails(w, 400, "VALIDATION_ERROR", "Input validation failed", details, "req-3")

	env := decode(t, w)
	apiErr := env["error"].(map[string]any)
	assert.NotEmpty(t, apiErr["details"])
}

func TestNewMeta_GeneratesRequestID(t *testing.T) {
	meta := response.NewMeta("")

	require.NotEmpty(t, meta.RequestID)
	_, err := uuid.Parse(meta.RequestID)
	assert.NoError(t, err)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	response.NoContent(w)

	assert.Equal(t, 204, w.Code)
	assert.Empty(t, w.Body.Bytes())
}
