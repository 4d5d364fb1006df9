package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name string `json:"name"`
}

func readSample(body, contentType string) (*httptest.ResponseRecorder, bool, samplePayload) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	var v samplePayload
	ok := ReadJSON(rec, req, &v)
	return rec, ok, v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestReadJSON(t *testing.T) {
	rec, ok, v := readSample(`{"name":"ana"}`, "application/json")
	assert.True(t, ok)
	assert.Equal(t, "ana", v.Name)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadJSONContentTypeWithCharset(t *testing.T) {
	_, ok, v := readSample(`{"name":"ana"}`, "application/json; charset=utf-8")
	assert.True(t, ok)
	assert.Equal(t, "ana", v.Name)
}

func TestReadJSONWrongContentType(t *testing.T) {
	rec, ok, _ := readSample(`{"name":"ana"}`, "text/plain")
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, string(ErrUnsupportedMedia), errorCode(t, rec))
}

func TestReadJSONUnknownField(t *testing.T) {
	rec, ok, _ := readSample(`{"name":"ana","extra":1}`, "application/json")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(ErrInvalidJSON), errorCode(t, rec))
}

func TestReadJSONTrailingData(t *testing.T) {
	rec, ok, _ := readSample(`{"name":"ana"}{"name":"bob"}`, "application/json")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(ErrInvalidJSON), errorCode(t, rec))
}

func TestReadJSONGarbage(t *testing.T) {
	rec, ok, _ := readSample(`not json at all`, "application/json")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteSSEFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	flusher, err := SSEWriter(rec)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	require.NoError(t, WriteSSE(rec, flusher, "tick", map[string]string{"A1": "00:00:59"}))

	assert.Equal(t, "event: tick\ndata: {\"A1\":\"00:00:59\"}\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}
