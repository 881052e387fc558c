package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadStoresFileAndReturnsReference(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, "file", "notes.txt", []byte("hello"))
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code, rec.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.FileURL, "/uploads/"), resp.FileURL)
	assert.True(t, strings.HasSuffix(resp.FileURL, "-notes.txt"), resp.FileURL)

	// The blob actually landed on disk under the returned name.
	data, err := os.ReadFile(filepath.Join(env.uploadDir, strings.TrimPrefix(resp.FileURL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestUploadWithoutFileIsBadRequest(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestUploadOverSizeLimitIsRejected(t *testing.T) {
	env := newTestEnv(t)

	// Test env caps uploads at 1 MiB.
	body, contentType := multipartBody(t, "file", "big.bin", bytes.Repeat([]byte{0xA5}, 2<<20))
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, 413, rec.Code)
}

func TestUploadedFileIsServedStatically(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, "file", "pic.txt", []byte("payload"))
	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	getReq := httptest.NewRequest("GET", resp.FileURL, nil)
	getRec := httptest.NewRecorder()
	env.handler.ServeHTTP(getRec, getReq)

	require.Equal(t, 200, getRec.Code)
	assert.Equal(t, "payload", getRec.Body.String())
}
