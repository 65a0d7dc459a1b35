package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kitengela/studio/internal/handlers"
	"github.com/kitengela/studio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload_Success_Returns201(t *testing.T) {
	var gotUser, gotName string
	var gotContent []byte
	h := handlers.NewFileHandler(&mockFileService{
		UploadFunc: func(ctx context.Context, userID, originalName string, content io.Reader) (int64, error) {
			gotUser, gotName = userID, originalName
			gotContent, _ = io.ReadAll(content)
			return 42, nil
		},
	}, 1<<20)

	req := withClaims(multipartRequest(t, "file", "mix.wav", []byte("RIFF....")), "user-1", false)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "mix.wav", gotName)
	assert.Equal(t, []byte("RIFF...."), gotContent)

	var resp handlers.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(42), resp.FileID)
}

func TestUpload_WrongField_Returns400(t *testing.T) {
	h := handlers.NewFileHandler(&mockFileService{
		UploadFunc: func(ctx context.Context, userID, originalName string, content io.Reader) (int64, error) {
			t.Fatal("service must not be called")
			return 0, nil
		},
	}, 1<<20)

	req := withClaims(multipartRequest(t, "attachment", "mix.wav", []byte("x")), "user-1", false)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decodeError(t, w).Message)
}

func TestUpload_NotMultipart_Returns400(t *testing.T) {
	h := handlers.NewFileHandler(&mockFileService{}, 1<<20)

	req := httptest.NewRequest("POST", "/api/files/upload", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Upload(w, withClaims(req, "user-1", false))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_TooLarge_Returns413(t *testing.T) {
	h := handlers.NewFileHandler(&mockFileService{}, 1024)

	req := withClaims(multipartRequest(t, "file", "big.bin", bytes.Repeat([]byte("a"), 4096)), "user-1", false)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "payload_too_large", decodeError(t, w).Error)
}

func TestUpload_ServiceValidationError_Returns400(t *testing.T) {
	h := handlers.NewFileHandler(&mockFileService{
		UploadFunc: func(ctx context.Context, userID, originalName string, content io.Reader) (int64, error) {
			return 0, fmt.Errorf("%w: No file uploaded", models.ErrValidation)
		},
	}, 1<<20)

	req := withClaims(multipartRequest(t, "file", "x.txt", []byte("x")), "user-1", false)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded", decodeError(t, w).Message)
}

func TestListFiles_ReturnsCallerFiles(t *testing.T) {
	h := handlers.NewFileHandler(&mockFileService{
		ListFunc: func(ctx context.Context, userID string) ([]*models.UserFile, error) {
			require.Equal(t, "user-1", userID)
			return []*models.UserFile{
				{Filename: "b.wav", Status: models.FileStatusPending, CreatedAt: time.Now()},
				{Filename: "a.wav", Status: models.FileStatusApproved, CreatedAt: time.Now().Add(-time.Hour)},
			}, nil
		},
	}, 1<<20)

	req := withClaims(httptest.NewRequest("GET", "/api/files/list", nil), "user-1", false)
	w := httptest.NewRecorder()
	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var files []models.UserFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
	require.Len(t, files, 2)
	assert.Equal(t, "b.wav", files[0].Filename)
}
