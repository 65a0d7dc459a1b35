package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/kitengela/studio/internal/auth"
	"github.com/kitengela/studio/internal/models"
	pkghttp "github.com/kitengela/studio/pkg/http"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// FileServiceInterface defines the interface for upload business logic
type FileServiceInterface interface {
	Upload(ctx context.Context, userID, originalName string, content io.Reader) (int64, error)
	List(ctx context.Context, userID string) ([]*models.UserFile, error)
}

// FileHandler handles file upload and listing
type FileHandler struct {
	service       FileServiceInterface
	maxUploadSize int64
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(service FileServiceInterface, maxUploadSize int64) *FileHandler {
	return &FileHandler{service: service, maxUploadSize: maxUploadSize}
}

// UploadResponse acknowledges a stored upload
type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	FileID  int64  `json:"file_id"`
}

// Upload stores the multipart field "file" for the caller
// @Router /files/upload [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			pkghttp.WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "File is too large")
			return
		}
		pkghttp.WriteBadRequest(w, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		pkghttp.WriteBadRequest(w, "No file uploaded")
		return
	}
	defer file.Close()

	id, err := h.service.Upload(r.Context(), claims.UserID, header.Filename, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, UploadResponse{
		Success: true,
		Message: "File uploaded successfully!",
		FileID:  id,
	})
}

// List returns the caller's own files
// @Router /files/list [get]
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	files, err := h.service.List(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, files)
}
