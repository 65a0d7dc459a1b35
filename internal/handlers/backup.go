package handlers

import (
	"context"
	"mime"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/kitengela/studio/internal/models"
	pkghttp "github.com/kitengela/studio/pkg/http"
)

// BackupServiceInterface defines the database backup operations
type BackupServiceInterface interface {
	CreateDatabaseBackup(ctx context.Context, actorID string) (*models.Backup, error)
	ListBackups() ([]*models.BackupFile, error)
	OpenBackup(ctx context.Context, actorID, name string) (*os.File, os.FileInfo, error)
}

// BackupHandler handles database backup endpoints
type BackupHandler struct {
	service BackupServiceInterface
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(service BackupServiceInterface) *BackupHandler {
	return &BackupHandler{service: service}
}

// BackupCreatedResponse names the dump that was written
type BackupCreatedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	File    string `json:"file"`
}

// List returns available dumps, newest first
// @Router /backup/list [get]
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListBackups()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, files)
}

// CreateDatabase runs a database dump
// @Router /backup/database [post]
func (h *BackupHandler) CreateDatabase(w http.ResponseWriter, r *http.Request) {
	backup, err := h.service.CreateDatabaseBackup(r.Context(), actorID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, BackupCreatedResponse{
		Success: true,
		Message: "Backup created successfully.",
		File:    backup.Filename,
	})
}

// Download serves a dump as an attachment
// @Router /backup/download/{name} [get]
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	f, info, err := h.service.OpenBackup(r.Context(), actorID(r), name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/sql")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
