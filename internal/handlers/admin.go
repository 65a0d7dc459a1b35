package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kitengela/studio/internal/auth"
	"github.com/kitengela/studio/internal/models"
	pkghttp "github.com/kitengela/studio/pkg/http"
)

// AdminServiceInterface defines the admin console operations
type AdminServiceInterface interface {
	ListUsers(ctx context.Context, actorID string) ([]*models.PublicUser, error)
	ApproveUser(ctx context.Context, actorID, targetID string) error
	DeleteUser(ctx context.Context, actorID, targetID string) error
	ListFiles(ctx context.Context, actorID string) ([]*models.AdminFile, error)
	ApproveFile(ctx context.Context, actorID, fileID string) error
	DeleteFile(ctx context.Context, actorID, fileID string) error
	RecentLogs(ctx context.Context, actorID string) ([]*models.ActivityLog, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// AdminHandler handles admin-only HTTP endpoints
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

func actorID(r *http.Request) string {
	if claims := auth.GetUserFromContext(r); claims != nil {
		return claims.UserID
	}
	return ""
}

// ListUsers returns all accounts except the caller's
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context(), actorID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, users)
}

// ApproveUser approves a pending account
// @Router /admin/users/approve/{id} [put]
func (h *AdminHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ApproveUser(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "User approved successfully!"})
}

// DeleteUser removes an account
// @Router /admin/users/delete/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "User deleted successfully!"})
}

// ListFiles returns every uploaded file with its uploader
// @Router /admin/files [get]
func (h *AdminHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListFiles(r.Context(), actorID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, files)
}

// ApproveFile marks a file approved
// @Router /admin/files/approve/{id} [patch]
func (h *AdminHandler) ApproveFile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ApproveFile(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "File approved successfully!"})
}

// DeleteFile removes a file
// @Router /admin/files/delete/{id} [delete]
func (h *AdminHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteFile(r.Context(), actorID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "File deleted successfully!"})
}

// Logs returns the most recent activity log entries
// @Router /admin/logs [get]
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.RecentLogs(r.Context(), actorID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, logs)
}

// Stats returns user, file and backup counts
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, stats)
}
