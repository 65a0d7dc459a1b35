package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kitengela/studio/internal/handlers"
	"github.com/kitengela/studio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers_PassesActorAndReturnsList(t *testing.T) {
	h := handlers.NewAdminHandler(&mockAdminService{
		ListUsersFunc: func(ctx context.Context, actorID string) ([]*models.PublicUser, error) {
			require.Equal(t, "admin-1", actorID)
			return []*models.PublicUser{{ID: "user-2", Email: "b@example.com"}}, nil
		},
	})

	req := withClaims(httptest.NewRequest("GET", "/api/admin/users", nil), "admin-1", true)
	w := httptest.NewRecorder()
	h.ListUsers(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var users []models.PublicUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "user-2", users[0].ID)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestApproveUser(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"approved", nil, http.StatusOK},
		{"unknown user", fmt.Errorf("%w: User not found.", models.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTarget string
			h := handlers.NewAdminHandler(&mockAdminService{
				ApproveUserFunc: func(ctx context.Context, actorID, targetID string) error {
					gotTarget = targetID
					return tt.err
				},
			})

			req := withClaims(httptest.NewRequest("PUT", "/api/admin/users/approve/user-2", nil), "admin-1", true)
			req = withURLParam(req, "id", "user-2")
			w := httptest.NewRecorder()
			h.ApproveUser(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "user-2", gotTarget)
		})
	}
}

func TestDeleteUser_Self_Returns400(t *testing.T) {
	h := handlers.NewAdminHandler(&mockAdminService{
		DeleteUserFunc: func(ctx context.Context, actorID, targetID string) error {
			if actorID == targetID {
				return fmt.Errorf("%w: You cannot delete your own account.", models.ErrValidation)
			}
			return nil
		},
	})

	req := withClaims(httptest.NewRequest("DELETE", "/api/admin/users/delete/admin-1", nil), "admin-1", true)
	req = withURLParam(req, "id", "admin-1")
	w := httptest.NewRecorder()
	h.DeleteUser(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot delete your own account.", decodeError(t, w).Message)
}

func TestDeleteUser_Success(t *testing.T) {
	h := handlers.NewAdminHandler(&mockAdminService{})

	req := withClaims(httptest.NewRequest("DELETE", "/api/admin/users/delete/user-2", nil), "admin-1", true)
	req = withURLParam(req, "id", "user-2")
	w := httptest.NewRecorder()
	h.DeleteUser(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handlers.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "User deleted successfully!", resp.Message)
}

func TestApproveFile_NotFound(t *testing.T) {
	h := handlers.NewAdminHandler(&mockAdminService{
		ApproveFileFunc: func(ctx context.Context, actorID, fileID string) error {
			assert.Equal(t, "999", fileID)
			return fmt.Errorf("%w: File not found.", models.ErrNotFound)
		},
	})

	req := withClaims(httptest.NewRequest("PATCH", "/api/admin/files/approve/999", nil), "admin-1", true)
	req = withURLParam(req, "id", "999")
	w := httptest.NewRecorder()
	h.ApproveFile(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "not_found", resp.Error)
	assert.Equal(t, "File not found.", resp.Message)
}

func TestDeleteFile_Success(t *testing.T) {
	var gotID string
	h := handlers.NewAdminHandler(&mockAdminService{
		DeleteFileFunc: func(ctx context.Context, actorID, fileID string) error {
			gotID = fileID
			return nil
		},
	})

	req := withClaims(httptest.NewRequest("DELETE", "/api/admin/files/delete/7", nil), "admin-1", true)
	req = withURLParam(req, "id", "7")
	w := httptest.NewRecorder()
	h.DeleteFile(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", gotID)
}

func TestListFiles_IncludesOrphans(t *testing.T) {
	h := handlers.NewAdminHandler(&mockAdminService{
		ListFilesFunc: func(ctx context.Context, actorID string) ([]*models.AdminFile, error) {
			name := "Jane"
			return []*models.AdminFile{
				{ID: 2, Filename: "b.wav", Status: models.FileStatusPending, UploadDate: time.Now(), UploadedBy: &name},
				{ID: 1, Filename: "a.wav", Status: models.FileStatusApproved, UploadDate: time.Now()},
			}, nil
		},
	})

	req := withClaims(httptest.NewRequest("GET", "/api/admin/files", nil), "admin-1", true)
	w := httptest.NewRecorder()
	h.ListFiles(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "Jane", raw[0]["uploaded_by"])
	assert.Nil(t, raw[1]["uploaded_by"])
}

func TestLogs_ServiceFailure_Returns500(t *testing.T) {
	h := handlers.NewAdminHandler(&mockAdminService{
		RecentLogsFunc: func(ctx context.Context, actorID string) ([]*models.ActivityLog, error) {
			return nil, fmt.Errorf("list activity logs: %w", context.Canceled)
		},
	})

	req := withClaims(httptest.NewRequest("GET", "/api/admin/logs", nil), "admin-1", true)
	w := httptest.NewRecorder()
	h.Logs(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "context canceled")
}

func TestStats(t *testing.T) {
	h := handlers.NewAdminHandler(&mockAdminService{
		StatsFunc: func(ctx context.Context) (*models.Stats, error) {
			return &models.Stats{Users: 3, Files: 5, Backups: 1}, nil
		},
	})

	req := withClaims(httptest.NewRequest("GET", "/api/admin/stats", nil), "admin-1", true)
	w := httptest.NewRecorder()
	h.Stats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"users":3,"files":5,"backups":1}`, w.Body.String())
}
