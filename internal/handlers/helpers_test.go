package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kitengela/studio/internal/auth"
	"github.com/kitengela/studio/internal/models"
	pkghttp "github.com/kitengela/studio/pkg/http"
	"github.com/stretchr/testify/require"
)

// mockAuthService implements handlers.AuthServiceInterface for testing
type mockAuthService struct {
	RegisterFunc func(ctx context.Context, fullName, email, password string) (*models.PublicUser, error)
	LoginFunc    func(ctx context.Context, email, password string) (*models.LoginResult, error)
	MeFunc       func(ctx context.Context, userID string) (*models.PublicUser, error)
}

func (m *mockAuthService) Register(ctx context.Context, fullName, email, password string) (*models.PublicUser, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, fullName, email, password)
	}
	return &models.PublicUser{ID: "user-1", FullName: fullName, Email: email}, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *mockAuthService) Me(ctx context.Context, userID string) (*models.PublicUser, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

// mockFileService implements handlers.FileServiceInterface for testing
type mockFileService struct {
	UploadFunc func(ctx context.Context, userID, originalName string, content io.Reader) (int64, error)
	ListFunc   func(ctx context.Context, userID string) ([]*models.UserFile, error)
}

func (m *mockFileService) Upload(ctx context.Context, userID, originalName string, content io.Reader) (int64, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, userID, originalName, content)
	}
	return 1, nil
}

func (m *mockFileService) List(ctx context.Context, userID string) ([]*models.UserFile, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return []*models.UserFile{}, nil
}

// mockAdminService implements handlers.AdminServiceInterface for testing
type mockAdminService struct {
	ListUsersFunc   func(ctx context.Context, actorID string) ([]*models.PublicUser, error)
	ApproveUserFunc func(ctx context.Context, actorID, targetID string) error
	DeleteUserFunc  func(ctx context.Context, actorID, targetID string) error
	ListFilesFunc   func(ctx context.Context, actorID string) ([]*models.AdminFile, error)
	ApproveFileFunc func(ctx context.Context, actorID, fileID string) error
	DeleteFileFunc  func(ctx context.Context, actorID, fileID string) error
	RecentLogsFunc  func(ctx context.Context, actorID string) ([]*models.ActivityLog, error)
	StatsFunc       func(ctx context.Context) (*models.Stats, error)
}

func (m *mockAdminService) ListUsers(ctx context.Context, actorID string) ([]*models.PublicUser, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, actorID)
	}
	return []*models.PublicUser{}, nil
}

func (m *mockAdminService) ApproveUser(ctx context.Context, actorID, targetID string) error {
	if m.ApproveUserFunc != nil {
		return m.ApproveUserFunc(ctx, actorID, targetID)
	}
	return nil
}

func (m *mockAdminService) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, actorID, targetID)
	}
	return nil
}

func (m *mockAdminService) ListFiles(ctx context.Context, actorID string) ([]*models.AdminFile, error) {
	if m.ListFilesFunc != nil {
		return m.ListFilesFunc(ctx, actorID)
	}
	return []*models.AdminFile{}, nil
}

func (m *mockAdminService) ApproveFile(ctx context.Context, actorID, fileID string) error {
	if m.ApproveFileFunc != nil {
		return m.ApproveFileFunc(ctx, actorID, fileID)
	}
	return nil
}

func (m *mockAdminService) DeleteFile(ctx context.Context, actorID, fileID string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, actorID, fileID)
	}
	return nil
}

func (m *mockAdminService) RecentLogs(ctx context.Context, actorID string) ([]*models.ActivityLog, error) {
	if m.RecentLogsFunc != nil {
		return m.RecentLogsFunc(ctx, actorID)
	}
	return []*models.ActivityLog{}, nil
}

func (m *mockAdminService) Stats(ctx context.Context) (*models.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.Stats{}, nil
}

// mockBackupService implements handlers.BackupServiceInterface for testing
type mockBackupService struct {
	CreateFunc func(ctx context.Context, actorID string) (*models.Backup, error)
	ListFunc   func() ([]*models.BackupFile, error)
	OpenFunc   func(ctx context.Context, actorID, name string) (*os.File, os.FileInfo, error)
}

func (m *mockBackupService) CreateDatabaseBackup(ctx context.Context, actorID string) (*models.Backup, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actorID)
	}
	return &models.Backup{Filename: "backup-1.sql"}, nil
}

func (m *mockBackupService) ListBackups() ([]*models.BackupFile, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return []*models.BackupFile{}, nil
}

func (m *mockBackupService) OpenBackup(ctx context.Context, actorID, name string) (*os.File, os.FileInfo, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, actorID, name)
	}
	return nil, nil, models.ErrNotFound
}

// withClaims attaches token claims as RequireAuthenticated would
func withClaims(req *http.Request, userID string, admin bool) *http.Request {
	claims := &models.TokenClaims{UserID: userID, Email: userID + "@example.com", IsAdmin: admin, Approved: true}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

// withURLParam sets a chi route parameter on req
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkghttp.ErrorResponse {
	t.Helper()
	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
