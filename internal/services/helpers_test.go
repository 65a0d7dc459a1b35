package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/kitengela/studio/internal/auth"
	"github.com/kitengela/studio/internal/models"
	pkgauth "github.com/kitengela/studio/pkg/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	CreateFunc     func(ctx context.Context, user *models.User) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	ListExceptFunc func(ctx context.Context, excludeID string) ([]*models.User, error)
	ApproveFunc    func(ctx context.Context, id string) (bool, error)
	DeleteFunc     func(ctx context.Context, id string) error
	SeedAdminFunc  func(ctx context.Context, user *models.User) (bool, error)
	CountFunc      func(ctx context.Context) (int64, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) ListExcept(ctx context.Context, excludeID string) ([]*models.User, error) {
	if m.ListExceptFunc != nil {
		return m.ListExceptFunc(ctx, excludeID)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Approve(ctx context.Context, id string) (bool, error) {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, id)
	}
	return true, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) SeedAdmin(ctx context.Context, user *models.User) (bool, error) {
	if m.SeedAdminFunc != nil {
		return m.SeedAdminFunc(ctx, user)
	}
	return true, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// MockFileRepository implements FileRepository and AdminFileRepository for testing
type MockFileRepository struct {
	CreateFunc     func(ctx context.Context, file *models.File) (int64, error)
	ListByUserFunc func(ctx context.Context, userID string) ([]*models.UserFile, error)
	ListAllFunc    func(ctx context.Context) ([]*models.AdminFile, error)
	ApproveFunc    func(ctx context.Context, id int64) error
	DeleteFunc     func(ctx context.Context, id int64) (string, error)
	CountFunc      func(ctx context.Context) (int64, error)
}

func (m *MockFileRepository) Create(ctx context.Context, file *models.File) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, file)
	}
	return 1, nil
}

func (m *MockFileRepository) ListByUser(ctx context.Context, userID string) ([]*models.UserFile, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.UserFile{}, nil
}

func (m *MockFileRepository) ListAll(ctx context.Context) ([]*models.AdminFile, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []*models.AdminFile{}, nil
}

func (m *MockFileRepository) Approve(ctx context.Context, id int64) error {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, id)
	}
	return nil
}

func (m *MockFileRepository) Delete(ctx context.Context, id int64) (string, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return "", nil
}

func (m *MockFileRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// MockActivityLogReader implements ActivityLogReader for testing
type MockActivityLogReader struct {
	ListRecentFunc func(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

func (m *MockActivityLogReader) ListRecent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return []*models.ActivityLog{}, nil
}

// MockBackupRepository implements BackupRepository and BackupCounter for testing
type MockBackupRepository struct {
	mu        sync.Mutex
	created   []*models.Backup
	completed map[int64]int64
	failed    []int64

	CreateFunc func(ctx context.Context, b *models.Backup) error
	CountFunc  func(ctx context.Context) (int64, error)
}

func (m *MockBackupRepository) Create(ctx context.Context, b *models.Backup) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, b)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = int64(len(m.created) + 1)
	b.Status = models.BackupStatusInProgress
	m.created = append(m.created, b)
	return nil
}

func (m *MockBackupRepository) MarkCompleted(ctx context.Context, id int64, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.completed == nil {
		m.completed = make(map[int64]int64)
	}
	m.completed[id] = size
	return nil
}

func (m *MockBackupRepository) MarkFailed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, id)
	return nil
}

func (m *MockBackupRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// MockAuditQueue records enqueued entries
type MockAuditQueue struct {
	mu      sync.Mutex
	entries []*models.ActivityLog
	Full    bool
}

func (m *MockAuditQueue) Enqueue(entry *models.ActivityLog) bool {
	if m.Full {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return true
}

func (m *MockAuditQueue) Entries() []*models.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ActivityLog(nil), m.entries...)
}

// Last returns the most recent entry or nil.
func (m *MockAuditQueue) Last() *models.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return nil
	}
	return m.entries[len(m.entries)-1]
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	NotifyApprovedFunc func(ctx context.Context, user *models.User) error
	notified           []*models.User
}

func (m *MockNotifier) NotifyApproved(ctx context.Context, user *models.User) error {
	m.notified = append(m.notified, user)
	if m.NotifyApprovedFunc != nil {
		return m.NotifyApprovedFunc(ctx, user)
	}
	return nil
}

// MockCommandRunner implements CommandRunner for testing
type MockCommandRunner struct {
	RunFunc func(ctx context.Context, name string, args, env []string, stdout, stderr io.Writer) error

	Name string
	Args []string
	Env  []string
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args, env []string, stdout, stderr io.Writer) error {
	m.Name = name
	m.Args = args
	m.Env = env
	if m.RunFunc != nil {
		return m.RunFunc(ctx, name, args, env, stdout, stderr)
	}
	return nil
}

// MockOffsiteUploader implements OffsiteUploader for testing
type MockOffsiteUploader struct {
	UploadFunc func(ctx context.Context, key, path string) error
	Keys       []string
}

func (m *MockOffsiteUploader) Upload(ctx context.Context, key, path string) error {
	m.Keys = append(m.Keys, key)
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, key, path)
	}
	return nil
}

// mockSES implements sesSender for testing
type mockSES struct {
	input *ses.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	id := "msg-1"
	return &ses.SendEmailOutput{MessageId: &id}, nil
}

const testSecret = "test-secret-32-characters-long!!"

func newTestAuthService(repo UserRepository, queue *MockAuditQueue) (*AuthService, *auth.TokenManager, *pkgauth.Hasher) {
	tm := auth.NewTokenManager(testSecret, 5*time.Hour)
	hasher := pkgauth.NewHasher(4)
	svc := NewAuthService(repo, tm, hasher, NewAuditService(queue, discardLogger()), discardLogger())
	return svc, tm, hasher
}
