package background

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/kitengela/studio/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockWriter struct {
	mu      sync.Mutex
	entries []*models.ActivityLog
	block   chan struct{}
	err     error
}

func (m *mockWriter) Create(ctx context.Context, log *models.ActivityLog) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, log)
	return m.err
}

func (m *mockWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type mockPruner struct {
	mu    sync.Mutex
	calls []int
	rows  int64
	err   error
}

func (m *mockPruner) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, days)
	return m.rows, m.err
}

func (m *mockPruner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
