package background

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kitengela/studio/internal/models"
)

const auditWriteTimeout = 5 * time.Second

// ActivityWriter persists one activity log entry
type ActivityWriter interface {
	Create(ctx context.Context, log *models.ActivityLog) error
}

// AuditDispatcher moves activity log writes off the request path. Entries go
// into a bounded queue drained by a single goroutine; when the queue is full
// new entries are dropped.
type AuditDispatcher struct {
	writer  ActivityWriter
	logger  *slog.Logger
	queue   chan *models.ActivityLog
	done    chan struct{}
	dropped atomic.Int64

	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
}

// NewAuditDispatcher creates a dispatcher with room for size pending entries
func NewAuditDispatcher(writer ActivityWriter, logger *slog.Logger, size int) *AuditDispatcher {
	if size <= 0 {
		size = 1
	}
	return &AuditDispatcher{
		writer: writer,
		logger: logger,
		queue:  make(chan *models.ActivityLog, size),
		done:   make(chan struct{}),
	}
}

// Start launches the drain goroutine. Calling it more than once has no effect.
func (d *AuditDispatcher) Start() {
	d.startOnce.Do(func() {
		go d.run()
	})
}

// Enqueue hands entry to the drain goroutine without blocking. It returns
// false when the queue is full or the dispatcher has been stopped.
func (d *AuditDispatcher) Enqueue(entry *models.ActivityLog) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return false
	}

	select {
	case d.queue <- entry:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("audit queue full, dropping entry",
			slog.String("action", entry.Action),
			slog.String("status", entry.Status),
		)
		return false
	}
}

// Dropped returns how many entries were discarded so far.
func (d *AuditDispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Pending returns the number of queued entries.
func (d *AuditDispatcher) Pending() int {
	return len(d.queue)
}

// Stop refuses new entries and waits until queued ones are written or ctx
// expires. Start must have been called.
func (d *AuditDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		d.logger.Info("audit dispatcher stopped", slog.Int64("dropped", d.Dropped()))
		return nil
	case <-ctx.Done():
		d.logger.Warn("audit dispatcher stop timed out", slog.Int("pending", d.Pending()))
		return ctx.Err()
	}
}

func (d *AuditDispatcher) run() {
	defer close(d.done)

	for entry := range d.queue {
		d.write(entry)
	}
}

func (d *AuditDispatcher) write(entry *models.ActivityLog) {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := d.writer.Create(ctx, entry); err != nil {
		d.logger.Error("failed to persist activity log",
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
	}
}
