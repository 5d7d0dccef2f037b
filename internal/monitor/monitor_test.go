package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/wwwzy/RagAgent/internal/storage"
)

func openTestStorage(t *testing.T, ctx context.Context) *storage.Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "ragagent-test.db")
	store, err := storage.Open(ctx, storage.Config{Path: dbPath, EnableWAL: true})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedAuditRecords(t *testing.T, ctx context.Context, store *storage.Storage, n int, createdAt time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := &storage.AuditRecord{
			TraceID:   fmt.Sprintf("trace-%d", i),
			Action:    "send_email",
			Status:    "success",
			StartedAt: createdAt,
			CreatedAt: createdAt.Add(time.Duration(i) * time.Second),
		}
		if err := store.InsertAuditRecord(ctx, rec); err != nil {
			t.Fatalf("insert audit record: %v", err)
		}
	}
}

func TestRetentionRunOnce_DeletesExpired(t *testing.T) {
	ctx := context.Background()
	store := openTestStorage(t, ctx)

	now := time.Now().UTC()
	seedAuditRecords(t, ctx, store, 3, now.Add(-48*time.Hour))
	seedAuditRecords(t, ctx, store, 2, now)

	c, err := NewRetentionCollector(store)
	if err != nil {
		t.Fatalf("new retention collector: %v", err)
	}
	c.cfg = RetentionConfig{KeepDuration: 24 * time.Hour, BatchRows: 2}.withDefaults()

	if err := c.runOnce(ctx, now); err != nil {
		t.Fatalf("run once: %v", err)
	}

	count, err := store.CountAuditRecords(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 records after retention, got %d", count)
	}
}

func TestRetentionRunOnce_KeepRecent(t *testing.T) {
	ctx := context.Background()
	store := openTestStorage(t, ctx)

	now := time.Now().UTC()
	seedAuditRecords(t, ctx, store, 5, now.Add(-time.Hour))

	c, err := NewRetentionCollector(store)
	if err != nil {
		t.Fatalf("new retention collector: %v", err)
	}
	c.cfg = RetentionConfig{KeepDuration: 24 * time.Hour, KeepRecent: 2}.withDefaults()

	if err := c.runOnce(ctx, now); err != nil {
		t.Fatalf("run once: %v", err)
	}

	count, err := store.CountAuditRecords(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 records after keep-recent trim, got %d", count)
	}
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStorage(t, ctx)

	retention, err := NewRetentionCollector(store)
	if err != nil {
		t.Fatalf("new retention collector: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Retention.Interval = 10 * time.Millisecond
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	m.WithRetention(retention)

	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Fatal("expected error on second start")
	}

	time.Sleep(30 * time.Millisecond)
	m.Stop()
	if err := m.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestManagerRequiresCollectorWhenEnabled(t *testing.T) {
	m, err := NewManager(DefaultConfig())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected error when retention enabled without collector")
	}
}
