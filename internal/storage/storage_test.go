package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "ragagent.db")
	s, err := Open(ctx, Config{
		Path:      dbPath,
		EnableWAL: true,
	})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDocumentChunkUpsert(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	c1 := DocumentChunk{
		ChunkID:       "policy_returns_v1",
		Source:        "https://help.example.com/return-policy",
		Text:          "You can return unworn items within 30 days.",
		EmbeddingJSON: "[0.1,0.2,0.3]",
		EmbeddingDim:  3,
	}
	if err := s.UpsertDocumentChunk(ctx, &c1); err != nil {
		t.Fatalf("upsert c1: %v", err)
	}

	count, err := s.CountDocumentChunks(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 chunk, got %d", count)
	}

	c1b := DocumentChunk{
		ChunkID:       "policy_returns_v1",
		Source:        "https://help.example.com/return-policy",
		Text:          "Updated return policy text.",
		EmbeddingJSON: "[0.4,0.5,0.6]",
		EmbeddingDim:  3,
	}
	if err := s.UpsertDocumentChunk(ctx, &c1b); err != nil {
		t.Fatalf("upsert c1b: %v", err)
	}

	count, err = s.CountDocumentChunks(ctx)
	if err != nil {
		t.Fatalf("count after upsert: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected upsert to keep 1 chunk, got %d", count)
	}

	got, err := s.GetDocumentChunk(ctx, "policy_returns_v1")
	if err != nil {
		t.Fatalf("get chunk: %v", err)
	}
	if got == nil {
		t.Fatal("expected chunk, got nil")
	}
	if got.Text != "Updated return policy text." {
		t.Fatalf("expected updated text, got %q", got.Text)
	}
	if got.EmbeddingJSON != "[0.4,0.5,0.6]" {
		t.Fatalf("expected updated embedding, got %q", got.EmbeddingJSON)
	}

	missing, err := s.GetDocumentChunk(ctx, "does_not_exist")
	if err != nil {
		t.Fatalf("get missing chunk: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing chunk, got %+v", missing)
	}
}

func TestDocumentChunkListAndDelete(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	chunks := []DocumentChunk{
		{ChunkID: "b_chunk", Text: "b", EmbeddingJSON: "[1]", EmbeddingDim: 1},
		{ChunkID: "a_chunk", Text: "a", EmbeddingJSON: "[2]", EmbeddingDim: 1},
	}
	if err := s.UpsertDocumentChunks(ctx, chunks); err != nil {
		t.Fatalf("upsert chunks: %v", err)
	}

	all, err := s.AllDocumentChunks(ctx)
	if err != nil {
		t.Fatalf("list chunks: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(all))
	}
	if all[0].ChunkID != "a_chunk" || all[1].ChunkID != "b_chunk" {
		t.Fatalf("unexpected chunk order: %s then %s", all[0].ChunkID, all[1].ChunkID)
	}

	affected, err := s.DeleteAllDocumentChunks(ctx)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected delete 2 chunks, got %d", affected)
	}
}

func TestAuditRecordLifecycle(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	rec := AuditRecord{
		TraceID:    "trace-1",
		Action:     "create_calendar_event",
		CallID:     "call_abc",
		ParamsJSON: `{"summary":"Consultation"}`,
		Status:     "running",
		StartedAt:  time.Now().UTC(),
	}
	if err := s.InsertAuditRecord(ctx, &rec); err != nil {
		t.Fatalf("insert audit: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("expected audit record id to be assigned")
	}

	status := "success"
	result := `{"event_id":"evt-1"}`
	finished := time.Now().UTC()
	if err := s.UpdateAuditRecord(ctx, rec.ID, AuditUpdate{
		Status:     &status,
		ResultJSON: &result,
		FinishedAt: &finished,
	}); err != nil {
		t.Fatalf("update audit: %v", err)
	}

	got, err := s.QueryAuditRecords(ctx, AuditQuery{TraceID: "trace-1"})
	if err != nil {
		t.Fatalf("query audit: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(got))
	}
	if got[0].Status != "success" {
		t.Fatalf("expected status success, got %s", got[0].Status)
	}
	if got[0].ResultJSON != result {
		t.Fatalf("unexpected result json: %s", got[0].ResultJSON)
	}

	if err := s.UpdateAuditRecord(ctx, 9999, AuditUpdate{Status: &status}); err == nil {
		t.Fatal("expected not-found error updating missing record")
	}
}

func TestAuditRecordPrune(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	base := time.Now().Add(-48 * time.Hour).UTC()
	for i := 0; i < 5; i++ {
		rec := AuditRecord{
			Action:    "send_email",
			Status:    "success",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.InsertAuditRecord(ctx, &rec); err != nil {
			t.Fatalf("insert audit %d: %v", i, err)
		}
	}

	affected, err := s.DeleteAuditRecordsBeforeLimited(ctx, base.Add(150*time.Minute), 2)
	if err != nil {
		t.Fatalf("prune limited: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected prune 2 rows, got %d", affected)
	}

	affected, err = s.DeleteAuditRecordsKeepRecent(ctx, 1)
	if err != nil {
		t.Fatalf("keep recent: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected prune 2 more rows, got %d", affected)
	}

	count, err := s.CountAuditRecords(ctx)
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 audit record remaining, got %d", count)
	}
}
