package rag

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/wwwzy/RagAgent/internal/storage"
)

func openTestStorage(t *testing.T) *storage.Storage {
	t.Helper()

	ctx := context.Background()
	s, err := storage.Open(ctx, storage.Config{
		Path: filepath.Join(t.TempDir(), "ragagent.db"),
	})
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRetrieverRanksBySimilarity(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	chunks := []storage.DocumentChunk{
		{ChunkID: "orthogonal", Text: "a", EmbeddingJSON: "[0,1,0]", EmbeddingDim: 3},
		{ChunkID: "aligned", Text: "b", EmbeddingJSON: "[1,0,0]", EmbeddingDim: 3},
		{ChunkID: "close", Text: "c", EmbeddingJSON: "[0.9,0.1,0]", EmbeddingDim: 3},
	}
	if err := s.UpsertDocumentChunks(ctx, chunks); err != nil {
		t.Fatalf("seed chunks: %v", err)
	}

	r, err := NewStoreRetriever(s)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	got, err := r.Search(ctx, []float64{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ChunkID != "aligned" || got[1].ChunkID != "close" {
		t.Fatalf("unexpected ranking: %s then %s", got[0].ChunkID, got[1].ChunkID)
	}
	if got[0].Similarity < got[1].Similarity {
		t.Fatalf("expected descending similarity, got %f then %f", got[0].Similarity, got[1].Similarity)
	}
	if math.Abs(got[0].Similarity-1.0) > 1e-9 {
		t.Fatalf("expected similarity 1.0 for aligned chunk, got %f", got[0].Similarity)
	}
}

func TestStoreRetrieverSkipsBadEmbeddings(t *testing.T) {
	s := openTestStorage(t)
	ctx := context.Background()

	chunks := []storage.DocumentChunk{
		{ChunkID: "good", Text: "a", EmbeddingJSON: "[1,0]", EmbeddingDim: 2},
		{ChunkID: "corrupt", Text: "b", EmbeddingJSON: "not-json", EmbeddingDim: 2},
		{ChunkID: "wrong_dim", Text: "c", EmbeddingJSON: "[1,2,3]", EmbeddingDim: 3},
	}
	if err := s.UpsertDocumentChunks(ctx, chunks); err != nil {
		t.Fatalf("seed chunks: %v", err)
	}

	r, err := NewStoreRetriever(s)
	if err != nil {
		t.Fatalf("new retriever: %v", err)
	}

	got, err := r.Search(ctx, []float64{1, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].ChunkID != "good" {
		t.Fatalf("expected good chunk, got %s", got[0].ChunkID)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero_vector", []float64{0, 0}, []float64{1, 1}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("cosine(%v, %v) = %f, want %f", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
