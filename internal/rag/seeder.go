package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wwwzy/RagAgent/internal/storage"
)

// Seeder 把文档分块写入知识库：逐条嵌入后 upsert 到 sqlite。
// 重复 seed 同一 chunk_id 等价于刷新其文本与向量。
type Seeder struct {
	embedder Embedder
	store    *storage.Storage
}

func NewSeeder(embedder Embedder, store *storage.Storage) (*Seeder, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if store == nil {
		return nil, errors.New("storage is required")
	}
	return &Seeder{embedder: embedder, store: store}, nil
}

// Seed 返回成功写入的分块数。任何一条失败都立即中断返回，
// 已写入的分块保留（seed 可安全重跑）。
func (s *Seeder) Seed(ctx context.Context, docs []SeedDocument) (int, error) {
	if s == nil || s.embedder == nil || s.store == nil {
		return 0, errors.New("seeder not initialized")
	}

	seeded := 0
	for _, doc := range docs {
		if doc.ChunkID == "" {
			return seeded, errors.New("seed document missing chunk_id")
		}
		if doc.Text == "" {
			return seeded, fmt.Errorf("seed document %s missing text", doc.ChunkID)
		}

		embedding, err := s.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return seeded, fmt.Errorf("embed chunk %s: %w", doc.ChunkID, err)
		}
		data, err := json.Marshal(embedding)
		if err != nil {
			return seeded, fmt.Errorf("marshal embedding for %s: %w", doc.ChunkID, err)
		}

		chunk := storage.DocumentChunk{
			ChunkID:       doc.ChunkID,
			Source:        doc.Source,
			Text:          doc.Text,
			EmbeddingJSON: string(data),
			EmbeddingDim:  len(embedding),
		}
		if err := s.store.UpsertDocumentChunk(ctx, &chunk); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
