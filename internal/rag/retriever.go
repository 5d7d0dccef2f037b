package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/wwwzy/RagAgent/internal/storage"
)

// Retriever 执行向量相似度检索：给定查询向量，返回按相似度降序排列的上下文块。
type Retriever interface {
	Search(ctx context.Context, queryEmbedding []float64, topK int) ([]ContextBlock, error)
}

// StoreRetriever 基于 sqlite 中持久化的分块向量做内存余弦检索。
// 知识库规模为数十到数百个分块，全量载入排序完全够用；
// 若未来分块量显著增长，可替换为专用向量索引而不影响上层契约。
type StoreRetriever struct {
	store *storage.Storage
}

func NewStoreRetriever(store *storage.Storage) (*StoreRetriever, error) {
	if store == nil {
		return nil, errors.New("storage is required")
	}
	return &StoreRetriever{store: store}, nil
}

func (r *StoreRetriever) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]ContextBlock, error) {
	if r == nil || r.store == nil {
		return nil, errors.New("retriever not initialized")
	}
	if len(queryEmbedding) == 0 {
		return nil, errors.New("query embedding is empty")
	}
	if topK <= 0 {
		topK = 6
	}

	chunks, err := r.store.AllDocumentChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document chunks: %w", err)
	}

	scored := make([]ContextBlock, 0, len(chunks))
	for _, chunk := range chunks {
		var embedding []float64
		if err := json.Unmarshal([]byte(chunk.EmbeddingJSON), &embedding); err != nil {
			// 单个分块的向量损坏不应让整次检索失败，跳过即可
			fmt.Printf("[WARN] skip chunk %s: bad embedding: %v\n", chunk.ChunkID, err)
			continue
		}
		if len(embedding) != len(queryEmbedding) {
			fmt.Printf("[WARN] skip chunk %s: embedding dim %d != query dim %d\n", chunk.ChunkID, len(embedding), len(queryEmbedding))
			continue
		}
		scored = append(scored, ContextBlock{
			ChunkID:    chunk.ChunkID,
			Text:       chunk.Text,
			Source:     chunk.Source,
			Similarity: cosineSimilarity(queryEmbedding, embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
