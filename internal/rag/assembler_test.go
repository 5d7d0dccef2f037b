package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return f.vector, f.err
}

type fakeRetriever struct {
	blocks []ContextBlock
	err    error
}

func (f *fakeRetriever) Search(_ context.Context, _ []float64, _ int) ([]ContextBlock, error) {
	return f.blocks, f.err
}

func TestAssemble_DedupAndCap(t *testing.T) {
	// 6 个候选：两对共享 base 前缀，去重后剩 4 个，正好等于上限
	retriever := &fakeRetriever{blocks: []ContextBlock{
		{ChunkID: "policy_returns_v1#0", Similarity: 0.95},
		{ChunkID: "policy_returns_v1#1", Similarity: 0.94},
		{ChunkID: "policy_shipping_v1", Similarity: 0.90},
		{ChunkID: "sizing_guide_v1#0", Similarity: 0.85},
		{ChunkID: "sizing_guide_v1#2", Similarity: 0.84},
		{ChunkID: "support_contact_v1", Similarity: 0.80},
	}}
	a := NewContextAssembler(&fakeEmbedder{vector: []float64{1}}, retriever)

	blocks := a.Assemble(context.Background(), "return policy", 6)

	assert.Len(t, blocks, 4)
	assert.Equal(t, "policy_returns_v1#0", blocks[0].ChunkID)
	assert.Equal(t, "policy_shipping_v1", blocks[1].ChunkID)
	assert.Equal(t, "sizing_guide_v1#0", blocks[2].ChunkID)
	assert.Equal(t, "support_contact_v1", blocks[3].ChunkID)

	// 验证去重后没有相同 base 前缀
	seen := map[string]bool{}
	for _, b := range blocks {
		base := BaseChunkID(b.ChunkID)
		assert.False(t, seen[base], "duplicate base prefix %s", base)
		seen[base] = true
	}
}

func TestAssemble_NeverExceedsCap(t *testing.T) {
	blocks := make([]ContextBlock, 0, 10)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		blocks = append(blocks, ContextBlock{ChunkID: id})
	}
	a := NewContextAssembler(&fakeEmbedder{vector: []float64{1}}, &fakeRetriever{blocks: blocks})

	got := a.Assemble(context.Background(), "anything", 10)
	assert.Len(t, got, MaxContextBlocks)
}

func TestAssemble_EmbedFailureDegrades(t *testing.T) {
	a := NewContextAssembler(
		&fakeEmbedder{err: errors.New("embedding service down")},
		&fakeRetriever{blocks: []ContextBlock{{ChunkID: "x"}}},
	)
	got := a.Assemble(context.Background(), "q", 6)
	assert.Empty(t, got)
}

func TestAssemble_SearchFailureDegrades(t *testing.T) {
	a := NewContextAssembler(
		&fakeEmbedder{vector: []float64{1}},
		&fakeRetriever{err: errors.New("search timeout")},
	)
	got := a.Assemble(context.Background(), "q", 6)
	assert.Empty(t, got)
}

func TestBaseChunkID(t *testing.T) {
	assert.Equal(t, "policy_returns_v1", BaseChunkID("policy_returns_v1#3"))
	assert.Equal(t, "policy_returns_v1", BaseChunkID("policy_returns_v1"))
	assert.Equal(t, "", BaseChunkID("#suffix"))
}
