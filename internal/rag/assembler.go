package rag

import (
	"context"
	"fmt"
)

// MaxContextBlocks 为单次运行注入 Prompt 的上下文块数量上限，
// 与 top_k 无关，用于防止上下文撑爆 token 预算。
const MaxContextBlocks = 4

// ContextAssembler 负责把“查询”变成“可注入 Prompt 的上下文块列表”：
// 嵌入查询 → 向量检索 → base 前缀去重（MMR-lite）→ 截断到上限。
// 检索链路上的任何失败都降级为空上下文，绝不向上抛错中断运行。
type ContextAssembler struct {
	embedder  Embedder
	retriever Retriever
}

func NewContextAssembler(embedder Embedder, retriever Retriever) *ContextAssembler {
	return &ContextAssembler{embedder: embedder, retriever: retriever}
}

// Assemble 返回去重后的上下文块，长度 <= MaxContextBlocks。
// 候选按检索端给出的相似度降序遍历；同一 base 前缀只接受第一个。
func (a *ContextAssembler) Assemble(ctx context.Context, query string, topK int) []ContextBlock {
	if a == nil || a.embedder == nil || a.retriever == nil {
		return nil
	}

	queryEmbedding, err := a.embedder.Embed(ctx, query)
	if err != nil {
		fmt.Printf("[WARN] embed query failed, degrading to empty context: %v\n", err)
		return nil
	}

	candidates, err := a.retriever.Search(ctx, queryEmbedding, topK)
	if err != nil {
		fmt.Printf("[WARN] vector search failed, degrading to empty context: %v\n", err)
		return nil
	}

	seen := make(map[string]struct{}, len(candidates))
	blocks := make([]ContextBlock, 0, MaxContextBlocks)
	for _, candidate := range candidates {
		base := BaseChunkID(candidate.ChunkID)
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		blocks = append(blocks, candidate)
		if len(blocks) >= MaxContextBlocks {
			break
		}
	}
	return blocks
}
