package agent

import (
	"context"
	"fmt"

	"github.com/wwwzy/RagAgent/internal/provider"
)

// AnswerResult 是纯 RAG 问答（不带工具）的输出。
type AnswerResult struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
	ChunkIDs  []string `json:"chunk_ids"`
}

// Answer 执行单轮纯 RAG 问答：检索 + 一次模型调用，不暴露工具。
// 与 ProcessQuery 不同，这里的模型调用失败直接向调用方返回 error。
func (s *Service) Answer(ctx context.Context, query string, topK int) (*AnswerResult, error) {
	if topK <= 0 {
		topK = s.defaultTopK()
	}

	blocks := s.contexts.Assemble(ctx, query, topK)
	system := buildSystemPrompt(blocks, s.now(), s.cfg.SenderEmail)

	resp, err := s.provider.Chat(ctx, provider.ChatRequest{
		System:   system,
		Messages: []provider.Message{{Role: provider.RoleUser, Content: query}},
	})
	if err != nil {
		return nil, fmt.Errorf("answer query: %w", err)
	}

	return &AnswerResult{
		Text:      resp.Content,
		Citations: extractCitations(resp.Content, blocks),
		ChunkIDs:  chunkIDs(blocks),
	}, nil
}
