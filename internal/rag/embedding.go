package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Embedder 将文本转换为嵌入向量。
// 检索端对每次运行调用一次（查询向量），seed 端对每个分块调用一次。
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// DefaultEmbeddingModel 默认嵌入模型
const DefaultEmbeddingModel = "text-embedding-3-small"

type EmbeddingConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// OpenAIEmbedder 基于 OpenAI Embeddings API 实现 Embedder。
// 即使对话 Provider 配置为 anthropic，嵌入也走 OpenAI（Anthropic 不提供嵌入服务）。
type OpenAIEmbedder struct {
	client openai.Client
	model  string
}

func NewOpenAIEmbedder(cfg EmbeddingConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embedding api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if e == nil {
		return nil, errors.New("embedder not initialized")
	}
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response contains no data")
	}
	return resp.Data[0].Embedding, nil
}
