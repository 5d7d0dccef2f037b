package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wwwzy/RagAgent/internal/provider"
	"github.com/wwwzy/RagAgent/internal/rag"
	"github.com/wwwzy/RagAgent/internal/tools"
	"github.com/wwwzy/RagAgent/internal/trace"
)

const (
	// DefaultTopK 检索候选数量默认值
	DefaultTopK = 6
	// DefaultMaxIterations 模型调用次数上限默认值，防止工具调用循环失控
	DefaultMaxIterations = 5

	fallbackText    = "I processed your request."
	errorTextPrefix = "I encountered an error processing your request: "
)

// ContextSource 提供检索上下文。检索失败在实现内部降级为空结果。
type ContextSource interface {
	Assemble(ctx context.Context, query string, topK int) []rag.ContextBlock
}

// Config Agent 运行配置
type Config struct {
	// TopK 检索候选数量，<=0 使用默认值
	TopK int `mapstructure:"top_k"`
	// MaxIterations 单次运行的模型调用次数上限，<=0 使用默认值
	MaxIterations int `mapstructure:"max_iterations"`
	// SenderEmail 写入系统提示词的对外发信地址
	SenderEmail string `mapstructure:"sender_email"`
}

// Service 实现完整的 Agentic RAG 流水线：
// 检索上下文 → 组装提示词 → 模型推理 → 执行工具 → 生成带引用的回答。
type Service struct {
	provider provider.Provider
	contexts ContextSource
	executor tools.Executor
	cfg      Config
	now      func() time.Time
}

func NewService(p provider.Provider, contexts ContextSource, executor tools.Executor, cfg Config) (*Service, error) {
	if p == nil {
		return nil, errors.New("provider is required")
	}
	if contexts == nil {
		return nil, errors.New("context source is required")
	}
	if executor == nil {
		return nil, errors.New("tool executor is required")
	}
	return &Service{
		provider: p,
		contexts: contexts,
		executor: executor,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// ProcessQuery 执行一次完整的 Agent 运行。
// 任何失败都收敛为 error 形态的 Result（Text 解释失败、Debug.Error 带原始错误），
// 不向调用方返回 error。
func (s *Service) ProcessQuery(ctx context.Context, req Request) *Result {
	start := s.now()

	traceID := trace.FromContext(ctx)
	if traceID == "" {
		traceID = trace.New()
		ctx = trace.WithTraceID(ctx, traceID)
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultTopK()
	}
	maxIterations := req.MaxIterations
	if maxIterations <= 0 {
		maxIterations = s.defaultMaxIterations()
	}

	toolCalls := make([]ToolInvocation, 0)
	toolResults := make([]tools.Outcome, 0)
	iterations := 0

	fail := func(err error, blocks []rag.ContextBlock) *Result {
		fmt.Printf("[WARN] agent run failed: %v\n", err)
		return &Result{
			Text:        errorTextPrefix + err.Error(),
			ToolCalls:   toolCalls,
			ToolResults: toolResults,
			Citations:   []string{},
			Debug: Debug{
				RAGContextUsed: len(blocks) > 0,
				RAGChunkIDs:    chunkIDs(blocks),
				ToolsCalled:    toolNames(toolCalls),
				Iterations:     iterations,
				LatencyMS:      s.now().Sub(start).Milliseconds(),
				TraceID:        traceID,
				Error:          err.Error(),
			},
		}
	}

	if strings.TrimSpace(req.Query) == "" {
		return fail(errors.New("query is required"), nil)
	}

	// 1. 检索上下文（内部已降级，空结果不视为失败）
	blocks := s.contexts.Assemble(ctx, req.Query, topK)

	// 2. 组装系统提示词与初始对话
	system := buildSystemPrompt(blocks, s.now(), s.cfg.SenderEmail)
	messages := buildInitialMessages(req)
	toolDefs := s.executor.Definitions()

	// 3. 推理循环：模型要求工具就执行并回填结果，直到产出无工具调用的回答
	var finalText string
	for iterations < maxIterations {
		iterations++

		resp, err := s.provider.Chat(ctx, provider.ChatRequest{
			System:   system,
			Messages: messages,
			Tools:    toolDefs,
		})
		if err != nil {
			return fail(err, blocks)
		}

		if len(resp.ToolCalls) == 0 {
			// 文本与工具调用皆空视为对话自然结束，不是错误
			finalText = resp.Content
			break
		}

		// 个别后端可能不带调用 ID，本地补一个保证结果可关联
		for i := range resp.ToolCalls {
			if resp.ToolCalls[i].ID == "" {
				resp.ToolCalls[i].ID = newCallID()
			}
		}
		messages = append(messages, *resp)

		// 按模型给出的顺序串行执行
		for _, tc := range resp.ToolCalls {
			toolCalls = append(toolCalls, ToolInvocation{
				ToolName:  tc.Name,
				Arguments: parseArguments(tc.Arguments),
				CallID:    tc.ID,
			})

			outcome := s.executor.Execute(ctx, tc.ID, tc.Name, tc.Arguments)
			toolResults = append(toolResults, outcome)

			messages = append(messages, provider.Message{
				Role:       provider.RoleTool,
				Content:    outcome.FeedbackJSON(),
				ToolCallID: tc.ID,
			})
		}
	}

	// 4. 迭代耗尽或空回答时退回兜底文案，运行永远有非空输出
	if finalText == "" {
		finalText = fallbackText
	}

	return &Result{
		Text:        finalText,
		ToolCalls:   toolCalls,
		ToolResults: toolResults,
		Citations:   extractCitations(finalText, blocks),
		Debug: Debug{
			RAGContextUsed: len(blocks) > 0,
			RAGChunkIDs:    chunkIDs(blocks),
			ToolsCalled:    toolNames(toolCalls),
			Iterations:     iterations,
			LatencyMS:      s.now().Sub(start).Milliseconds(),
			TraceID:        traceID,
		},
	}
}

func (s *Service) defaultTopK() int {
	if s.cfg.TopK > 0 {
		return s.cfg.TopK
	}
	return DefaultTopK
}

func (s *Service) defaultMaxIterations() int {
	if s.cfg.MaxIterations > 0 {
		return s.cfg.MaxIterations
	}
	return DefaultMaxIterations
}

// parseArguments 尽力解析参数 JSON 用于结果展示；解析失败不影响执行路径。
func parseArguments(raw string) map[string]interface{} {
	args := map[string]interface{}{}
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]interface{}{}
	}
	return args
}

func newCallID() string {
	return "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func chunkIDs(blocks []rag.ContextBlock) []string {
	ids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.ChunkID)
	}
	return ids
}

func toolNames(calls []ToolInvocation) []string {
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		names = append(names, c.ToolName)
	}
	return names
}
