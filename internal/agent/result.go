package agent

import (
	"github.com/wwwzy/RagAgent/internal/tools"
)

// ChatMessage 是调用方传入的一条历史消息（user / assistant）。
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 是一次 Agent 运行的入参。
type Request struct {
	// Query 用户问题或动作请求，必填
	Query string `json:"query"`
	// ChatHistory 多轮对话的历史消息，按时间顺序排列
	ChatHistory []ChatMessage `json:"chat_history,omitempty"`
	// UserID 可选的用户标识
	UserID string `json:"user_id,omitempty"`
	// TopK 检索候选数量，<=0 使用默认值 6
	TopK int `json:"top_k,omitempty"`
	// MaxIterations 模型调用次数上限，<=0 使用默认值 5
	MaxIterations int `json:"max_iterations,omitempty"`
}

// ToolInvocation 记录模型发起的一次工具调用（解析后的参数）。
type ToolInvocation struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
	CallID    string                 `json:"call_id"`
}

// Debug 是一次运行的诊断信息。
// Iterations 等于实际发起的模型调用次数，失败的那次也计入。
type Debug struct {
	RAGContextUsed bool     `json:"rag_context_used"`
	RAGChunkIDs    []string `json:"rag_chunk_ids"`
	ToolsCalled    []string `json:"tools_called"`
	Iterations     int      `json:"iterations"`
	LatencyMS      int64    `json:"latency_ms"`
	TraceID        string   `json:"trace_id,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Result 是一次 Agent 运行的完整输出。
// 运行失败时 Text 携带面向用户的错误说明，Debug.Error 携带原始错误，
// ToolCalls/ToolResults 保留失败前已完成的部分。
type Result struct {
	Text        string           `json:"text"`
	ToolCalls   []ToolInvocation `json:"tool_calls"`
	ToolResults []tools.Outcome  `json:"tool_results"`
	Citations   []string         `json:"citations"`
	Debug       Debug            `json:"debug"`
}
