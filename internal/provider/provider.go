package provider

import (
	"context"
	"fmt"
	"strings"
)

// 消息角色。tool 角色的消息携带 ToolCallID，与触发它的工具调用对应。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolDefinition 是与具体 SDK 无关的工具声明，
// Parameters 为 JSON Schema（type/object + properties + required）。
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall 表示模型请求的一次工具调用，Arguments 是原始 JSON 字符串。
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message 是与具体 SDK 无关的对话消息。
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // 仅 assistant 消息使用
	ToolCallID string     // 仅 tool 消息使用
}

// ChatRequest 是一次模型调用的完整入参。
// System 单独携带：OpenAI 映射为 system 消息，Anthropic 映射为 system 参数。
type ChatRequest struct {
	System   string
	Messages []Message
	Tools    []ToolDefinition
}

// Provider 抽象一个支持工具调用的对话模型后端。
// 适配器在构造时绑定模型名，运行期不再切换。
type Provider interface {
	// Name 返回后端标识（"openai" / "anthropic"），用于日志与调试信息。
	Name() string
	// Chat 发起一次补全并返回 assistant 消息。
	// 消息可能同时包含文本与工具调用，也可能两者皆空（对话自然结束）。
	Chat(ctx context.Context, req ChatRequest) (*Message, error)
}

// Config 模型后端配置
type Config struct {
	// Provider 后端名称：openai / anthropic
	Provider string `mapstructure:"provider"`
	// Model 模型名称，如 gpt-4o-mini / claude-sonnet-4-5
	Model string `mapstructure:"model"`
	// APIKey 后端鉴权密钥
	APIKey string `mapstructure:"api_key"`
	// BaseURL 可选的 OpenAI 兼容端点地址（vLLM / Ollama 等）
	BaseURL string `mapstructure:"base_url"`
	// MaxTokens 单次补全的输出 token 上限（仅 Anthropic 必填，默认 4096）
	MaxTokens int `mapstructure:"max_tokens"`
}

// New 按配置构造模型后端适配器。
// 不认识的 provider 名称直接报错，不做隐式回退。
func New(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider %q: api_key is required", cfg.Provider)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider %q: model is required", cfg.Provider)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (expected openai or anthropic)", cfg.Provider)
	}
}
