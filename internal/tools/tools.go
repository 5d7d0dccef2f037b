package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/wwwzy/RagAgent/internal/provider"
)

// Tool 是执行侧的工具接口：声明 + 执行。
// Execute 返回的 map 是结构化结果数据；执行失败返回 error，
// 由 Registry 统一转换为 error 形态的 Outcome，不向上抛。
type Tool interface {
	Name() string
	Definition() provider.ToolDefinition
	Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)
}

// Outcome 是一次工具执行的统一结果，无论成败都会回填到对话中。
type Outcome struct {
	CallID   string                 `json:"call_id"`
	ToolName string                 `json:"tool_name"`
	Success  bool                   `json:"success"`
	Result   map[string]interface{} `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// FeedbackJSON 把执行结果序列化为回填给模型的 tool 消息内容。
func (o Outcome) FeedbackJSON() string {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Sprintf(`{"call_id":%q,"tool_name":%q,"success":false,"error":"marshal outcome failed"}`, o.CallID, o.ToolName)
	}
	return string(data)
}

// Registry 管理可用工具。注册发生在启动期，运行期只读，无需加锁。
type Registry struct {
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Register 覆盖同名工具。
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Definitions 返回全部工具声明，按名称排序保证稳定。
func (r *Registry) Definitions() []provider.ToolDefinition {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]provider.ToolDefinition, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute 执行一次工具调用。任何失败（未知工具、参数 JSON 损坏、
// 执行报错）都转换成 Success=false 的 Outcome，绝不向调用方抛错。
func (r *Registry) Execute(ctx context.Context, callID, name, argumentsJSON string) Outcome {
	outcome := Outcome{CallID: callID, ToolName: name}

	t, ok := r.tools[name]
	if !ok {
		outcome.Error = fmt.Sprintf("unknown tool %q", name)
		return outcome
	}

	// 模型偶尔给出空参数或残缺 JSON，统一兜底为 {}
	if argumentsJSON == "" || argumentsJSON == "{" {
		argumentsJSON = "{}"
	}
	args := map[string]interface{}{}
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		outcome.Error = fmt.Sprintf("invalid tool arguments: %v", err)
		return outcome
	}

	result, err := t.Execute(ctx, args)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Success = true
	outcome.Result = result
	return outcome
}

// requireStrings 校验必填字符串参数，返回缺失列表。
// 空字符串视同缺失。
func requireStrings(args map[string]interface{}, names ...string) (map[string]string, []string) {
	values := make(map[string]string, len(names))
	var missing []string
	for _, name := range names {
		s, _ := args[name].(string)
		if s == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = s
	}
	return values, missing
}

func missingParamsError(missing []string) error {
	return fmt.Errorf("missing required parameters: %s", strings.Join(missing, ", "))
}
