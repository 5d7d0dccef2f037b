// Package trace 提供跨层传递请求追踪 ID 的 context 工具。
// 审计记录与调试信息通过同一个 trace_id 关联到一次运行。
package trace

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// New 生成一个新的追踪 ID。
func New() string {
	return uuid.NewString()
}

// WithTraceID 把追踪 ID 写入 context。
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, contextKey{}, traceID)
}

// FromContext 从 context 取出追踪 ID，取不到时返回空字符串。
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey{}).(string); ok {
		return v
	}
	return ""
}
