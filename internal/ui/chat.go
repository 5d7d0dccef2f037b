package ui

import (
	"context"

	"github.com/wwwzy/RagAgent/internal/agent"
)

// ChatBackend 是聊天界面看到的 Agent 入口。
type ChatBackend interface {
	ProcessQuery(ctx context.Context, req agent.Request) *agent.Result
}

// ChatUI 是聊天界面的统一接口，console 与 tui 各有一个实现。
type ChatUI interface {
	Run(ctx context.Context, backend ChatBackend, opts ChatOptions) error
}

type ChatOptions struct {
	// ShowDebug 在每轮回答后打印调试信息（检索块、迭代数、耗时）
	ShowDebug bool
	// TopK 每轮检索候选数量，0 用默认值
	TopK int
}
