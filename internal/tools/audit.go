package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/wwwzy/RagAgent/internal/provider"
	"github.com/wwwzy/RagAgent/internal/storage"
	"github.com/wwwzy/RagAgent/internal/trace"
)

const auditTruncateLimit = 2048

// Executor 是代理循环看到的工具执行入口，
// 裸 Registry 与带审计的包装都实现它。
type Executor interface {
	Definitions() []provider.ToolDefinition
	Execute(ctx context.Context, callID, name, argumentsJSON string) Outcome
}

// AuditedRegistry 在工具执行前后写审计记录：
// 执行前插入 running 记录，执行后更新为 success/failed。
// 审计本身失败只打日志，绝不阻断工具执行。
type AuditedRegistry struct {
	registry *Registry
	store    *storage.Storage
}

// WrapWithAudit 给 Registry 加上审计。store 为 nil 时原样返回。
func WrapWithAudit(r *Registry, store *storage.Storage) Executor {
	if store == nil {
		return r
	}
	return &AuditedRegistry{registry: r, store: store}
}

func (a *AuditedRegistry) Definitions() []provider.ToolDefinition {
	return a.registry.Definitions()
}

func (a *AuditedRegistry) Execute(ctx context.Context, callID, name, argumentsJSON string) Outcome {
	// 1. 插入初始记录（Status=running）
	now := time.Now().UTC()
	record := &storage.AuditRecord{
		TraceID:    trace.FromContext(ctx),
		Action:     name,
		CallID:     callID,
		ParamsJSON: truncate(argumentsJSON, auditTruncateLimit),
		Status:     "running",
		StartedAt:  now,
	}
	if err := a.store.InsertAuditRecord(ctx, record); err != nil {
		fmt.Printf("[WARN] Failed to insert audit record: %v\n", err)
	}

	// 2. 执行工具
	outcome := a.registry.Execute(ctx, callID, name, argumentsJSON)

	// 3. 更新审计记录
	finishedAt := time.Now().UTC()
	status := "success"
	var errMsg *string
	var resultJSON *string
	if outcome.Success {
		r := truncate(outcome.FeedbackJSON(), auditTruncateLimit)
		resultJSON = &r
	} else {
		status = "failed"
		e := truncate(outcome.Error, auditTruncateLimit)
		errMsg = &e
	}

	// 只有在 Insert 成功且有了 ID 后，才能 Update
	if record.ID != 0 {
		update := storage.AuditUpdate{
			Status:       &status,
			ResultJSON:   resultJSON,
			ErrorMessage: errMsg,
			FinishedAt:   &finishedAt,
		}
		if err := a.store.UpdateAuditRecord(ctx, record.ID, update); err != nil {
			fmt.Printf("[WARN] Failed to update audit record: %v\n", err)
		}
	}

	return outcome
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...(truncated)"
}
