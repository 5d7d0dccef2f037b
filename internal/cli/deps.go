package cli

import (
	"fmt"
	"net/http"

	"github.com/wwwzy/RagAgent/internal/agent"
	"github.com/wwwzy/RagAgent/internal/config"
	"github.com/wwwzy/RagAgent/internal/provider"
	"github.com/wwwzy/RagAgent/internal/rag"
	"github.com/wwwzy/RagAgent/internal/storage"
	"github.com/wwwzy/RagAgent/internal/tools"
)

// buildAgentService 按配置组装整条链路：
// 嵌入器 → 检索器 → 上下文组装 → Provider → 工具注册表（带审计）→ Agent。
// serve / chat / seed 三个子命令复用同一套装配逻辑。
func buildAgentService(cfg *config.Config, store *storage.Storage) (*agent.Service, *rag.Seeder, error) {
	embedder, err := rag.NewOpenAIEmbedder(cfg.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("创建嵌入器失败: %w", err)
	}

	retriever, err := rag.NewStoreRetriever(store)
	if err != nil {
		return nil, nil, fmt.Errorf("创建检索器失败: %w", err)
	}
	assembler := rag.NewContextAssembler(embedder, retriever)

	seeder, err := rag.NewSeeder(embedder, store)
	if err != nil {
		return nil, nil, fmt.Errorf("创建 seeder 失败: %w", err)
	}

	prov, err := provider.New(cfg.AI)
	if err != nil {
		return nil, nil, fmt.Errorf("创建 AI Provider 失败: %w", err)
	}

	registry := tools.NewRegistry(
		tools.NewCalendarTool(cfg.Tools, http.DefaultClient),
		tools.NewEmailTool(cfg.Tools, http.DefaultClient),
	)
	executor := tools.WrapWithAudit(registry, store)

	svc, err := agent.NewService(prov, assembler, executor, cfg.Agent)
	if err != nil {
		return nil, nil, fmt.Errorf("创建 Agent 失败: %w", err)
	}
	return svc, seeder, nil
}
