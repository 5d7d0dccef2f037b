package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wwwzy/RagAgent/internal/rag"
	"github.com/wwwzy/RagAgent/internal/storage"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "初始化知识库",
	Long: `把文档分块嵌入并写入本地知识库。
默认写入内置的演示文档，也可以通过 --file 提供自定义文档
（JSON 数组，每项包含 chunk_id / source / text）。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// 1. 准备文档
		docs := rag.DefaultSeedDocuments()
		if seedFile != "" {
			data, err := os.ReadFile(seedFile)
			if err != nil {
				return fmt.Errorf("读取文档文件失败: %w", err)
			}
			docs = nil
			if err := json.Unmarshal(data, &docs); err != nil {
				return fmt.Errorf("解析文档文件失败: %w", err)
			}
		}
		if len(docs) == 0 {
			return fmt.Errorf("没有可写入的文档")
		}

		// 2. 打开存储并组装 seeder
		store, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("打开存储失败: %w", err)
		}
		defer store.Close()

		embedder, err := rag.NewOpenAIEmbedder(cfg.Embedding)
		if err != nil {
			return fmt.Errorf("创建嵌入器失败: %w", err)
		}
		seeder, err := rag.NewSeeder(embedder, store)
		if err != nil {
			return fmt.Errorf("创建 seeder 失败: %w", err)
		}

		// 3. 嵌入并写入
		fmt.Printf("正在嵌入并写入 %d 条文档...\n", len(docs))
		seeded, err := seeder.Seed(ctx, docs)
		if err != nil {
			return fmt.Errorf("seed 失败 (已写入 %d 条): %w", seeded, err)
		}

		fmt.Printf("完成，共写入 %d 条文档分块。\n", seeded)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedFile, "file", "", "自定义文档 JSON 文件路径")
}
