package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wwwzy/RagAgent/internal/storage"
	"github.com/wwwzy/RagAgent/internal/tui"
	"github.com/wwwzy/RagAgent/internal/ui"
)

var (
	chatUI    string
	chatDebug bool
	chatTopK  int
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "进入交互式对话模式",
	Long: `进入一个简单的控制台 REPL，用自然语言提问。
Agent 会先检索本地知识库，在必要时调用日历、邮件等内置工具。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		store, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("打开存储失败: %w", err)
		}
		defer store.Close()

		svc, _, err := buildAgentService(cfg, store)
		if err != nil {
			return err
		}

		var uiImpl ui.ChatUI
		switch chatUI {
		case "console", "":
			uiImpl = &ui.ConsoleChatUI{In: os.Stdin, Out: os.Stdout}
		case "tui":
			uiImpl = &tui.ChatUI{}
		default:
			return fmt.Errorf("未知 ui 类型: %s (支持: console, tui)", chatUI)
		}

		return uiImpl.Run(ctx, svc, ui.ChatOptions{
			ShowDebug: chatDebug,
			TopK:      chatTopK,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatUI, "ui", "console", "交互界面类型: console/tui")
	chatCmd.Flags().BoolVar(&chatDebug, "debug", false, "每轮回答后打印调试信息")
	chatCmd.Flags().IntVar(&chatTopK, "top-k", 0, "每轮检索候选数量 (0 使用配置值)")
}
