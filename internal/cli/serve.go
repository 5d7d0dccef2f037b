package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wwwzy/RagAgent/internal/monitor"
	"github.com/wwwzy/RagAgent/internal/server"
	"github.com/wwwzy/RagAgent/internal/storage"

	"github.com/spf13/cobra"
)

// serveCmd 代表 serve 命令
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 RagAgent HTTP 服务",
	Long: `启动 RagAgent HTTP 服务。
这将初始化数据库、AI Provider 和工具注册表，
并对外提供 /api/agent、/api/answer、/api/seed 接口。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 上下文用于优雅退出
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 2. 初始化存储
		fmt.Println("正在初始化存储...")
		store, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("打开存储失败: %w", err)
		}
		defer store.Close()

		// 3. 组装 Agent 链路
		fmt.Println("正在组装 Agent...")
		svc, seeder, err := buildAgentService(cfg, store)
		if err != nil {
			return err
		}

		// 4. 初始化监控管理器（审计记录保留清理）
		mgr, err := monitor.NewManager(cfg.Monitor)
		if err != nil {
			return fmt.Errorf("创建监控管理器失败: %w", err)
		}
		ret, err := monitor.NewRetentionCollector(store)
		if err != nil {
			return fmt.Errorf("创建 retention 采集器失败: %w", err)
		}
		mgr.WithRetention(ret)

		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("启动管理器失败: %w", err)
		}

		// 5. 启动 HTTP 服务
		srv, err := server.New(cfg.Server, svc, seeder, store)
		if err != nil {
			return fmt.Errorf("创建 HTTP 服务失败: %w", err)
		}

		srvErr := make(chan error, 1)
		go func() {
			srvErr <- srv.Run(ctx)
		}()

		// 6. 等待信号
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		fmt.Printf("RagAgent 已启动，监听 %s。按 Ctrl+C 停止。\n", cfg.Server.Addr)

		select {
		case sig := <-sigChan:
			fmt.Printf("收到信号: %s, 正在关闭...\n", sig)
			cancel()
		case err := <-srvErr:
			if err != nil {
				cancel()
				mgr.Stop()
				mgr.Wait()
				return fmt.Errorf("HTTP 服务异常退出: %w", err)
			}
		case <-ctx.Done():
			fmt.Println("上下文已取消, 正在关闭...")
		}

		// 7. 优雅停止
		mgr.Stop()
		if err := mgr.Wait(); err != nil {
			return fmt.Errorf("管理器停止时发生错误: %w", err)
		}

		fmt.Println("关闭完成。")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
