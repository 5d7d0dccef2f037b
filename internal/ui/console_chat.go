package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wwwzy/RagAgent/internal/agent"
	"github.com/wwwzy/RagAgent/internal/trace"
)

// ConsoleChatUI 是基于标准输入输出的多轮对话 REPL。
// 历史消息在本地累积并随每次请求发给 Agent。
type ConsoleChatUI struct {
	In  io.Reader
	Out io.Writer
}

func (u *ConsoleChatUI) Run(ctx context.Context, backend ChatBackend, opts ChatOptions) error {
	in := u.In
	if in == nil {
		return fmt.Errorf("console ui: In is nil")
	}
	out := u.Out
	if out == nil {
		return fmt.Errorf("console ui: Out is nil")
	}

	reader := bufio.NewReader(in)
	var history []agent.ChatMessage

	fmt.Fprintln(out, "进入 RagAgent 对话模式。输入 exit/quit 退出。")
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "已退出。")
			return nil
		default:
		}

		fmt.Fprint(out, "你: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(out, "\n已退出。")
				return nil
			}
			return fmt.Errorf("读取输入失败: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit":
			fmt.Fprintln(out, "已退出。")
			return nil
		}

		// 每次新用户查询生成一个 TraceID
		runCtx := trace.WithTraceID(ctx, trace.New())
		result := backend.ProcessQuery(runCtx, agent.Request{
			Query:       line,
			ChatHistory: history,
			TopK:        opts.TopK,
		})

		printResult(out, result, opts.ShowDebug)

		// 本地维护对话历史，工具往返不进入历史
		history = append(history,
			agent.ChatMessage{Role: "user", Content: line},
			agent.ChatMessage{Role: "assistant", Content: result.Text},
		)
	}
}

func printResult(w io.Writer, result *agent.Result, showDebug bool) {
	fmt.Fprintf(w, "助手: %s\n", result.Text)

	for _, outcome := range result.ToolResults {
		if outcome.Success {
			fmt.Fprintf(w, "  [工具] %s 执行成功\n", outcome.ToolName)
		} else {
			fmt.Fprintf(w, "  [工具] %s 执行失败: %s\n", outcome.ToolName, outcome.Error)
		}
	}
	if len(result.Citations) > 0 {
		fmt.Fprintf(w, "  [引用] %s\n", strings.Join(result.Citations, ", "))
	}
	if showDebug {
		fmt.Fprintf(w, "  [调试] iterations=%d latency=%dms chunks=%v\n",
			result.Debug.Iterations, result.Debug.LatencyMS, result.Debug.RAGChunkIDs)
	}
	fmt.Fprintln(w)
}
