package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/wwwzy/RagAgent/internal/agent"
	"github.com/wwwzy/RagAgent/internal/trace"
	"github.com/wwwzy/RagAgent/internal/ui"
)

type ChatUI struct{}

func (u *ChatUI) Run(ctx context.Context, backend ui.ChatBackend, opts ui.ChatOptions) error {
	m := newChatModel(ctx, backend, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleTool      = "tool"
)

// chatEntry 是界面渲染的一条消息。
type chatEntry struct {
	role    string
	content string
}

type backendResultMsg struct {
	result    *agent.Result
	prevCount int
}

type streamTickMsg struct{}
type cancelMsg struct{}

var stdioMu sync.Mutex

type chatModel struct {
	ctx     context.Context
	backend ui.ChatBackend
	opts    ui.ChatOptions

	entries []chatEntry
	history []agent.ChatMessage

	width  int
	height int

	viewport   viewport.Model
	input      textinput.Model
	spinner    spinner.Model
	thinking   bool
	followTail bool

	overrideContent map[int]string
	streaming       bool
	streamIdx       int
	streamPos       int
	streamFull      string

	renderer *glamour.TermRenderer
}

func newChatModel(ctx context.Context, backend ui.ChatBackend, opts ui.ChatOptions) chatModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	ti := textinput.New()
	ti.Placeholder = "输入消息，回车发送"
	ti.Prompt = ""
	ti.Focus()

	vp := viewport.New(0, 0)
	vp.SetContent("")

	return chatModel{
		ctx:             ctx,
		backend:         backend,
		opts:            opts,
		viewport:        vp,
		input:           ti,
		spinner:         s,
		followTail:      true,
		overrideContent: map[int]string{},
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitCancel(m.ctx))
}

func waitCancel(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return cancelMsg{}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cancelMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputHeight := 3
		footerHeight := 1
		chatHeight := m.height - inputHeight - footerHeight
		if chatHeight < 1 {
			chatHeight = 1
		}

		m.viewport.Width = m.width
		m.viewport.Height = chatHeight

		m.input.Width = max(10, m.width-4)

		m.resetMarkdownRenderer()
		m.updateViewportContent(m.renderChat())
		return m, nil

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case backendResultMsg:
		m.thinking = false
		m.appendResult(msg.result)
		m.followTail = true
		m.updateViewportContent(m.renderChat())

		m.startStreamingFrom(msg.prevCount)
		if m.streaming {
			m.updateViewportContent(m.renderChat())
			return m, streamTick()
		}
		return m, nil

	case streamTickMsg:
		if !m.streaming {
			return m, nil
		}
		m.streamPos = min(len(m.streamFull), m.streamPos+32)
		m.overrideContent[m.streamIdx] = m.streamFull[:m.streamPos]
		m.updateViewportContent(m.renderChat())
		if m.streamPos >= len(m.streamFull) {
			m.streaming = false
		}
		if m.streaming {
			return m, streamTick()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "pgup", "pageup":
			m.viewport.PageUp()
			m.followTail = false
			return m, nil
		case "pgdown", "pagedown":
			m.viewport.PageDown()
			if m.viewport.AtBottom() {
				m.followTail = true
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		if msg.String() == "enter" {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, cmd
			}
			switch strings.ToLower(text) {
			case "exit", "quit":
				return m, tea.Quit
			}

			m.entries = append(m.entries, chatEntry{role: roleUser, content: text})
			m.followTail = true
			m.updateViewportContent(m.renderChat())

			m.input.SetValue("")
			m.thinking = true
			prev := len(m.entries)
			req := agent.Request{
				Query:       text,
				ChatHistory: append([]agent.ChatMessage(nil), m.history...),
				TopK:        m.opts.TopK,
			}
			return m, tea.Batch(cmd, invokeBackend(m.ctx, m.backend, req, prev))
		}

		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// appendResult 把一次运行的输出展开为界面消息：工具结果在前，回答在后。
func (m *chatModel) appendResult(result *agent.Result) {
	for _, outcome := range result.ToolResults {
		status := "执行成功"
		if !outcome.Success {
			status = "执行失败: " + outcome.Error
		}
		m.entries = append(m.entries, chatEntry{
			role:    roleTool,
			content: fmt.Sprintf("%s %s", outcome.ToolName, status),
		})
	}

	text := result.Text
	if len(result.Citations) > 0 {
		text += "\n\n引用: " + strings.Join(result.Citations, ", ")
	}
	m.entries = append(m.entries, chatEntry{role: roleAssistant, content: text})

	// 对话历史只保留问答文本，工具往返不进入历史
	if len(m.entries) >= 2 {
		for i := len(m.entries) - 1; i >= 0; i-- {
			if m.entries[i].role == roleUser {
				m.history = append(m.history,
					agent.ChatMessage{Role: "user", Content: m.entries[i].content},
					agent.ChatMessage{Role: "assistant", Content: result.Text},
				)
				break
			}
		}
	}
}

func (m chatModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render("RagAgent Chat")

	chat := m.viewport.View()
	inputLine := m.inputView()
	footer := m.footerView()

	return lipgloss.JoinVertical(lipgloss.Left, header, chat, inputLine, footer)
}

func (m chatModel) footerView() string {
	left := "Enter 发送 | PgUp/PgDn 滚动 | Ctrl+C 退出"
	right := ""
	if m.thinking {
		right = m.spinner.View() + " Thinking..."
	}
	style := lipgloss.NewStyle().Width(m.width).Padding(0, 1)
	return style.Render(lipgloss.JoinHorizontal(lipgloss.Left, left, lipgloss.NewStyle().Width(max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right)-2)).Render(""), right))
}

func (m chatModel) inputView() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(max(1, m.input.Width+2)).
		Render(m.input.View())
	return box
}

func (m *chatModel) updateViewportContent(content string) {
	oldYOffset := m.viewport.YOffset
	m.viewport.SetContent(content)
	if m.followTail {
		m.viewport.GotoBottom()
		return
	}
	m.viewport.SetYOffset(oldYOffset)
}

func invokeBackend(ctx context.Context, backend ui.ChatBackend, req agent.Request, prevCount int) tea.Cmd {
	return func() tea.Msg {
		runCtx := trace.WithTraceID(ctx, trace.New())
		result := invokeBackendDiscardingStdIO(runCtx, backend, req)
		return backendResultMsg{result: result, prevCount: prevCount}
	}
}

// invokeBackendDiscardingStdIO 运行期间把标准输出重定向到 /dev/null，
// 避免 Agent 的 [WARN] 日志破坏全屏界面。
func invokeBackendDiscardingStdIO(ctx context.Context, backend ui.ChatBackend, req agent.Request) *agent.Result {
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return backend.ProcessQuery(ctx, req)
	}
	defer devNull.Close()

	stdioMu.Lock()
	oldStdout := os.Stdout
	oldStderr := os.Stderr
	os.Stdout = devNull
	os.Stderr = devNull
	stdioMu.Unlock()

	result := backend.ProcessQuery(ctx, req)

	stdioMu.Lock()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	stdioMu.Unlock()

	return result
}

func streamTick() tea.Cmd {
	return tea.Tick(45*time.Millisecond, func(time.Time) tea.Msg { return streamTickMsg{} })
}

func (m *chatModel) startStreamingFrom(prevCount int) {
	m.streaming = false
	m.streamFull = ""
	m.streamPos = 0
	m.streamIdx = -1

	if prevCount < 0 {
		prevCount = 0
	}
	for i := prevCount; i < len(m.entries); i++ {
		entry := m.entries[i]
		if entry.role != roleAssistant {
			continue
		}
		content := strings.TrimSpace(entry.content)
		if content == "" {
			continue
		}
		m.streaming = true
		m.streamIdx = i
		m.streamFull = entry.content
		m.streamPos = min(len(m.streamFull), 32)
		preview := m.streamFull[:m.streamPos]
		if strings.TrimSpace(preview) == "" {
			preview = "…"
		}
		m.overrideContent[i] = preview
		return
	}
}

func (m *chatModel) resetMarkdownRenderer() {
	if m.width <= 0 {
		return
	}
	contentWidth := m.bubbleMaxContentWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(contentWidth),
	)
	if err == nil {
		m.renderer = r
	}
}

func (m chatModel) renderChat() string {
	if m.width <= 0 {
		m.width = 80
	}

	var b strings.Builder
	for i, entry := range m.entries {
		content := entry.content
		if override, ok := m.overrideContent[i]; ok && (m.streaming && m.streamIdx == i) {
			content = override
		}
		content = strings.TrimRight(content, "\n")
		if entry.role == roleAssistant && strings.TrimSpace(content) == "" {
			continue
		}

		line := m.renderOneMessage(entry.role, content)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m chatModel) bubbleMaxContentWidth() int {
	if m.width <= 0 {
		return 72
	}
	return max(20, m.width-8)
}

func (m chatModel) bubbleMinContentWidth() int {
	return 10
}

func (m chatModel) desiredContentWidth(s string) int {
	maxAllowed := m.bubbleMaxContentWidth()
	w := maxLineWidth(s)
	w = max(m.bubbleMinContentWidth(), w)
	w = min(maxAllowed, w)
	return w
}

func (m chatModel) wrapToWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func maxLineWidth(s string) int {
	s = strings.TrimRight(s, "\n")
	if strings.TrimSpace(s) == "" {
		return 0
	}
	lines := strings.Split(s, "\n")
	maxW := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " ")
		w := lipgloss.Width(line)
		if w > maxW {
			maxW = w
		}
	}
	return maxW
}

func (m chatModel) renderOneMessage(role string, content string) string {
	switch role {
	case roleUser:
		return m.renderUser(content)
	case roleAssistant:
		return m.renderAssistant(content)
	default:
		return m.renderTool(content)
	}
}

func (m chatModel) renderAssistant(content string) string {
	md := content
	if m.renderer != nil && strings.TrimSpace(md) != "" {
		if rendered, err := m.renderer.Render(md); err == nil {
			md = strings.TrimRight(rendered, "\n")
		}
	}
	md = m.wrapToWidth(md, m.desiredContentWidth(md))
	bubble := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 1).
		MaxWidth(max(20, m.width-4)).
		Render(md)
	return bubble
}

func (m chatModel) renderUser(content string) string {
	content = m.wrapToWidth(content, m.desiredContentWidth(content))
	bubble := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(0, 1).
		MaxWidth(max(20, m.width-4)).
		Render(content)
	return lipgloss.NewStyle().Width(m.width).Align(lipgloss.Right).Render(bubble)
}

func (m chatModel) renderTool(content string) string {
	label := "TOOL"
	body := content
	if strings.TrimSpace(body) == "" {
		body = "(无输出)"
	}
	body = m.wrapToWidth(body, m.desiredContentWidth(body))
	bubble := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Foreground(lipgloss.Color("245")).
		Padding(0, 1).
		MaxWidth(max(20, m.width-4)).
		Render(label + "\n" + body)
	return bubble
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
