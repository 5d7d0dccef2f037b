package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/wwwzy/RagAgent/internal/provider"
	"github.com/wwwzy/RagAgent/internal/rag"
)

const noContextMarker = "No relevant context found in knowledge base."

// buildSystemPrompt 组装系统提示词：当前日期 + 能力说明 + 检索上下文 + 行为指令。
// 上下文块渲染为 "[chunk_id] text"，与引用抽取的 [chunk_id] 格式呼应。
func buildSystemPrompt(blocks []rag.ContextBlock, now time.Time, senderEmail string) string {
	contextStr := noContextMarker
	if len(blocks) > 0 {
		parts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			parts = append(parts, fmt.Sprintf("[%s] %s", b.ChunkID, b.Text))
		}
		contextStr = strings.Join(parts, "\n\n")
	}

	currentDate := now.Format("2006-01-02")
	currentYear := now.Year()

	var b strings.Builder
	fmt.Fprintf(&b, `You are an intelligent AI assistant with access to both a knowledge base and action tools.

## IMPORTANT: Current Date Information
Today's date is: %s
Current year is: %d
When scheduling events, ALWAYS use the current year (%d) or future dates. Never use past dates.

## Your Capabilities:

1. **Knowledge Base (RAG)**: You have access to retrieved context from our database. Use it to answer questions about policies, procedures, scheduling rules, and other information.

2. **Tools**: You can take real actions:
   - `+"`create_calendar_event`"+`: Schedule meetings on Google Calendar
   - `+"`send_email`"+`: Send emails via Gmail

## Retrieved Context from Knowledge Base:
%s

## Instructions:

1. **For informational questions** (about policies, returns, shipping, scheduling rules, etc.):
   - Answer using the retrieved context above
   - Include citations in format [chunk_id] when referencing information
   - If context doesn't contain relevant info, say so

2. **For action requests** (schedule meeting, send email, etc.):
   - Use the appropriate tool
   - If RAG context contains relevant info (e.g., default meeting duration), USE IT
   - If missing required info (date, time, email), ASK the user
   - ALWAYS use the current year (%d) for dates

3. **After executing a tool**:
   - Confirm the action with relevant details
   - Include any important information (event link, meeting time, etc.)

## Important Guidelines:
- Always check if RAG context is relevant before using it
- Include citations [chunk_id] when referencing knowledge base information
- For scheduling: Check context for default durations (e.g., "standard consultation = 30 minutes")
- Be concise, professional, and helpful`,
		currentDate, currentYear, currentYear, contextStr, currentYear)

	if senderEmail != "" {
		fmt.Fprintf(&b, "\n- Corporate email for sending: %s", senderEmail)
	}
	return b.String()
}

// buildInitialMessages 组装初始对话：历史消息原样保序，用户问题放最后。
// 历史里的未知角色按 user 处理。
func buildInitialMessages(req Request) []provider.Message {
	messages := make([]provider.Message, 0, len(req.ChatHistory)+1)
	for _, msg := range req.ChatHistory {
		role := msg.Role
		if role != provider.RoleAssistant {
			role = provider.RoleUser
		}
		messages = append(messages, provider.Message{Role: role, Content: msg.Content})
	}
	messages = append(messages, provider.Message{Role: provider.RoleUser, Content: req.Query})
	return messages
}
