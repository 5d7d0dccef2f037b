package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/wwwzy/RagAgent/internal/provider"
)

const defaultCalendarEndpoint = "https://www.googleapis.com/calendar/v3"

// CalendarTool 通过 Google Calendar API 创建日历事件。
// 事件时长由调用方（模型）决定：RAG 上下文里的排期政策
// 会引导模型算好 end_datetime 再发起调用。
type CalendarTool struct {
	cfg      Config
	client   *http.Client
	endpoint string
}

// NewCalendarTool 构造日历工具。client 为 nil 时使用带超时的默认客户端。
func NewCalendarTool(cfg Config, client *http.Client) *CalendarTool {
	cfg = cfg.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &CalendarTool{cfg: cfg, client: client, endpoint: defaultCalendarEndpoint}
}

func (t *CalendarTool) Name() string { return "create_calendar_event" }

func (t *CalendarTool) Definition() provider.ToolDefinition {
	return provider.ToolDefinition{
		Name: t.Name(),
		Description: "Create a calendar event/meeting on Google Calendar. " +
			"Use this when the user wants to schedule a meeting, appointment, or call. " +
			"If the user mentions a 'standard consultation' or similar, check the RAG context " +
			"for default durations before setting the end time.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "Title/summary of the event (e.g., 'Consultation Call with John')",
				},
				"description": map[string]interface{}{
					"type":        "string",
					"description": "Detailed description of the event (optional)",
				},
				"start_datetime": map[string]interface{}{
					"type":        "string",
					"description": "Start date and time in ISO 8601 format (e.g., '2024-12-15T14:00:00')",
				},
				"end_datetime": map[string]interface{}{
					"type":        "string",
					"description": "End date and time in ISO 8601 format (e.g., '2024-12-15T15:00:00')",
				},
				"attendees": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "List of attendee email addresses",
				},
				"timezone": map[string]interface{}{
					"type":        "string",
					"description": "Timezone for the event (e.g., 'America/New_York'). Defaults to UTC if not specified.",
				},
			},
			"required": []string{"summary", "start_datetime", "end_datetime"},
		},
	}
}

func (t *CalendarTool) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	// 1. 参数校验
	values, missing := requireStrings(args, "summary", "start_datetime", "end_datetime")
	if len(missing) > 0 {
		return nil, missingParamsError(missing)
	}
	timezone, _ := args["timezone"].(string)
	if timezone == "" {
		timezone = t.cfg.DefaultTimezone
	}
	description, _ := args["description"].(string)

	// 2. 组装事件体
	event := map[string]interface{}{
		"summary": values["summary"],
		"start": map[string]string{
			"dateTime": values["start_datetime"],
			"timeZone": timezone,
		},
		"end": map[string]string{
			"dateTime": values["end_datetime"],
			"timeZone": timezone,
		},
	}
	if description != "" {
		event["description"] = description
	}
	attendees := stringSlice(args["attendees"])
	if len(attendees) > 0 {
		list := make([]map[string]string, 0, len(attendees))
		for _, email := range attendees {
			list = append(list, map[string]string{"email": email})
		}
		event["attendees"] = list
	}

	// 3. 调用 events.insert
	endpoint := fmt.Sprintf("%s/calendars/%s/events", t.endpoint, url.PathEscape(t.cfg.CalendarID))
	var created struct {
		ID       string `json:"id"`
		HTMLLink string `json:"htmlLink"`
		Status   string `json:"status"`
	}
	if err := t.postJSON(ctx, endpoint, event, &created); err != nil {
		return nil, fmt.Errorf("create calendar event: %w", err)
	}

	return map[string]interface{}{
		"event_id":  created.ID,
		"html_link": created.HTMLLink,
		"status":    created.Status,
		"summary":   values["summary"],
		"start":     values["start_datetime"],
		"end":       values["end_datetime"],
		"timezone":  timezone,
		"attendees": attendees,
	}, nil
}

func (t *CalendarTool) postJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.cfg.AccessToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("calendar API returned %d: %s", resp.StatusCode, truncate(string(data), 512))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// stringSlice 容忍两种形态：原生 []string 与 JSON 反序列化出的 []interface{}。
func stringSlice(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
