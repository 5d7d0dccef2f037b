package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwwzy/RagAgent/internal/provider"
)

type echoTool struct {
	name string
	err  error
}

func (e *echoTool) Name() string { return e.name }

func (e *echoTool) Definition() provider.ToolDefinition {
	return provider.ToolDefinition{
		Name:       e.name,
		Parameters: map[string]interface{}{"type": "object"},
	}
}

func (e *echoTool) Execute(_ context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	if e.err != nil {
		return nil, e.err
	}
	return map[string]interface{}{"echo": args}, nil
}

func TestRegistryExecute_Success(t *testing.T) {
	r := NewRegistry(&echoTool{name: "echo"})

	outcome := r.Execute(context.Background(), "call_1", "echo", `{"k":"v"}`)

	assert.True(t, outcome.Success)
	assert.Equal(t, "call_1", outcome.CallID)
	assert.Equal(t, "echo", outcome.ToolName)
	assert.Empty(t, outcome.Error)
}

func TestRegistryExecute_UnknownTool(t *testing.T) {
	r := NewRegistry(&echoTool{name: "echo"})

	outcome := r.Execute(context.Background(), "call_2", "delete_database", `{}`)

	assert.False(t, outcome.Success)
	assert.Equal(t, `unknown tool "delete_database"`, outcome.Error)
	assert.Equal(t, "call_2", outcome.CallID)
}

func TestRegistryExecute_ToolFailureIsOutcome(t *testing.T) {
	r := NewRegistry(&echoTool{name: "broken", err: errors.New("backend unavailable")})

	outcome := r.Execute(context.Background(), "call_3", "broken", `{}`)

	assert.False(t, outcome.Success)
	assert.Equal(t, "backend unavailable", outcome.Error)
}

func TestRegistryExecute_ArgumentHandling(t *testing.T) {
	r := NewRegistry(&echoTool{name: "echo"})

	// 空参数兜底为 {}
	outcome := r.Execute(context.Background(), "c", "echo", "")
	assert.True(t, outcome.Success)

	// 损坏的 JSON 转换为失败结果，而不是报错
	outcome = r.Execute(context.Background(), "c", "echo", `{"k":`)
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "invalid tool arguments")
}

func TestRegistryDefinitions_Sorted(t *testing.T) {
	r := NewRegistry(&echoTool{name: "zebra"}, &echoTool{name: "alpha"})

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "zebra", defs[1].Name)
}

func TestOutcomeFeedbackJSON(t *testing.T) {
	out := Outcome{CallID: "call_1", ToolName: "send_email", Success: false, Error: "boom"}

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out.FeedbackJSON()), &decoded))
	assert.Equal(t, "call_1", decoded["call_id"])
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "boom", decoded["error"])
}

func TestCalendarTool_Execute(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":       "evt_123",
			"htmlLink": "https://calendar.google.com/event?eid=evt_123",
			"status":   "confirmed",
		})
	}))
	defer server.Close()

	tool := NewCalendarTool(Config{AccessToken: "tok", CalendarID: "primary"}, server.Client())
	tool.endpoint = server.URL

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"summary":        "Consultation Call",
		"start_datetime": "2026-09-01T14:00:00",
		"end_datetime":   "2026-09-01T14:30:00",
		"attendees":      []interface{}{"john@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/calendars/primary/events", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "Consultation Call", gotBody["summary"])
	assert.Equal(t, "evt_123", result["event_id"])
	assert.Equal(t, "UTC", result["timezone"])

	start, ok := gotBody["start"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2026-09-01T14:00:00", start["dateTime"])
}

func TestCalendarTool_MissingParams(t *testing.T) {
	tool := NewCalendarTool(Config{}, nil)

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"summary": "Call",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required parameters")
	assert.Contains(t, err.Error(), "start_datetime")
	assert.Contains(t, err.Error(), "end_datetime")
}

func TestCalendarTool_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":401}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	tool := NewCalendarTool(Config{AccessToken: "expired"}, server.Client())
	tool.endpoint = server.URL

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"summary":        "Call",
		"start_datetime": "2026-09-01T14:00:00",
		"end_datetime":   "2026-09-01T14:30:00",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calendar API returned 401")
}

func TestEmailTool_Execute(t *testing.T) {
	var gotRaw string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		gotRaw = body["raw"]
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "msg_1",
			"threadId": "thr_1",
			"labelIds": []string{"SENT"},
		})
	}))
	defer server.Close()

	tool := NewEmailTool(Config{AccessToken: "tok", SenderEmail: "agent@example.com"}, server.Client())
	tool.endpoint = server.URL

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"to":      "john@example.com",
		"subject": "Booking confirmed",
		"body":    "See you at 2 PM.",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_1", result["message_id"])
	assert.Equal(t, "agent@example.com", result["from"])

	// raw 字段应是 base64url 编码的 RFC 2822 报文
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(gotRaw)
	require.NoError(t, err)
	msg := string(decoded)
	assert.Contains(t, msg, "To: john@example.com")
	assert.Contains(t, msg, "Subject: Booking confirmed")
	assert.True(t, strings.HasSuffix(msg, "See you at 2 PM."))
}

func TestEmailTool_MissingParams(t *testing.T) {
	tool := NewEmailTool(Config{}, nil)

	_, err := tool.Execute(context.Background(), map[string]interface{}{"to": "a@b.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject")
	assert.Contains(t, err.Error(), "body")
}
