package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wwwzy/RagAgent/internal/provider"
)

const defaultGmailEndpoint = "https://gmail.googleapis.com/gmail/v1"

// EmailTool 通过 Gmail API 发送纯文本邮件。
// Gmail 要求整封 RFC 2822 报文做 base64url 编码后放进 raw 字段。
type EmailTool struct {
	cfg      Config
	client   *http.Client
	endpoint string
}

func NewEmailTool(cfg Config, client *http.Client) *EmailTool {
	cfg = cfg.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &EmailTool{cfg: cfg, client: client, endpoint: defaultGmailEndpoint}
}

func (t *EmailTool) Name() string { return "send_email" }

func (t *EmailTool) Definition() provider.ToolDefinition {
	return provider.ToolDefinition{
		Name: t.Name(),
		Description: "Send an email to a recipient. Use this when the user wants to send " +
			"a confirmation, follow-up, notification, or any email communication.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"to": map[string]interface{}{
					"type":        "string",
					"description": "Recipient email address",
				},
				"subject": map[string]interface{}{
					"type":        "string",
					"description": "Email subject line",
				},
				"body": map[string]interface{}{
					"type":        "string",
					"description": "Email body content (plain text)",
				},
			},
			"required": []string{"to", "subject", "body"},
		},
	}
}

func (t *EmailTool) Execute(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	values, missing := requireStrings(args, "to", "subject", "body")
	if len(missing) > 0 {
		return nil, missingParamsError(missing)
	}

	raw := buildRawMessage(t.cfg.SenderEmail, values["to"], values["subject"], values["body"])
	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := t.endpoint + "/users/me/messages/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.cfg.AccessToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gmail API returned %d: %s", resp.StatusCode, truncate(string(data), 512))
	}

	var sent struct {
		ID       string   `json:"id"`
		ThreadID string   `json:"threadId"`
		LabelIDs []string `json:"labelIds"`
	}
	if err := json.Unmarshal(data, &sent); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return map[string]interface{}{
		"message_id": sent.ID,
		"thread_id":  sent.ThreadID,
		"to":         values["to"],
		"subject":    values["subject"],
		"from":       t.cfg.SenderEmail,
		"labels":     sent.LabelIDs,
	}, nil
}

// buildRawMessage 组装 RFC 2822 纯文本报文并做 base64url 编码。
func buildRawMessage(from, to, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(b.String()))
}
