package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wwwzy/RagAgent/internal/agent"
	"github.com/wwwzy/RagAgent/internal/monitor"
	"github.com/wwwzy/RagAgent/internal/storage"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	// 设置必填环境变量，绕过 Validate 检查
	t.Setenv("OPENAI_API_KEY", "dummy-key")
	t.Setenv("RAGAGENT_AI_MODEL", "gpt-4o-mini")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	// 测试加载默认值（不提供配置文件）
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证默认值
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "ragagent.db", cfg.Storage.Path)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "dummy-key", cfg.AI.APIKey)
	assert.Equal(t, "dummy-key", cfg.Embedding.APIKey)
	assert.Equal(t, agent.DefaultTopK, cfg.Agent.TopK)
	assert.Equal(t, agent.DefaultMaxIterations, cfg.Agent.MaxIterations)
	assert.True(t, cfg.Monitor.Retention.Enabled)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	content := []byte(`
log_level: "debug"
ai:
  provider: "anthropic"
  model: "claude-sonnet-4-5"
  api_key: "file-key"
embedding:
  api_key: "embed-key"
storage:
  path: "test.db"
  busy_timeout: "10s"
agent:
  max_iterations: 8
monitor:
  retention:
    enabled: false
    keep_duration: "168h"
`)
	err := os.WriteFile(configFile, content, 0644)
	assert.NoError(t, err)

	cfg, err := Load(configFile)
	assert.NoError(t, err)

	// 验证覆盖值
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Equal(t, "file-key", cfg.AI.APIKey)
	assert.Equal(t, "test.db", cfg.Storage.Path)
	assert.Equal(t, 10*time.Second, cfg.Storage.BusyTimeout)
	assert.Equal(t, 8, cfg.Agent.MaxIterations)
	assert.False(t, cfg.Monitor.Retention.Enabled)
	assert.Equal(t, 168*time.Hour, cfg.Monitor.Retention.KeepDuration)

	// 验证未覆盖的字段保持默认值
	assert.Equal(t, monitor.DefaultConfig().Retention.BatchRows, cfg.Monitor.Retention.BatchRows)
}

func TestLoad_EnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RAGAGENT_LOG_LEVEL", "warn")
	t.Setenv("RAGAGENT_STORAGE_PATH", "env.db")
	t.Setenv("RAGAGENT_SERVER_ADDR", ":9090")

	cfg, err := Load("")
	assert.NoError(t, err)

	// 验证环境变量覆盖
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "env.db", cfg.Storage.Path)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoad_ProviderKeySelection(t *testing.T) {
	t.Setenv("RAGAGENT_AI_MODEL", "claude-sonnet-4-5")
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("OPENAI_API_KEY", "oai-key")

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	// 对话走 anthropic 的 key，嵌入仍复用 OpenAI 的 key
	assert.Equal(t, "ant-key", cfg.AI.APIKey)
	assert.Equal(t, "oai-key", cfg.Embedding.APIKey)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, storage.Config{Path: "ragagent.db", EnableWAL: true, BusyTimeout: 5 * time.Second}, cfg.Storage)
	assert.Equal(t, monitor.DefaultConfig().Retention.Interval, cfg.Monitor.Retention.Interval)
	assert.Equal(t, "openai", cfg.AI.Provider)
}

func TestLoad_ValidateAI(t *testing.T) {
	// 确保没有环境变量干扰
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("RAGAGENT_AI_MODEL", "")

	_, err := Load("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ai.api_key is required")

	t.Setenv("OPENAI_API_KEY", "k")
	_, err = Load("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ai.model is required")

	t.Setenv("RAGAGENT_AI_MODEL", "gpt-4o-mini")
	t.Setenv("AI_PROVIDER", "gemini")
	_, err = Load("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ai.provider must be openai or anthropic")
}
