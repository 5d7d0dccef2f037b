package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wwwzy/RagAgent/internal/agent"
	"github.com/wwwzy/RagAgent/internal/monitor"
	"github.com/wwwzy/RagAgent/internal/provider"
	"github.com/wwwzy/RagAgent/internal/rag"
	"github.com/wwwzy/RagAgent/internal/server"
	"github.com/wwwzy/RagAgent/internal/storage"
	"github.com/wwwzy/RagAgent/internal/tools"
)

type Config struct {
	Storage   storage.Config      `mapstructure:"storage"`
	Monitor   monitor.Config      `mapstructure:"monitor"`
	AI        provider.Config     `mapstructure:"ai"`
	Embedding rag.EmbeddingConfig `mapstructure:"embedding"`
	Tools     tools.Config        `mapstructure:"tools"`
	Server    server.Config       `mapstructure:"server"`
	Agent     agent.Config        `mapstructure:"agent"`
	LogLevel  string              `mapstructure:"log_level"`
}

func Load(cfgFile string) (*Config, error) {
	// 1. 初始化 Viper
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// 默认搜索路径
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ragagent")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("RAGAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 注意：Viper 的 Unmarshal 只反序列化它“知道”的 key
	// （来自配置文件、Defaults 或显式 Bind），
	// 所以所有 key 都要先 SetDefault 或 BindEnv。
	setDefaults(v)

	// 2. 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件未找到，使用默认值
	}

	// 3. 反序列化 (文件/环境变量 覆盖 默认值)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// provider 专属的 API key：ai.api_key 未显式给出时按 provider 选择
	if cfg.AI.APIKey == "" {
		switch strings.ToLower(cfg.AI.Provider) {
		case "openai":
			cfg.AI.APIKey = v.GetString("openai_api_key")
		case "anthropic":
			cfg.AI.APIKey = v.GetString("anthropic_api_key")
		}
	}
	// 嵌入默认复用 OpenAI 的 key
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = v.GetString("openai_api_key")
	}
	// 提示词里的对外发信地址默认跟随工具层配置
	if cfg.Agent.SenderEmail == "" {
		cfg.Agent.SenderEmail = cfg.Tools.SenderEmail
	}

	// 4. 验证关键配置
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("ai.provider must be openai or anthropic, got %q", c.AI.Provider)
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required (or set OPENAI_API_KEY / ANTHROPIC_API_KEY env var)")
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai.model is required (or set RAGAGENT_AI_MODEL env var)")
	}
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required (or set OPENAI_API_KEY env var)")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// -------------------------------------------------------------------------
	// Global Defaults (全局默认值)
	// -------------------------------------------------------------------------
	v.SetDefault("log_level", "info")

	// -------------------------------------------------------------------------
	// Storage Defaults (存储默认值)
	// -------------------------------------------------------------------------
	v.SetDefault("storage.path", "ragagent.db")
	v.SetDefault("storage.enable_wal", true)
	v.SetDefault("storage.busy_timeout", 5*time.Second)

	// -------------------------------------------------------------------------
	// Monitor Retention Defaults (审计清理默认值)
	// -------------------------------------------------------------------------
	monitorDefaults := monitor.DefaultConfig()
	v.SetDefault("monitor.retention.enabled", monitorDefaults.Retention.Enabled)
	v.SetDefault("monitor.retention.interval", monitorDefaults.Retention.Interval)
	v.SetDefault("monitor.retention.keep_duration", monitorDefaults.Retention.KeepDuration)
	v.SetDefault("monitor.retention.keep_recent", monitorDefaults.Retention.KeepRecent)
	v.SetDefault("monitor.retention.batch_rows", monitorDefaults.Retention.BatchRows)
	v.SetDefault("monitor.retention.idle_sleep", monitorDefaults.Retention.IdleSleep)

	// -------------------------------------------------------------------------
	// AI Provider Defaults (模型后端默认值)
	// -------------------------------------------------------------------------
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.max_tokens", 0)

	v.BindEnv("ai.provider", "AI_PROVIDER", "RAGAGENT_AI_PROVIDER")
	v.BindEnv("ai.model", "RAGAGENT_AI_MODEL")
	v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("anthropic_api_key", "ANTHROPIC_API_KEY")

	// -------------------------------------------------------------------------
	// Embedding Defaults (嵌入服务默认值)
	// -------------------------------------------------------------------------
	v.SetDefault("embedding.model", rag.DefaultEmbeddingModel)
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.base_url", "")

	// -------------------------------------------------------------------------
	// Tools Defaults (工具层默认值)
	// -------------------------------------------------------------------------
	toolsDefaults := tools.DefaultConfig()
	v.SetDefault("tools.access_token", "")
	v.SetDefault("tools.calendar_id", toolsDefaults.CalendarID)
	v.SetDefault("tools.sender_email", "")
	v.SetDefault("tools.default_timezone", toolsDefaults.DefaultTimezone)
	v.SetDefault("tools.http_timeout", toolsDefaults.HTTPTimeout)

	v.BindEnv("tools.access_token", "GOOGLE_ACCESS_TOKEN", "RAGAGENT_TOOLS_ACCESS_TOKEN")

	// -------------------------------------------------------------------------
	// Server Defaults (HTTP 服务默认值)
	// -------------------------------------------------------------------------
	serverDefaults := server.DefaultConfig()
	v.SetDefault("server.addr", serverDefaults.Addr)
	v.SetDefault("server.read_timeout", serverDefaults.ReadTimeout)
	v.SetDefault("server.write_timeout", serverDefaults.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", serverDefaults.ShutdownTimeout)

	// -------------------------------------------------------------------------
	// Agent Defaults (运行参数默认值)
	// -------------------------------------------------------------------------
	v.SetDefault("agent.top_k", agent.DefaultTopK)
	v.SetDefault("agent.max_iterations", agent.DefaultMaxIterations)
	v.SetDefault("agent.sender_email", "")
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Storage: storage.Config{
			Path:        "ragagent.db",
			EnableWAL:   true,
			BusyTimeout: 5 * time.Second,
		},
		Monitor: monitor.DefaultConfig(),
		AI:      provider.Config{Provider: "openai"},
		Embedding: rag.EmbeddingConfig{
			Model: rag.DefaultEmbeddingModel,
		},
		Tools:  tools.DefaultConfig(),
		Server: server.DefaultConfig(),
		Agent: agent.Config{
			TopK:          agent.DefaultTopK,
			MaxIterations: agent.DefaultMaxIterations,
		},
	}
}
