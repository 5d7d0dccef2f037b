package tools

import "time"

// Config 工具层配置。
// Google API 的鉴权凭据不在本层管理：调用方提供一个已有效的
// access token（通常由外部的凭据轮换机制刷新后注入）。
type Config struct {
	// AccessToken Google API 的 Bearer token
	AccessToken string `mapstructure:"access_token"`
	// CalendarID 目标日历，默认 primary
	CalendarID string `mapstructure:"calendar_id"`
	// SenderEmail 发件人地址，写入邮件 From 头
	SenderEmail string `mapstructure:"sender_email"`
	// DefaultTimezone 日历事件缺省时区
	DefaultTimezone string `mapstructure:"default_timezone"`
	// HTTPTimeout 单次外部 API 调用超时
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// DefaultConfig 返回默认工具配置
func DefaultConfig() Config {
	return Config{
		CalendarID:      "primary",
		DefaultTimezone: "UTC",
		HTTPTimeout:     15 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.CalendarID == "" {
		c.CalendarID = "primary"
	}
	if c.DefaultTimezone == "" {
		c.DefaultTimezone = "UTC"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 15 * time.Second
	}
	return c
}
