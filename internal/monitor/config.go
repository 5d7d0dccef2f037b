package monitor

import "time"

type ErrorHandler func(err error)

// RetentionConfig 审计记录保留策略。
// 两条规则叠加生效：按时间清理过期记录，按条数保底最近记录。
type RetentionConfig struct {
	// Enabled 控制保留清理流水线是否启用。
	Enabled bool `mapstructure:"enabled"`

	// Interval 为清理周期；每到一个周期执行一轮清理。
	Interval time.Duration `mapstructure:"interval"`
	// KeepDuration 为审计记录的保留时长；早于 now-KeepDuration 的记录会被删除。
	KeepDuration time.Duration `mapstructure:"keep_duration"`
	// KeepRecent 为按条数保底的最近记录数；>0 时额外裁剪到最多 KeepRecent 条。
	KeepRecent int `mapstructure:"keep_recent"`
	// BatchRows 为单次删除的最大行数，分批删除避免长事务锁表。
	BatchRows int `mapstructure:"batch_rows"`
	// IdleSleep 为两批删除之间的间歇，给业务写入让路。
	IdleSleep time.Duration `mapstructure:"idle_sleep"`

	// OnError 为异步错误回调；默认丢弃。
	OnError ErrorHandler `mapstructure:"-"`
}

type Config struct {
	Retention RetentionConfig `mapstructure:"retention"`
}

func DefaultConfig() Config {
	return Config{
		Retention: RetentionConfig{
			Enabled:      true,
			Interval:     time.Hour,
			KeepDuration: 30 * 24 * time.Hour,
			BatchRows:    500,
			IdleSleep:    50 * time.Millisecond,
		},
	}
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.KeepDuration <= 0 {
		c.KeepDuration = 30 * 24 * time.Hour
	}
	if c.BatchRows <= 0 {
		c.BatchRows = 500
	}
	if c.IdleSleep < 0 {
		c.IdleSleep = 0
	}
	if c.OnError == nil {
		c.OnError = func(error) {}
	}
	return c
}
