package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/wwwzy/RagAgent/internal/storage"
)

// RetentionCollector 周期性清理过期审计记录。
type RetentionCollector struct {
	cfg RetentionConfig

	store *storage.Storage
}

func NewRetentionCollector(store *storage.Storage) (*RetentionCollector, error) {
	if store == nil {
		return nil, errors.New("storage is required")
	}
	return &RetentionCollector{store: store}, nil
}

func (c *RetentionCollector) Run(ctx context.Context) error {
	if c == nil || c.store == nil {
		return errors.New("retention collector not initialized")
	}
	c.cfg = c.cfg.withDefaults()

	if err := c.runOnce(ctx, time.Now().UTC()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.runOnce(ctx, time.Now().UTC()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		}
	}
}

func (c *RetentionCollector) runOnce(ctx context.Context, now time.Time) error {
	if c == nil || c.store == nil {
		return errors.New("retention collector not initialized")
	}

	cutoff := now.Add(-c.cfg.KeepDuration)
	if err := c.deleteBefore(ctx, cutoff); err != nil {
		c.cfg.OnError(err)
		return err
	}

	if c.cfg.KeepRecent > 0 {
		if _, err := c.store.DeleteAuditRecordsKeepRecent(ctx, c.cfg.KeepRecent); err != nil {
			c.cfg.OnError(err)
			return err
		}
	}
	return nil
}

// deleteBefore 分批删除直到没有命中行，避免单次大事务。
func (c *RetentionCollector) deleteBefore(ctx context.Context, before time.Time) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		affected, err := c.store.DeleteAuditRecordsBeforeLimited(ctx, before, c.cfg.BatchRows)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		if err := c.sleepIdle(ctx); err != nil {
			return err
		}
	}
}

func (c *RetentionCollector) sleepIdle(ctx context.Context) error {
	if c.cfg.IdleSleep <= 0 {
		return nil
	}
	timer := time.NewTimer(c.cfg.IdleSleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
