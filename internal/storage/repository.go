package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm/clause"
)

const (
	defaultLimit = 200
	maxLimit     = 5000

	defaultDeleteLimit = 500
	maxDeleteLimit     = 900
)

func (s *Storage) UpsertDocumentChunk(ctx context.Context, chunk *DocumentChunk) error {
	if s == nil || s.db == nil {
		return errors.New("storage not initialized")
	}
	if chunk == nil {
		return errors.New("chunk is nil")
	}
	if chunk.ChunkID == "" {
		return errors.New("chunk_id is required")
	}
	// 以 ChunkID 为冲突键覆盖旧内容，重复 seed 等价于刷新
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chunk_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"source", "text", "embedding_json", "embedding_dim", "updated_at"}),
	}).Create(chunk).Error
	if err != nil {
		return fmt.Errorf("upsert document chunk: %w", err)
	}
	return nil
}

func (s *Storage) UpsertDocumentChunks(ctx context.Context, chunks []DocumentChunk) error {
	if s == nil || s.db == nil {
		return errors.New("storage not initialized")
	}
	for i := range chunks {
		if err := s.UpsertDocumentChunk(ctx, &chunks[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) AllDocumentChunks(ctx context.Context) ([]DocumentChunk, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("storage not initialized")
	}
	var out []DocumentChunk
	if err := s.db.WithContext(ctx).Order("chunk_id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query document chunks: %w", err)
	}
	return out, nil
}

func (s *Storage) GetDocumentChunk(ctx context.Context, chunkID string) (*DocumentChunk, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("storage not initialized")
	}
	var chunk DocumentChunk
	res := s.db.WithContext(ctx).Where("chunk_id = ?", chunkID).Limit(1).Find(&chunk)
	if res.Error != nil {
		return nil, fmt.Errorf("get document chunk: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &chunk, nil
}

func (s *Storage) CountDocumentChunks(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("storage not initialized")
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&DocumentChunk{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count document chunks: %w", err)
	}
	return count, nil
}

func (s *Storage) DeleteAllDocumentChunks(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("storage not initialized")
	}
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&DocumentChunk{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete document chunks: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// AuditQuery 用于查询审计记录的过滤条件。
//
// 设计原则：
//   - 所有字段都是“可选过滤条件”，零值表示不参与过滤。
//   - 时间范围使用 CreatedAt（写入时间），用于“最近 N 次工具调用”这类审计检索。
type AuditQuery struct {
	// TraceID 精确匹配一次 Agent 运行的链路 ID。
	TraceID string
	// Action 精确匹配工具名。
	Action string
	// Status 精确匹配执行状态（running/success/failed）。
	Status string
	// From/To 过滤 CreatedAt 区间：[From, To]（两端包含）。
	From *time.Time
	To   *time.Time
	// Limit 限制返回条数；<=0 使用默认值。
	Limit int
	// Desc 按 CreatedAt 倒序返回（优先返回最新记录）。
	Desc bool
}

func (s *Storage) InsertAuditRecord(ctx context.Context, rec *AuditRecord) error {
	if s == nil || s.db == nil {
		return errors.New("storage not initialized")
	}
	if rec == nil {
		return errors.New("audit record is nil")
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (s *Storage) QueryAuditRecords(ctx context.Context, q AuditQuery) ([]AuditRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("storage not initialized")
	}

	limit := normalizeLimit(q.Limit)
	db := s.db.WithContext(ctx).Model(&AuditRecord{})
	if q.TraceID != "" {
		db = db.Where("trace_id = ?", q.TraceID)
	}
	if q.Action != "" {
		db = db.Where("action = ?", q.Action)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at <= ?", *q.To)
	}
	if q.Desc {
		db = db.Order("created_at DESC")
	} else {
		db = db.Order("created_at ASC")
	}
	db = db.Limit(limit)

	var out []AuditRecord
	if err := db.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	return out, nil
}

type AuditUpdate struct {
	Status       *string
	ResultJSON   *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

func (s *Storage) UpdateAuditRecord(ctx context.Context, id uint64, up AuditUpdate) error {
	if s == nil || s.db == nil {
		return errors.New("storage not initialized")
	}

	updates := make(map[string]interface{})
	if up.Status != nil {
		updates["status"] = *up.Status
	}
	if up.ResultJSON != nil {
		updates["result_json"] = *up.ResultJSON
	}
	if up.ErrorMessage != nil {
		updates["error_message"] = *up.ErrorMessage
	}
	if up.FinishedAt != nil {
		updates["finished_at"] = *up.FinishedAt
	}

	if len(updates) == 0 {
		return nil
	}

	res := s.db.WithContext(ctx).Model(&AuditRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update audit record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gormNotFoundError("audit record", id)
	}
	return nil
}

func (s *Storage) CountAuditRecords(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("storage not initialized")
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&AuditRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count audit records: %w", err)
	}
	return count, nil
}

func (s *Storage) DeleteAuditRecordsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("storage not initialized")
	}
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&AuditRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete audit records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Storage) DeleteAuditRecordsBeforeLimited(ctx context.Context, before time.Time, limit int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("storage not initialized")
	}

	limit = normalizeDeleteLimit(limit)

	var ids []uint64
	db := s.db.WithContext(ctx).Model(&AuditRecord{}).
		Select("id").
		Where("created_at < ?", before).
		Order("id ASC").
		Limit(limit)
	if err := db.Find(&ids).Error; err != nil {
		return 0, fmt.Errorf("select audit record ids: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&AuditRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete audit records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteAuditRecordsKeepRecent 只保留最近 keep 条审计记录，删除更早的部分。
func (s *Storage) DeleteAuditRecordsKeepRecent(ctx context.Context, keep int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("storage not initialized")
	}
	if keep <= 0 {
		return 0, nil
	}

	var ids []uint64
	if err := s.db.WithContext(ctx).Model(&AuditRecord{}).
		Select("id").
		Order("created_at DESC, id DESC").
		Limit(keep).
		Find(&ids).Error; err != nil {
		return 0, fmt.Errorf("select audit record ids: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Where("id NOT IN ?", ids).Delete(&AuditRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete audit records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func normalizeLimit(v int) int {
	if v <= 0 {
		return defaultLimit
	}
	if v > maxLimit {
		return maxLimit
	}
	return v
}

func normalizeDeleteLimit(v int) int {
	if v <= 0 {
		return defaultDeleteLimit
	}
	if v > maxDeleteLimit {
		return maxDeleteLimit
	}
	return v
}

type notFoundError struct {
	Entity string
	ID     uint64
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}

func gormNotFoundError(entity string, id uint64) error {
	return notFoundError{Entity: entity, ID: id}
}
