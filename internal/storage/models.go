package storage

import "time"

// DocumentChunk 表示知识库中的一个“文档分块”，是 RAG 检索的最小单元。
//
// 该表面向两类需求：
//   - 向量检索：EmbeddingJSON 存放分块文本的嵌入向量，检索时载入内存做相似度排序。
//   - 引用溯源：ChunkID 是对外稳定的引用标识，Agent 回答中的 [chunk_id] 引用即指向它。
type DocumentChunk struct {
	// ID 为自增主键（内部使用）。
	ID uint64 `gorm:"primaryKey"`
	// ChunkID 为分块的稳定标识（例如 policy_returns_v1 或 faq_shipping_v2#3）。
	// "#" 前的部分为 base 前缀，用于检索端的近重复抑制。
	ChunkID string `gorm:"size:128;not null;uniqueIndex"`
	// Source 为分块来源（URL 或文档标识），便于展示与回溯。
	Source string `gorm:"size:512"`
	// Text 为分块的原始文本内容。
	Text string `gorm:"type:text;not null"`
	// EmbeddingJSON 存放嵌入向量（JSON 数组字符串）。维度由嵌入模型决定，写入时确定。
	EmbeddingJSON string `gorm:"type:text;not null"`
	// EmbeddingDim 为向量维度，用于载入时快速校验。
	EmbeddingDim int `gorm:"not null"`
	// CreatedAt/UpdatedAt 由 gorm 自动维护。
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// AuditRecord 记录一次“工具执行”及其结果，用于审计、追溯与后续分析。
//
// 一条审计记录对应 Agent 循环中的一次工具调用（例如 create_calendar_event / send_email）。
// 复杂入参/输出统一以 JSON 字符串存放，便于快速落地与版本演进。
type AuditRecord struct {
	// ID 为自增主键（内部使用）。
	ID uint64 `gorm:"primaryKey"`
	// TraceID 用于串联一次 Agent 运行内的所有工具调用，便于按链路聚合审计。
	TraceID string `gorm:"size:64;index"`
	// Action 表示执行的动作（稳定的工具名，例如 create_calendar_event）。
	Action string `gorm:"size:128;not null;index"`
	// CallID 为该次工具调用的唯一标识（Provider 返回或本地生成）。
	CallID string `gorm:"size:64;index"`
	// ParamsJSON 存放工具调用入参（JSON 字符串）。
	ParamsJSON string `gorm:"type:text"`
	// ResultJSON 存放工具输出（JSON 字符串）。
	ResultJSON string `gorm:"type:text"`
	// Status 表示执行状态（running/success/failed），用于快速筛选与统计。
	Status string `gorm:"size:32;not null;index"`
	// ErrorMessage 存放失败时的错误信息（可选，便于检索）。
	ErrorMessage string `gorm:"type:text"`
	// StartedAt/FinishedAt 表示动作起止时间。统计耗时可用 FinishedAt-StartedAt。
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time `gorm:"index"`
	// CreatedAt 为记录写入数据库的时间（与 StartedAt 含义不同），默认自动填充。
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"`
}
