package rag

// ContextBlock 表示一条可注入 Prompt 的检索结果。
// 由检索端产出后不再修改，ChunkID 是它的身份标识。
type ContextBlock struct {
	ChunkID    string  `json:"chunk_id"`
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// BaseChunkID 返回 chunk_id 的 base 前缀（"#" 之前的部分；无 "#" 则为整个 id）。
// 两个 block 共享同一 base 前缀时视为近重复。
func BaseChunkID(chunkID string) string {
	for i := 0; i < len(chunkID); i++ {
		if chunkID[i] == '#' {
			return chunkID[:i]
		}
	}
	return chunkID
}
