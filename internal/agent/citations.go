package agent

import (
	"regexp"

	"github.com/wwwzy/RagAgent/internal/rag"
)

var citationPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// extractCitations 从回答文本中抽取 [chunk_id] 形式的引用。
// 只保留确实出现在本次上下文里的 chunk_id（防止模型编造引用），
// 去重并保持首次出现的顺序。
func extractCitations(text string, blocks []rag.ContextBlock) []string {
	if text == "" || len(blocks) == 0 {
		return []string{}
	}

	valid := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		valid[b.ChunkID] = struct{}{}
	}

	seen := make(map[string]struct{})
	citations := []string{}
	for _, match := range citationPattern.FindAllStringSubmatch(text, -1) {
		id := match[1]
		if _, ok := valid[id]; !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		citations = append(citations, id)
	}
	return citations
}
