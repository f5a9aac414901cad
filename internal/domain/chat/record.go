package chat

// RetrievedRecord 单条检索结果，已规范化为可引用的文献记录。
// 每个回合由检索适配器临时产生，不做持久化。
type RetrievedRecord struct {
	// Content 文献片段正文
	Content string `json:"content"`
	// SourceLabel 来源标识（通常为文件路径或文件名）
	SourceLabel string `json:"source_label"`
	// Page 页码，-1 表示未知
	Page int `json:"page"`
	// Score 检索相关度分数（越大越相关），由检索端给出
	Score float32 `json:"score"`
}

// HasPage 是否带有效页码
func (r *RetrievedRecord) HasPage() bool {
	return r.Page >= 0
}
