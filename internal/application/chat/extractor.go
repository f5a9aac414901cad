package chat

import "strings"

// closingMarkers 回答尾部需要剥离的标记片段。
// 顺序不可调整："]" 必须排在 "[|im_end|]" 之后，
// 否则会先把完整闭标记截断成残片。
var closingMarkers = []string{
	"[|im_end|]",
	"<|im_end|>",
	"]",
	"|im_end|",
	"<|im_start|>",
	"|im_start|",
}

// ExtractAnswer 从生成服务的原始输出中提取最终回答。
// 生成服务可能回显完整提示词，因此取最后一个 assistant 开标记之后的内容；
// 标记不存在时整段原文视为回答。之后按固定顺序剥离尾部的模板标记。
func ExtractAnswer(raw string) string {
	answer := raw
	if idx := strings.LastIndex(raw, assistantMarkerOpen); idx >= 0 {
		answer = raw[idx+len(assistantMarkerOpen):]
	}

	answer = strings.TrimSpace(answer)
	for _, marker := range closingMarkers {
		if idx := strings.Index(answer, marker); idx >= 0 {
			answer = answer[:idx]
		}
	}

	return strings.TrimSpace(answer)
}
