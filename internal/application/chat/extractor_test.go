package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAnswer_MarkerPresent(t *testing.T) {
	raw := "[|im_start|]user\n提示词内容\n[|im_end|]\n[|im_start|]assistant\n答案内容[|im_end|]多余输出"

	assert.Equal(t, "答案内容", ExtractAnswer(raw))
}

func TestExtractAnswer_LastMarkerWins(t *testing.T) {
	// 提示词回显中本身包含 assistant 标记时，取最后一个标记之后的内容
	raw := "[|im_start|]assistant\n第一段[|im_end|]\n[|im_start|]assistant\n第二段"

	assert.Equal(t, "第二段", ExtractAnswer(raw))
}

func TestExtractAnswer_MarkerAbsent(t *testing.T) {
	// 生成服务不回显提示词时，整段原文即为回答
	assert.Equal(t, "直接的回答文本", ExtractAnswer("  直接的回答文本  "))
}

func TestExtractAnswer_StripsClosingMarkers(t *testing.T) {
	cases := map[string]string{
		"回答[|im_end|]":        "回答",
		"回答<|im_end|>":        "回答",
		"回答<|im_start|>后续":    "回答",
		"回答|im_end|":          "回答",
		"回答[|im_end|]\n残留|im_start|": "回答",
	}

	for raw, want := range cases {
		assert.Equal(t, want, ExtractAnswer(raw), "raw=%q", raw)
	}
}

func TestExtractAnswer_Empty(t *testing.T) {
	assert.Equal(t, "", ExtractAnswer(""))
	assert.Equal(t, "", ExtractAnswer("[|im_start|]assistant\n[|im_end|]"))
}
