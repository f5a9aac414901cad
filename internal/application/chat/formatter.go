package chat

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	domain "github.com/artqa/backend/internal/domain/chat"
)

// unknownSource 来源缺失时的占位文献名
const unknownSource = "未知文档"

// pagePlaceholder 页码缺失时的占位符
const pagePlaceholder = "N/A"

// whitespacePattern 连续空白折叠
var whitespacePattern = regexp.MustCompile(`\s+`)

// ContextFormatter 把检索记录渲染为带引用标号的文献块。
// 生成提示词会指示模型按这里的《文献名》格式引用，
// 因此渲染格式的稳定性是正确性要求，改动格式必须同步更新提示模板。
type ContextFormatter struct {
	previewLength int
}

// NewContextFormatter 创建文献块渲染器
func NewContextFormatter(previewLength int) *ContextFormatter {
	return &ContextFormatter{previewLength: previewLength}
}

// Format 按检索顺序渲染文献块，块之间以空行分隔。
// 每块包含：序号、去掉路径和扩展名的文献名、页码（缺失时 N/A）、
// 折叠空白并截断到预览长度的正文。
func (f *ContextFormatter) Format(records []domain.RetrievedRecord) string {
	if len(records) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(records))
	for i, rec := range records {
		blocks = append(blocks, f.formatRecord(i+1, rec))
	}
	return strings.Join(blocks, "\n\n")
}

func (f *ContextFormatter) formatRecord(ordinal int, rec domain.RetrievedRecord) string {
	page := pagePlaceholder
	if rec.HasPage() {
		page = strconv.Itoa(rec.Page)
	}

	content := whitespacePattern.ReplaceAllString(strings.TrimSpace(rec.Content), " ")
	runes := []rune(content)
	if f.previewLength > 0 && len(runes) > f.previewLength {
		content = string(runes[:f.previewLength]) + "..."
	}

	return fmt.Sprintf("【文献 %d】《%s》 (第%s页)\n%s", ordinal, docName(rec.SourceLabel), page, content)
}

// docName 从来源标识提取可引用的文献名：去掉目录和扩展名
func docName(sourceLabel string) string {
	base := filepath.Base(strings.TrimSpace(sourceLabel))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return unknownSource
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		return unknownSource
	}
	return name
}
