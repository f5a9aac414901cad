package chat

import (
	"fmt"
	"strings"

	domain "github.com/artqa/backend/internal/domain/chat"
)

// 对话标记，与生成服务的模板训练格式保持一致
const (
	userMarkerOpen      = "[|im_start|]user\n"
	assistantMarkerOpen = "[|im_start|]assistant"
	markerClose         = "[|im_end|]"
)

// emptyHistoryPlaceholder 首轮对话的历史占位
const emptyHistoryPlaceholder = "这是对话的开始。\n"

// scholarTemplate 公共艺术领域学术助手模板。
// 占位顺序：历史对话、文献上下文、用户问题。
// 引用格式要求与 ContextFormatter 的《文献名》渲染保持一致。
const scholarTemplate = `[系统提示]
你是一位精通公共艺术领域的专业学术助手，请严格使用中文回答问题。

[回答要求]
1. 全程使用中文回答，禁止使用英文（技术术语除外）
2. 不要输出思考过程，直接给出答案
3. 不要使用**符号，使用其他方式强调重点
4. 合理换行，使回答结构清晰
5. 逻辑清晰地回答问题，必要时刻可分点叙述
6. 严格基于文献回答，必须明确引用：
   - 在回答中明确提到文献资料的名称
   - 使用"根据《文献名称》"、"《文献名称》指出"等表达方式
   - 先总结核心观点，再进行详细解释
   - 如果引用多个文献，要分别说明每个文献的观点
7. 学术规范：
   - 使用专业术语但避免晦涩
   - 保持客观中立立场
   - 文献未涵盖的内容无需明确说明"未找到相关依据"，但是也不能臆想，随意乱说
8. 如果需要可以提供详细解释和具体案例，确保回答内容丰富
9. 引用格式示例：
   - "根据《社会艺术——公共艺术发展的另一种可能》..."
   - "《公共艺术理论与实践》指出..."
   - "在《当代公共艺术研究》中，作者认为..."

当前对话历史：
%s

[相关文献]
%s

[用户问题]
%s

请基于上述文献资料回答，必须明确引用文献名称：`

// PromptAssembler 把历史、文献上下文与问题组装成最终提示词
type PromptAssembler struct{}

// NewPromptAssembler 创建提示词组装器
func NewPromptAssembler() *PromptAssembler {
	return &PromptAssembler{}
}

// RenderHistory 把历史消息渲染为逐行对话文本。
// 系统消息跳过（模板已内置系统提示），空历史渲染为固定占位行。
func (a *PromptAssembler) RenderHistory(history []domain.Message) string {
	var sb strings.Builder
	for _, msg := range history {
		switch msg.Role {
		case domain.RoleUser:
			sb.WriteString("用户: ")
		case domain.RoleAssistant:
			sb.WriteString("助手: ")
		default:
			continue
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}

	if strings.TrimSpace(sb.String()) == "" {
		return emptyHistoryPlaceholder
	}
	return sb.String()
}

// Assemble 填充模板并加上对话标记包装。
// 结尾的 assistant 开标记提示模型从此处续写回答。
func (a *PromptAssembler) Assemble(question, context string, history []domain.Message) string {
	body := fmt.Sprintf(scholarTemplate, a.RenderHistory(history), context, question)
	return userMarkerOpen + body + "\n" + markerClose + "\n" + assistantMarkerOpen + "\n"
}
