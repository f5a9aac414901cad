package chat

// 裁剪策略集中在此处，供所有存储实现共用，避免各调用点重复实现截断逻辑。

// TruncationMarker 消息截断标记
const TruncationMarker = "...[消息已截断]"

// truncationReserve 截断时预留的字符数，为标记和省略留出余量
const truncationReserve = 100

// trimFloor 总长度裁剪的保底消息数：无论怎样裁剪都至少保留 4 条消息
const trimFloor = 4

// Limits 会话保留上限。任何一项被超出都触发对应的裁剪规则，绝不报错。
type Limits struct {
	// MaxMessages 消息条数上限
	MaxMessages int `yaml:"max_messages"`
	// MaxMessageLength 单条消息字符上限（按 rune 计）
	MaxMessageLength int `yaml:"max_message_length"`
	// MaxTotalLength 所有消息内容字符总长上限（按 rune 计）
	MaxTotalLength int `yaml:"max_total_length"`
}

// DefaultLimits 默认保留上限，与线上部署一致
func DefaultLimits() Limits {
	return Limits{
		MaxMessages:      60,
		MaxMessageLength: 10000,
		MaxTotalLength:   50000,
	}
}

// TruncateContent 截断超长内容：保留前 maxLength-100 个字符并追加截断标记。
// 长度按 rune 计数，与原系统的字符语义一致。
func TruncateContent(content string, maxLength int) string {
	runes := []rune(content)
	if len(runes) <= maxLength {
		return content
	}
	keep := maxLength - truncationReserve
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + TruncationMarker
}

// Trim 对消息序列应用裁剪策略，返回裁剪后的序列。顺序固定：
//  1. 总长度超限时从最旧端逐条移除，直到不超限或只剩 4 条
//  2. 条数超限时只保留最近 MaxMessages 条
//
// 单条消息的截断在 Append 入口处由 TruncateContent 完成，不在这里重复。
func Trim(messages []Message, limits Limits) []Message {
	total := totalContentLength(messages)
	for total > limits.MaxTotalLength && len(messages) > trimFloor {
		total -= contentLength(messages[0])
		messages = messages[1:]
	}

	if limits.MaxMessages > 0 && len(messages) > limits.MaxMessages {
		messages = messages[len(messages)-limits.MaxMessages:]
	}

	return messages
}

// RecentSuffix 返回最近 maxRounds 轮（至多 maxRounds*2 条）消息
func RecentSuffix(messages []Message, maxRounds int) []Message {
	if maxRounds <= 0 {
		return nil
	}
	n := maxRounds * 2
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

func contentLength(m Message) int {
	return len([]rune(m.Content))
}

func totalContentLength(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += contentLength(m)
	}
	return total
}
