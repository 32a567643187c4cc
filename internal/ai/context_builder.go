package ai

import (
	"unicode/utf8"

	"github.com/go-ego/gse"

	"medkit/internal/model/chat"
)

// BoundedContext 发送给推理后端的有界上下文
// 由完整历史派生，仅服务于下一次推理调用，不落库
type BoundedContext struct {
	System string      // 固定的系统前导提示词（可为空）
	Turns  []chat.Turn // 最近消息的滑动窗口（保持插入顺序）
}

// ContextBuilder 上下文构建器
// 纯函数式：相同输入与上限必然产出相同窗口。
// 截断从最旧消息开始丢弃，最近一条医生消息永远保留
type ContextBuilder struct {
	systemPrompt string
	maxTurns     int
	maxTokens    int
	segmenter    *gse.Segmenter // gse 分词器，用于估算 token 数
}

// NewContextBuilder 创建上下文构建器
// maxTurns/maxTokens 任一为 0 表示该维度不设限
func NewContextBuilder(systemPrompt string, maxTurns, maxTokens int) *ContextBuilder {
	// 初始化 gse 分词器；失败时降级为按字符估算
	var segmenter *gse.Segmenter
	if seg, err := gse.New(); err == nil {
		segmenter = &seg
	}

	return &ContextBuilder{
		systemPrompt: systemPrompt,
		maxTurns:     maxTurns,
		maxTokens:    maxTokens,
		segmenter:    segmenter,
	}
}

// Build 从完整历史派生有界上下文
// 从尾部向前累计，超过消息数或 token 预算即停；
// 若预算把最近一条 user 消息也挤掉了，窗口会向前扩回到它
func (b *ContextBuilder) Build(turns []chat.Turn) *BoundedContext {
	start := len(turns)
	tokens := 0

	for i := len(turns) - 1; i >= 0; i-- {
		if b.maxTurns > 0 && len(turns)-i > b.maxTurns {
			break
		}
		cost := b.EstimateTokens(turns[i].Content)
		if b.maxTokens > 0 && tokens+cost > b.maxTokens && start < len(turns) {
			break
		}
		tokens += cost
		start = i
	}

	// 最近一条 user 消息必须在窗口内
	if lastUser := lastUserIndex(turns); lastUser >= 0 && lastUser < start {
		start = lastUser
	}

	window := make([]chat.Turn, len(turns)-start)
	copy(window, turns[start:])

	return &BoundedContext{
		System: b.systemPrompt,
		Turns:  window,
	}
}

// EstimateTokens 估算文本的 token 数
// 有分词器时按词数估算，否则按 4 字符 ≈ 1 token 估算
func (b *ContextBuilder) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	if b.segmenter != nil {
		return len(b.segmenter.Cut(text, true))
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}

// lastUserIndex 最近一条 user 消息的下标，没有则返回 -1
func lastUserIndex(turns []chat.Turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == chat.RoleUser {
			return i
		}
	}
	return -1
}
