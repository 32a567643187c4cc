package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"medkit/internal/ai/component"
	"medkit/internal/config"
	"medkit/internal/model"
	"medkit/internal/model/chat"
)

// ErrInvalidInput 消息为空（去除首尾空白后）
var ErrInvalidInput = errors.New("message is empty")

// 推理失败原因
const (
	ReasonTimeout = "timeout"
	ReasonBackend = "backend_error"
)

// InferenceError 推理后端失败
// 不在网关层重试：推理后端可能有状态且代价高，是否重试由调用方决定
type InferenceError struct {
	Reason string
	Err    error
}

func (e *InferenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inference failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("inference failed (%s)", e.Reason)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Generator 推理后端的最小接口
// eino 的 ChatModel 直接满足该接口；测试中用函数桩替换
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// GeneratorFunc 函数适配器
type GeneratorFunc func(ctx context.Context, input []*schema.Message) (*schema.Message, error)

// Generate 实现 Generator
func (f GeneratorFunc) Generate(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	return f(ctx, input)
}

// Reply 推理结果
type Reply struct {
	Content   string
	LatencyMs int64
	Usage     *model.TokenUsage
}

// Client 推理网关
// 职责: 把一轮对话适配成对本地医疗模型的一次调用，归一化结果与失败。
// 自身无状态，不落库，超时可配
type Client struct {
	generator Generator
	timeout   time.Duration
}

// NewClient 创建推理网关
func NewClient(ctx context.Context, cfg *config.AIConfig, timeout time.Duration) (*Client, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	log.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Dur("timeout", timeout).
		Msg("inference gateway ready")

	return &Client{generator: chatModel, timeout: timeout}, nil
}

// NewClientWithGenerator 用自定义后端创建推理网关（测试用）
func NewClientWithGenerator(generator Generator, timeout time.Duration) *Client {
	return &Client{generator: generator, timeout: timeout}
}

// Infer 执行一次推理调用
// 失败时返回 *InferenceError（超时原因为 timeout）；不做任何重试
func (c *Client) Infer(ctx context.Context, bctx *BoundedContext, newUserMessage string) (*Reply, error) {
	message := strings.TrimSpace(newUserMessage)
	if message == "" {
		return nil, ErrInvalidInput
	}

	messages := buildMessages(bctx, message)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.generator.Generate(ctx, messages)
	latency := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &InferenceError{Reason: ReasonTimeout, Err: err}
		}
		return nil, &InferenceError{Reason: ReasonBackend, Err: err}
	}
	if resp == nil || resp.Content == "" {
		return nil, &InferenceError{Reason: ReasonBackend, Err: errors.New("empty response from chat model")}
	}

	reply := &Reply{
		Content:   resp.Content,
		LatencyMs: latency.Milliseconds(),
	}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		reply.Usage = &model.TokenUsage{
			PromptTokens:     resp.ResponseMeta.Usage.PromptTokens,
			CompletionTokens: resp.ResponseMeta.Usage.CompletionTokens,
			TotalTokens:      resp.ResponseMeta.Usage.TotalTokens,
		}
	}
	return reply, nil
}

// buildMessages 把有界上下文转换为 eino 消息序列
// 历史窗口已包含本条消息时不再重复追加
func buildMessages(bctx *BoundedContext, message string) []*schema.Message {
	var messages []*schema.Message

	if bctx != nil && bctx.System != "" {
		messages = append(messages, schema.SystemMessage(bctx.System))
	}

	var turns []chat.Turn
	if bctx != nil {
		turns = bctx.Turns
	}
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(turn.Content))
		}
	}

	if len(turns) == 0 || turns[len(turns)-1].Role != chat.RoleUser || turns[len(turns)-1].Content != message {
		messages = append(messages, schema.UserMessage(message))
	}
	return messages
}
