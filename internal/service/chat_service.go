package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"medkit/internal/ai"
	"medkit/internal/model"
	"medkit/internal/model/chat"
	"medkit/internal/pkg/cache"
	"medkit/internal/pkg/id"
	chatrepo "medkit/internal/repository/chat"
)

// ErrEmptyMessage 消息为空（去除首尾空白后）
var ErrEmptyMessage = errors.New("message is empty")

// ChatService 对话服务 - 业务逻辑层
// 职责: 编排对话存储、上下文构建与推理网关。
// 状态机（调用方视角）: Absent → Active → Cleared (≡ Absent)。
// 医生消息先落库再推理；推理失败不回滚、不补写 assistant 消息
type ChatService struct {
	store   chatrepo.Store     // 对话存储
	gateway *ai.Client         // 推理网关
	builder *ai.ContextBuilder // 上下文构建器
	cache   *cache.RedisCache  // 历史读缓存（可选）
}

// NewChatService 创建对话服务
func NewChatService(store chatrepo.Store, gateway *ai.Client, builder *ai.ContextBuilder, redisCache *cache.RedisCache) *ChatService {
	return &ChatService{
		store:   store,
		gateway: gateway,
		builder: builder,
		cache:   redisCache,
	}
}

// Chat 处理一轮对话
// 流程: 1. 校验消息 -> 2. 落库医生消息 -> 3. 构建有界上下文 -> 4. 推理 -> 5. 落库回复
func (s *ChatService) Chat(ctx context.Context, ownerID string, req *model.ChatRequest) (*model.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = id.New()
	}

	logger := log.With().
		Str("conversation_id", conversationID).
		Str("owner_id", ownerID).
		Logger()

	// 医生消息先持久化；后续任何失败都不会丢掉这条消息
	conv, err := s.store.Append(ctx, conversationID, ownerID, chat.NewUserTurn(message))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID, conversationID)

	bctx := s.builder.Build(conv.Turns)

	reply, err := s.gateway.Infer(ctx, bctx, message)
	if err != nil {
		logger.Error().Err(err).Msg("inference failed")
		return nil, err
	}

	if _, err := s.store.Append(ctx, conversationID, ownerID, chat.NewAssistantTurn(reply.Content)); err != nil {
		// 回复已经生成但落库失败；医生消息仍在，历史保持一致
		logger.Error().Err(err).Msg("failed to persist assistant turn")
		return nil, err
	}
	s.invalidate(ctx, ownerID, conversationID)

	logger.Info().
		Int("context_turns", len(bctx.Turns)).
		Int64("latency_ms", reply.LatencyMs).
		Msg("chat completed")

	return &model.ChatResponse{
		ConversationID: conversationID,
		Reply:          reply.Content,
		LatencyMs:      reply.LatencyMs,
		Usage:          reply.Usage,
	}, nil
}

// History 返回对话的全部消息（插入顺序）
func (s *ChatService) History(ctx context.Context, ownerID, conversationID string) ([]chat.Turn, error) {
	key := cache.ConversationCacheKey(ownerID, conversationID)

	if s.cache != nil {
		var turns []chat.Turn
		if err := s.cache.Get(ctx, key, &turns); err == nil {
			return turns, nil
		}
	}

	turns, err := s.store.List(ctx, conversationID, ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, turns, cache.ConversationCacheTTL); err != nil {
			log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to cache conversation history")
		}
	}
	return turns, nil
}

// Clear 清空对话
func (s *ChatService) Clear(ctx context.Context, ownerID, conversationID string) error {
	if err := s.store.Clear(ctx, conversationID, ownerID); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID, conversationID)
	return nil
}

// ListConversations 返回医生名下的对话列表（不含消息体）
func (s *ChatService) ListConversations(ctx context.Context, ownerID string, limit, offset int64) ([]*chat.Conversation, error) {
	return s.store.ListByOwner(ctx, ownerID, limit, offset)
}

// invalidate 失效历史缓存
func (s *ChatService) invalidate(ctx context.Context, ownerID, conversationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.ConversationCacheKey(ownerID, conversationID)); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to invalidate conversation cache")
	}
}
