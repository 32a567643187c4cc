package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"medkit/internal/model/chat"
	"medkit/internal/pkg/keyedlock"
)

// MemoryStore 进程内对话存储
// 未配置 MongoDB 时的降级实现，也用于隔离测试。
// map 访问用读写锁保护，单对话的写入用 keyedlock 串行（与 MongoStore 同一套纪律）
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*chat.Conversation

	locks *keyedlock.Arena
}

// NewMemoryStore 创建进程内对话存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		convs: make(map[string]*chat.Conversation),
		locks: keyedlock.New(),
	}
}

// Get 查询对话
func (s *MemoryStore) Get(ctx context.Context, conversationID, ownerID string) (*chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.convs[conversationID]
	if !ok || conv.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return cloneConversation(conv), nil
}

// Append 追加一条消息，对话不存在时创建
func (s *MemoryStore) Append(ctx context.Context, conversationID, ownerID string, turn chat.Turn) (*chat.Conversation, error) {
	s.locks.Lock(conversationID)
	defer s.locks.Unlock(conversationID)

	now := time.Now()

	s.mu.Lock()
	conv, ok := s.convs[conversationID]
	if ok && conv.OwnerID != ownerID {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if !ok {
		conv = &chat.Conversation{
			ID:        conversationID,
			OwnerID:   ownerID,
			CreatedAt: now,
		}
		s.convs[conversationID] = conv
	}
	conv.Turns = append(conv.Turns, turn)
	conv.UpdatedAt = now
	result := cloneConversation(conv)
	s.mu.Unlock()

	return result, nil
}

// Clear 清空对话消息，保留对话壳
func (s *MemoryStore) Clear(ctx context.Context, conversationID, ownerID string) error {
	s.locks.Lock(conversationID)
	defer s.locks.Unlock(conversationID)

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.convs[conversationID]
	if !ok || conv.OwnerID != ownerID {
		return ErrNotFound
	}
	conv.Turns = nil
	conv.UpdatedAt = time.Now()
	return nil
}

// List 按插入顺序返回对话消息
func (s *MemoryStore) List(ctx context.Context, conversationID, ownerID string) ([]chat.Turn, error) {
	conv, err := s.Get(ctx, conversationID, ownerID)
	if err != nil {
		return nil, err
	}
	return conv.Turns, nil
}

// ListByOwner 返回医生名下的对话（不含消息体，消息数单独填充）
func (s *MemoryStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int64) ([]*chat.Conversation, error) {
	s.mu.RLock()
	var convs []*chat.Conversation
	for _, conv := range s.convs {
		if conv.OwnerID == ownerID {
			shell := cloneConversation(conv)
			shell.TurnCount = len(shell.Turns)
			shell.Turns = nil
			convs = append(convs, shell)
		}
	}
	s.mu.RUnlock()

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})

	if offset > 0 {
		if offset >= int64(len(convs)) {
			return nil, nil
		}
		convs = convs[offset:]
	}
	if limit > 0 && limit < int64(len(convs)) {
		convs = convs[:limit]
	}
	return convs, nil
}

// cloneConversation 深拷贝，避免调用方看到后续写入
func cloneConversation(conv *chat.Conversation) *chat.Conversation {
	out := *conv
	out.Turns = make([]chat.Turn, len(conv.Turns))
	copy(out.Turns, conv.Turns)
	return &out
}
