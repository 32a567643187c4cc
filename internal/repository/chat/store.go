package chat

import (
	"context"
	"errors"

	"medkit/internal/model/chat"
)

// ErrNotFound 对话不存在，或不属于请求者
// 归属不匹配与不存在统一返回该错误，避免跨医生探测对话是否存在
var ErrNotFound = errors.New("conversation not found")

// Store 对话存储
// 所有操作都以 (conversationID, ownerID) 为作用域；
// 同一对话上的 Append/Clear 串行执行，不同对话互不阻塞
type Store interface {
	// Get 查询对话；不存在或归属不匹配返回 ErrNotFound
	Get(ctx context.Context, conversationID, ownerID string) (*chat.Conversation, error)

	// Append 追加一条消息；对话不存在时以 ownerID 为归属创建
	Append(ctx context.Context, conversationID, ownerID string, turn chat.Turn) (*chat.Conversation, error)

	// Clear 清空对话消息（保留对话壳）；幂等
	Clear(ctx context.Context, conversationID, ownerID string) error

	// List 按插入顺序返回对话消息
	List(ctx context.Context, conversationID, ownerID string) ([]chat.Turn, error)

	// ListByOwner 返回医生名下的对话（按最近更新排序，不含消息体）
	ListByOwner(ctx context.Context, ownerID string, limit, offset int64) ([]*chat.Conversation, error)
}
