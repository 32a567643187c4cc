package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"      // 医生发送的消息
	RoleAssistant Role = "assistant" // 模型回复
)

// IsValid 检查角色是否有效
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn 对话中的一条消息
// 只追加，不修改、不重排
type Turn struct {
	Role      Role      `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Conversation 对话实体
// ID使用UUID格式（string）；对话只对其所属医生（owner_id）可见
type Conversation struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"` // 所属医生ID
	Turns     []Turn    `bson:"turns" json:"turns"`
	TurnCount int       `bson:"turn_count,omitempty" json:"turn_count,omitempty"` // 消息数，仅列表查询时由存储层填充，不落库
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (c *Conversation) Collection() string { return "conversations" }

// EnsureIndexes 创建和维护索引
func (c *Conversation) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(c.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_owner_updated"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// NewUserTurn 构造一条医生消息
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

// NewAssistantTurn 构造一条模型回复
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}
