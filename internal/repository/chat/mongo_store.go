package chat

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medkit/internal/model/chat"
	"medkit/internal/pkg/keyedlock"
)

// MongoStore MongoDB 对话存储
// 写操作通过 keyedlock 按对话串行；查询条件始终带 owner_id
type MongoStore struct {
	collection *mongo.Collection
	locks      *keyedlock.Arena
}

// NewMongoStore 创建 MongoDB 对话存储
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection((&chat.Conversation{}).Collection()),
		locks:      keyedlock.New(),
	}
}

// Get 查询对话
func (s *MongoStore) Get(ctx context.Context, conversationID, ownerID string) (*chat.Conversation, error) {
	var conv chat.Conversation
	err := s.collection.FindOne(ctx, bson.M{"_id": conversationID, "owner_id": ownerID}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// Append 追加一条消息，对话不存在时创建
func (s *MongoStore) Append(ctx context.Context, conversationID, ownerID string, turn chat.Turn) (*chat.Conversation, error) {
	s.locks.Lock(conversationID)
	defer s.locks.Unlock(conversationID)

	now := time.Now()
	filter := bson.M{"_id": conversationID, "owner_id": ownerID}
	update := bson.M{
		"$push":        bson.M{"turns": turn},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var conv chat.Conversation
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conv)
	if err != nil {
		// 对话已存在但归属其他医生：upsert 撞到 _id 唯一约束
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

// Clear 清空对话消息，保留对话壳
func (s *MongoStore) Clear(ctx context.Context, conversationID, ownerID string) error {
	s.locks.Lock(conversationID)
	defer s.locks.Unlock(conversationID)

	filter := bson.M{"_id": conversationID, "owner_id": ownerID}
	update := bson.M{
		"$set": bson.M{"turns": []chat.Turn{}, "updated_at": time.Now()},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List 按插入顺序返回对话消息
func (s *MongoStore) List(ctx context.Context, conversationID, ownerID string) ([]chat.Turn, error) {
	conv, err := s.Get(ctx, conversationID, ownerID)
	if err != nil {
		return nil, err
	}
	return conv.Turns, nil
}

// ListByOwner 返回医生名下的对话（不含消息体，消息数由投影计算）
func (s *MongoStore) ListByOwner(ctx context.Context, ownerID string, limit, offset int64) ([]*chat.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "updated_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset).
		SetProjection(bson.M{
			"owner_id":   1,
			"created_at": 1,
			"updated_at": 1,
			"turn_count": bson.M{"$size": "$turns"},
		})

	cursor, err := s.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []*chat.Conversation
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}
