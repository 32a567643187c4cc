package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medkit/internal/model/chat"
	"medkit/internal/model/clinical"
	"medkit/internal/model/resource"
)

// EnsureIndexes 创建所有模型的索引
// 应用启动时调用的统一入口。实现了 Model 接口的模型自动走其 EnsureIndexes，
// 认证相关集合的索引仍在这里手动维护
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	// 使用 Model 接口的模型
	models := []Model{
		&chat.Conversation{},
		&clinical.Patient{},
		&clinical.Prescription{},
		&clinical.LabReport{},
		&clinical.Nurse{},
		&resource.Resource{},
	}

	if err := EnsureAllIndexes(ctx, db, models...); err != nil {
		return err
	}

	// doctors 集合索引
	userColl := db.Collection("doctors")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_username").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "role", Value: 1}, bson.E{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_role_status"),
		},
	}

	if err := CreateIndexes(ctx, userColl, userIndexes); err != nil {
		return err
	}

	// refresh_tokens 集合索引
	refreshTokenColl := db.Collection("refresh_tokens")
	refreshTokenIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user_id"),
		},
		{
			Keys:    bson.D{bson.E{Key: "token", Value: 1}},
			Options: options.Index().SetName("idx_token").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_expires_at").SetExpireAfterSeconds(0), // TTL索引，自动删除过期token
		},
	}

	return CreateIndexes(ctx, refreshTokenColl, refreshTokenIndexes)
}
