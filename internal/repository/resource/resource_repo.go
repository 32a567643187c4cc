package resource

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medkit/internal/model/resource"
)

// ResourceRepo 资源仓库
type ResourceRepo struct {
	collection *mongo.Collection
}

// NewResourceRepo 创建资源仓库
func NewResourceRepo(db *mongo.Database) *ResourceRepo {
	var res resource.Resource
	return &ResourceRepo{
		collection: db.Collection(res.Collection()),
	}
}

// Create 创建资源
func (r *ResourceRepo) Create(ctx context.Context, res *resource.Resource) error {
	now := time.Now()
	res.CreatedAt = now
	res.UpdatedAt = now
	if res.UploadedAt.IsZero() {
		res.UploadedAt = now
	}

	_, err := r.collection.InsertOne(ctx, res)
	return err
}

// FindByID 根据ID查询
func (r *ResourceRepo) FindByID(ctx context.Context, id string) (*resource.Resource, error) {
	var res resource.Resource
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindByUserID 根据上传者查询资源列表
func (r *ResourceRepo) FindByUserID(ctx context.Context, userID string, limit, offset int64) ([]*resource.Resource, int64, error) {
	filter := bson.M{"user_id": userID, "status": resource.ResourceStatusUploaded}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var resources []*resource.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, 0, err
	}
	return resources, total, nil
}

// MarkDeleted 标记资源已删除
func (r *ResourceRepo) MarkDeleted(ctx context.Context, id string) error {
	update := bson.M{
		"$set": bson.M{"status": resource.ResourceStatusDeleted, "updated_at": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
