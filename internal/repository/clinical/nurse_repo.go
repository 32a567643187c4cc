package clinical

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medkit/internal/model/clinical"
)

// NurseRepo 护士档案仓库
type NurseRepo struct {
	collection *mongo.Collection
}

// NewNurseRepo 创建护士档案仓库
func NewNurseRepo(db *mongo.Database) *NurseRepo {
	return &NurseRepo{
		collection: db.Collection((&clinical.Nurse{}).Collection()),
	}
}

// Create 创建护士档案
func (r *NurseRepo) Create(ctx context.Context, nurse *clinical.Nurse) error {
	now := time.Now()
	nurse.CreatedAt = now
	nurse.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, nurse)
	return err
}

// FindByID 查询护士档案
func (r *NurseRepo) FindByID(ctx context.Context, id string) (*clinical.Nurse, error) {
	var nurse clinical.Nurse
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&nurse)
	if err != nil {
		return nil, err
	}
	return &nurse, nil
}

// Update 更新护士档案
func (r *NurseRepo) Update(ctx context.Context, id string, update bson.M) error {
	if setDoc, ok := update["$set"].(bson.M); ok {
		setDoc["updated_at"] = time.Now()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now()}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List 查询护士列表（可按科室过滤）
func (r *NurseRepo) List(ctx context.Context, department string, limit, offset int64) ([]*clinical.Nurse, int64, error) {
	filter := bson.M{}
	if department != "" {
		filter["department"] = department
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "name", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var nurses []*clinical.Nurse
	if err := cursor.All(ctx, &nurses); err != nil {
		return nil, 0, err
	}
	return nurses, total, nil
}
