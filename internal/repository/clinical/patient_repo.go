package clinical

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medkit/internal/model/clinical"
)

// PatientRepo 患者档案仓库
// 使用UUID作为ID，无需ObjectID转换
type PatientRepo struct {
	collection *mongo.Collection
}

// NewPatientRepo 创建患者档案仓库
func NewPatientRepo(db *mongo.Database) *PatientRepo {
	return &PatientRepo{
		collection: db.Collection((&clinical.Patient{}).Collection()),
	}
}

// Create 创建患者档案
func (r *PatientRepo) Create(ctx context.Context, patient *clinical.Patient) error {
	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, patient)
	return err
}

// FindByID 查询患者档案（按建档医生隔离）
func (r *PatientRepo) FindByID(ctx context.Context, id, doctorID string) (*clinical.Patient, error) {
	var patient clinical.Patient
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "doctor_id": doctorID}).Decode(&patient)
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// Update 更新患者档案
func (r *PatientRepo) Update(ctx context.Context, id, doctorID string, update bson.M) error {
	if setDoc, ok := update["$set"].(bson.M); ok {
		setDoc["updated_at"] = time.Now()
	} else {
		update["$set"] = bson.M{"updated_at": time.Now()}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "doctor_id": doctorID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List 查询医生名下的患者列表（可按姓名前缀过滤）
func (r *PatientRepo) List(ctx context.Context, doctorID, name string, limit, offset int64) ([]*clinical.Patient, int64, error) {
	filter := bson.M{"doctor_id": doctorID}
	if name != "" {
		filter["name"] = bson.M{"$regex": "^" + name}
	}

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

	var patients []*clinical.Patient
	if err := cursor.All(ctx, &patients); err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

// Delete 删除患者档案
func (r *PatientRepo) Delete(ctx context.Context, id, doctorID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "doctor_id": doctorID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
