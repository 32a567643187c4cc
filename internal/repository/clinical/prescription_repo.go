package clinical

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medkit/internal/model/clinical"
)

// PrescriptionRepo 处方仓库
type PrescriptionRepo struct {
	collection *mongo.Collection
}

// NewPrescriptionRepo 创建处方仓库
func NewPrescriptionRepo(db *mongo.Database) *PrescriptionRepo {
	return &PrescriptionRepo{
		collection: db.Collection((&clinical.Prescription{}).Collection()),
	}
}

// Create 创建处方
func (r *PrescriptionRepo) Create(ctx context.Context, prescription *clinical.Prescription) error {
	now := time.Now()
	prescription.CreatedAt = now
	prescription.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, prescription)
	return err
}

// FindByID 查询处方（按开方医生隔离）
func (r *PrescriptionRepo) FindByID(ctx context.Context, id, doctorID string) (*clinical.Prescription, error) {
	var prescription clinical.Prescription
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "doctor_id": doctorID}).Decode(&prescription)
	if err != nil {
		return nil, err
	}
	return &prescription, nil
}

// UpdateStatus 更新处方状态
func (r *PrescriptionRepo) UpdateStatus(ctx context.Context, id, doctorID string, status clinical.PrescriptionStatus) error {
	update := bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
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

// ListByPatient 查询患者的处方列表
func (r *PrescriptionRepo) ListByPatient(ctx context.Context, patientID, doctorID string, limit, offset int64) ([]*clinical.Prescription, int64, error) {
	filter := bson.M{"patient_id": patientID, "doctor_id": doctorID}

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

	var prescriptions []*clinical.Prescription
	if err := cursor.All(ctx, &prescriptions); err != nil {
		return nil, 0, err
	}
	return prescriptions, total, nil
}
