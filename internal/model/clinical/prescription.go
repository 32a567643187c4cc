package clinical

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PrescriptionStatus 处方状态
type PrescriptionStatus string

const (
	PrescriptionStatusActive    PrescriptionStatus = "active"    // 生效中
	PrescriptionStatusCompleted PrescriptionStatus = "completed" // 已完成
	PrescriptionStatusCancelled PrescriptionStatus = "cancelled" // 已作废
)

// IsValid 检查处方状态是否有效
func (s PrescriptionStatus) IsValid() bool {
	return s == PrescriptionStatusActive || s == PrescriptionStatusCompleted || s == PrescriptionStatusCancelled
}

// Medication 处方中的单条用药
type Medication struct {
	Name      string `bson:"name" json:"name"`                             // 药品名称
	Dosage    string `bson:"dosage" json:"dosage"`                         // 剂量（如 500mg）
	Frequency string `bson:"frequency" json:"frequency"`                   // 频次（如 tid）
	Duration  string `bson:"duration,omitempty" json:"duration,omitempty"` // 疗程（如 7天）
	Notes     string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Prescription 处方实体
type Prescription struct {
	ID        string `bson:"_id,omitempty" json:"id"` // UUID格式的ID
	PatientID string `bson:"patient_id" json:"patient_id"`
	DoctorID  string `bson:"doctor_id" json:"doctor_id"` // 开方医生

	Diagnosis   string             `bson:"diagnosis" json:"diagnosis"` // 诊断
	Medications []Medication       `bson:"medications" json:"medications"`
	Status      PrescriptionStatus `bson:"status" json:"status"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (p *Prescription) Collection() string { return "prescriptions" }

// EnsureIndexes 创建和维护索引
func (p *Prescription) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(p.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patient_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_patient_created"),
		},
		{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_doctor_status"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
