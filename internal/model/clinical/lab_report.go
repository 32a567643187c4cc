package clinical

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LabResult 检验报告中的单项结果
type LabResult struct {
	Item      string `bson:"item" json:"item"`                                 // 检验项目
	Value     string `bson:"value" json:"value"`                               // 结果值
	Unit      string `bson:"unit,omitempty" json:"unit,omitempty"`             // 单位
	Reference string `bson:"reference,omitempty" json:"reference,omitempty"`   // 参考范围
	Abnormal  bool   `bson:"abnormal,omitempty" json:"abnormal,omitempty"`     // 是否异常
}

// LabReport 检验报告实体
// 报告原件（PDF/图片）通过资源模块上传，ResourceID 关联
type LabReport struct {
	ID        string `bson:"_id,omitempty" json:"id"` // UUID格式的ID
	PatientID string `bson:"patient_id" json:"patient_id"`
	DoctorID  string `bson:"doctor_id" json:"doctor_id"` // 申请医生

	Title      string      `bson:"title" json:"title"`             // 报告名称（如 血常规）
	Results    []LabResult `bson:"results,omitempty" json:"results,omitempty"`
	Summary    string      `bson:"summary,omitempty" json:"summary,omitempty"` // 结论
	ResourceID string      `bson:"resource_id,omitempty" json:"resource_id,omitempty"`

	ReportedAt time.Time `bson:"reported_at" json:"reported_at"` // 出具时间
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (r *LabReport) Collection() string { return "lab_reports" }

// EnsureIndexes 创建和维护索引
func (r *LabReport) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(r.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patient_id", Value: 1}, {Key: "reported_at", Value: -1}},
			Options: options.Index().SetName("idx_patient_reported"),
		},
		{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_doctor_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
