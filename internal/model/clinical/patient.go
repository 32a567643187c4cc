package clinical

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Gender 患者性别
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

// IsValid 检查性别取值是否有效
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther || g == GenderUnknown
}

// Patient 患者档案实体
// DoctorID 为建档（主治）医生，患者档案按医生隔离
type Patient struct {
	ID       string `bson:"_id,omitempty" json:"id"` // UUID格式的ID
	DoctorID string `bson:"doctor_id" json:"doctor_id"`

	// 基本信息
	Name      string `bson:"name" json:"name"`
	Gender    Gender `bson:"gender" json:"gender"`
	Age       int    `bson:"age" json:"age"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`
	BloodType string `bson:"blood_type,omitempty" json:"blood_type,omitempty"`

	// 病史
	Allergies      []string `bson:"allergies,omitempty" json:"allergies,omitempty"`             // 过敏史
	MedicalHistory string   `bson:"medical_history,omitempty" json:"medical_history,omitempty"` // 既往病史

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (p *Patient) Collection() string { return "patients" }

// EnsureIndexes 创建和维护索引
func (p *Patient) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(p.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_doctor_created"),
		},
		{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_doctor_name"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
