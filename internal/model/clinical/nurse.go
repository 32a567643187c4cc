package clinical

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NurseStatus 护士在职状态
type NurseStatus string

const (
	NurseStatusActive  NurseStatus = "active"   // 在职
	NurseStatusOnLeave NurseStatus = "on_leave" // 休假
	NurseStatusLeft    NurseStatus = "left"     // 离职
)

// IsValid 检查状态是否有效
func (s NurseStatus) IsValid() bool {
	return s == NurseStatusActive || s == NurseStatusOnLeave || s == NurseStatusLeft
}

// Nurse 护士档案实体（全院共享的人员登记，管理员维护）
type Nurse struct {
	ID string `bson:"_id,omitempty" json:"id"` // UUID格式的ID

	Name       string      `bson:"name" json:"name"`
	Department string      `bson:"department" json:"department"` // 科室
	Phone      string      `bson:"phone,omitempty" json:"phone,omitempty"`
	LicenseNo  string      `bson:"license_no,omitempty" json:"license_no,omitempty"` // 执业证号
	Status     NurseStatus `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Collection 返回集合名称
func (n *Nurse) Collection() string { return "nurses" }

// EnsureIndexes 创建和维护索引
func (n *Nurse) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(n.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "department", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_department_status"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_name"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
