package resource

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Resource 上传文件实体（检验报告原件、影像资料等）
// 资源模块只负责文件本身；业务模块（如检验报告）通过 resource_id 建立关联
type Resource struct {
	ID     string `bson:"_id,omitempty" json:"id"` // UUID格式的ID
	UserID string `bson:"user_id" json:"user_id"`  // 上传者（医生）ID

	Ext  string `bson:"ext" json:"ext"`   // 文件扩展名（不含点号，如：pdf、jpg、png）
	Name string `bson:"name" json:"name"` // 原始文件名

	// 存储信息
	StorageKey  string `bson:"storage_key" json:"storage_key"`   // 存储路径（key）
	StorageType string `bson:"storage_type" json:"storage_type"` // 存储类型（local/oss）

	// 文件信息
	FileSize    int64  `bson:"file_size" json:"file_size"`       // 文件大小（字节）
	ContentType string `bson:"content_type" json:"content_type"` // MIME类型

	Status ResourceStatus `bson:"status" json:"status"`

	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// ResourceStatus 资源状态
type ResourceStatus string

const (
	ResourceStatusUploaded ResourceStatus = "uploaded" // 已上传
	ResourceStatusFailed   ResourceStatus = "failed"   // 失败
	ResourceStatusDeleted  ResourceStatus = "deleted"  // 已删除
)

// Collection 返回集合名称
func (r *Resource) Collection() string { return "resources" }

// EnsureIndexes 创建和维护索引
func (r *Resource) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(r.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "storage_key", Value: 1}},
			Options: options.Index().SetName("idx_storage_key"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
