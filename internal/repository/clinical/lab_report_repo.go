package clinical

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medkit/internal/model/clinical"
)

// LabReportRepo 检验报告仓库
type LabReportRepo struct {
	collection *mongo.Collection
}

// NewLabReportRepo 创建检验报告仓库
func NewLabReportRepo(db *mongo.Database) *LabReportRepo {
	return &LabReportRepo{
		collection: db.Collection((&clinical.LabReport{}).Collection()),
	}
}

// Create 创建检验报告
func (r *LabReportRepo) Create(ctx context.Context, report *clinical.LabReport) error {
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.ReportedAt.IsZero() {
		report.ReportedAt = now
	}

	_, err := r.collection.InsertOne(ctx, report)
	return err
}

// FindByID 查询检验报告（按申请医生隔离）
func (r *LabReportRepo) FindByID(ctx context.Context, id, doctorID string) (*clinical.LabReport, error) {
	var report clinical.LabReport
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "doctor_id": doctorID}).Decode(&report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListByPatient 查询患者的检验报告列表
func (r *LabReportRepo) ListByPatient(ctx context.Context, patientID, doctorID string, limit, offset int64) ([]*clinical.LabReport, int64, error) {
	filter := bson.M{"patient_id": patientID, "doctor_id": doctorID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "reported_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reports []*clinical.LabReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}
