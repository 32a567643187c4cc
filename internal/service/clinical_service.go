package service

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"medkit/internal/model/clinical"
	"medkit/internal/pkg/id"
	clinicalRepo "medkit/internal/repository/clinical"
)

// 诊疗业务错误
var (
	ErrPatientNotFound      = errors.New("患者不存在")
	ErrPrescriptionNotFound = errors.New("处方不存在")
	ErrLabReportNotFound    = errors.New("检验报告不存在")
	ErrNurseNotFound        = errors.New("护士不存在")
	ErrInvalidPatient       = errors.New("患者信息不完整")
	ErrInvalidPrescription  = errors.New("处方信息不完整")
	ErrInvalidLabReport     = errors.New("检验报告信息不完整")
	ErrInvalidNurse         = errors.New("护士信息不完整")
	ErrInvalidStatus        = errors.New("状态取值无效")
)

// ClinicalService 诊疗服务 - 业务逻辑层
// 患者/处方/检验报告按医生隔离；护士档案全院共享
type ClinicalService struct {
	patients      *clinicalRepo.PatientRepo
	prescriptions *clinicalRepo.PrescriptionRepo
	labReports    *clinicalRepo.LabReportRepo
	nurses        *clinicalRepo.NurseRepo
}

// NewClinicalService 创建诊疗服务
func NewClinicalService(
	patients *clinicalRepo.PatientRepo,
	prescriptions *clinicalRepo.PrescriptionRepo,
	labReports *clinicalRepo.LabReportRepo,
	nurses *clinicalRepo.NurseRepo,
) *ClinicalService {
	return &ClinicalService{
		patients:      patients,
		prescriptions: prescriptions,
		labReports:    labReports,
		nurses:        nurses,
	}
}

// ===== 患者 =====

// CreatePatient 创建患者档案
func (s *ClinicalService) CreatePatient(ctx context.Context, doctorID string, patient *clinical.Patient) (*clinical.Patient, error) {
	patient.Name = strings.TrimSpace(patient.Name)
	if patient.Name == "" || patient.Age < 0 {
		return nil, ErrInvalidPatient
	}
	if patient.Gender == "" {
		patient.Gender = clinical.GenderUnknown
	}
	if !patient.Gender.IsValid() {
		return nil, ErrInvalidPatient
	}

	patient.ID = id.New()
	patient.DoctorID = doctorID
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// GetPatient 查询患者档案
func (s *ClinicalService) GetPatient(ctx context.Context, doctorID, patientID string) (*clinical.Patient, error) {
	patient, err := s.patients.FindByID(ctx, patientID, doctorID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return patient, nil
}

// UpdatePatient 更新患者档案（仅覆盖给定字段）
func (s *ClinicalService) UpdatePatient(ctx context.Context, doctorID, patientID string, fields bson.M) error {
	if len(fields) == 0 {
		return ErrInvalidPatient
	}
	if gender, ok := fields["gender"].(clinical.Gender); ok && !gender.IsValid() {
		return ErrInvalidPatient
	}

	err := s.patients.Update(ctx, patientID, doctorID, bson.M{"$set": fields})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrPatientNotFound
	}
	return err
}

// ListPatients 查询医生名下的患者列表
func (s *ClinicalService) ListPatients(ctx context.Context, doctorID, name string, limit, offset int64) ([]*clinical.Patient, int64, error) {
	return s.patients.List(ctx, doctorID, strings.TrimSpace(name), limit, offset)
}

// DeletePatient 删除患者档案
func (s *ClinicalService) DeletePatient(ctx context.Context, doctorID, patientID string) error {
	err := s.patients.Delete(ctx, patientID, doctorID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrPatientNotFound
	}
	return err
}

// ===== 处方 =====

// CreatePrescription 开具处方
// 先校验患者归属，防止给他人患者开方
func (s *ClinicalService) CreatePrescription(ctx context.Context, doctorID string, prescription *clinical.Prescription) (*clinical.Prescription, error) {
	prescription.Diagnosis = strings.TrimSpace(prescription.Diagnosis)
	if prescription.PatientID == "" || prescription.Diagnosis == "" || len(prescription.Medications) == 0 {
		return nil, ErrInvalidPrescription
	}
	for _, med := range prescription.Medications {
		if strings.TrimSpace(med.Name) == "" || strings.TrimSpace(med.Dosage) == "" {
			return nil, ErrInvalidPrescription
		}
	}

	if _, err := s.GetPatient(ctx, doctorID, prescription.PatientID); err != nil {
		return nil, err
	}

	prescription.ID = id.New()
	prescription.DoctorID = doctorID
	prescription.Status = clinical.PrescriptionStatusActive
	if err := s.prescriptions.Create(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

// GetPrescription 查询处方
func (s *ClinicalService) GetPrescription(ctx context.Context, doctorID, prescriptionID string) (*clinical.Prescription, error) {
	prescription, err := s.prescriptions.FindByID(ctx, prescriptionID, doctorID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}
	return prescription, nil
}

// UpdatePrescriptionStatus 更新处方状态（完成/作废）
func (s *ClinicalService) UpdatePrescriptionStatus(ctx context.Context, doctorID, prescriptionID string, status clinical.PrescriptionStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	err := s.prescriptions.UpdateStatus(ctx, prescriptionID, doctorID, status)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrPrescriptionNotFound
	}
	return err
}

// ListPrescriptions 查询患者的处方列表
func (s *ClinicalService) ListPrescriptions(ctx context.Context, doctorID, patientID string, limit, offset int64) ([]*clinical.Prescription, int64, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, doctorID, limit, offset)
}

// ===== 检验报告 =====

// CreateLabReport 录入检验报告
func (s *ClinicalService) CreateLabReport(ctx context.Context, doctorID string, report *clinical.LabReport) (*clinical.LabReport, error) {
	report.Title = strings.TrimSpace(report.Title)
	if report.PatientID == "" || report.Title == "" {
		return nil, ErrInvalidLabReport
	}

	if _, err := s.GetPatient(ctx, doctorID, report.PatientID); err != nil {
		return nil, err
	}

	report.ID = id.New()
	report.DoctorID = doctorID
	if err := s.labReports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// GetLabReport 查询检验报告
func (s *ClinicalService) GetLabReport(ctx context.Context, doctorID, reportID string) (*clinical.LabReport, error) {
	report, err := s.labReports.FindByID(ctx, reportID, doctorID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLabReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// ListLabReports 查询患者的检验报告列表
func (s *ClinicalService) ListLabReports(ctx context.Context, doctorID, patientID string, limit, offset int64) ([]*clinical.LabReport, int64, error) {
	return s.labReports.ListByPatient(ctx, patientID, doctorID, limit, offset)
}

// ===== 护士 =====

// CreateNurse 登记护士档案
func (s *ClinicalService) CreateNurse(ctx context.Context, nurse *clinical.Nurse) (*clinical.Nurse, error) {
	nurse.Name = strings.TrimSpace(nurse.Name)
	nurse.Department = strings.TrimSpace(nurse.Department)
	if nurse.Name == "" || nurse.Department == "" {
		return nil, ErrInvalidNurse
	}
	if nurse.Status == "" {
		nurse.Status = clinical.NurseStatusActive
	}
	if !nurse.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	nurse.ID = id.New()
	if err := s.nurses.Create(ctx, nurse); err != nil {
		return nil, err
	}
	return nurse, nil
}

// GetNurse 查询护士档案
func (s *ClinicalService) GetNurse(ctx context.Context, nurseID string) (*clinical.Nurse, error) {
	nurse, err := s.nurses.FindByID(ctx, nurseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNurseNotFound
		}
		return nil, err
	}
	return nurse, nil
}

// UpdateNurse 更新护士档案（仅覆盖给定字段）
func (s *ClinicalService) UpdateNurse(ctx context.Context, nurseID string, fields bson.M) error {
	if len(fields) == 0 {
		return ErrInvalidNurse
	}
	if status, ok := fields["status"].(clinical.NurseStatus); ok && !status.IsValid() {
		return ErrInvalidStatus
	}

	err := s.nurses.Update(ctx, nurseID, bson.M{"$set": fields})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNurseNotFound
	}
	return err
}

// ListNurses 查询护士列表（可按科室过滤）
func (s *ClinicalService) ListNurses(ctx context.Context, department string, limit, offset int64) ([]*clinical.Nurse, int64, error) {
	return s.nurses.List(ctx, strings.TrimSpace(department), limit, offset)
}
