package clinical

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medkit/internal/model/clinical"
)

// MedicationRequest 处方中的单条用药
type MedicationRequest struct {
	Name      string `json:"name" binding:"required"`      // 药品名称（必填）
	Dosage    string `json:"dosage" binding:"required"`    // 剂量（必填）
	Frequency string `json:"frequency" binding:"required"` // 频次（必填）
	Duration  string `json:"duration"`                     // 疗程
	Notes     string `json:"notes"`
}

// CreatePrescriptionRequest 开具处方请求
type CreatePrescriptionRequest struct {
	PatientID   string              `json:"patient_id" binding:"required"`
	Diagnosis   string              `json:"diagnosis" binding:"required"`
	Medications []MedicationRequest `json:"medications" binding:"required,min=1,dive"`
	Notes       string              `json:"notes"`
}

// UpdatePrescriptionStatusRequest 更新处方状态请求
type UpdatePrescriptionStatusRequest struct {
	Status string `json:"status" binding:"required"` // active/completed/cancelled
}

// CreatePrescription 开具处方
// @Summary      开具处方
// @Tags         处方
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePrescriptionRequest  true  "处方信息"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/prescriptions [post]
func (h *Handler) CreatePrescription(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	var req CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "Invalid request body", Detail: err.Error()})
		return
	}

	medications := make([]clinical.Medication, 0, len(req.Medications))
	for _, med := range req.Medications {
		medications = append(medications, clinical.Medication{
			Name:      med.Name,
			Dosage:    med.Dosage,
			Frequency: med.Frequency,
			Duration:  med.Duration,
			Notes:     med.Notes,
		})
	}

	prescription := &clinical.Prescription{
		PatientID:   req.PatientID,
		Diagnosis:   req.Diagnosis,
		Medications: medications,
		Notes:       req.Notes,
	}

	created, err := h.clinicalService.CreatePrescription(c.Request.Context(), doctorID, prescription)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "处方已开具", "data": created})
}

// GetPrescription 获取处方
// @Summary      获取处方
// @Tags         处方
// @Produce      json
// @Param        id  path      string  true  "处方ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/prescriptions/{id} [get]
func (h *Handler) GetPrescription(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	prescription, err := h.clinicalService.GetPrescription(c.Request.Context(), doctorID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": prescription})
}

// UpdatePrescriptionStatus 更新处方状态
// @Summary      更新处方状态
// @Description  将处方标记为完成或作废
// @Tags         处方
// @Accept       json
// @Produce      json
// @Param        id      path      string                           true  "处方ID"
// @Param        request  body      UpdatePrescriptionStatusRequest  true  "状态"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/prescriptions/{id}/status [put]
func (h *Handler) UpdatePrescriptionStatus(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	var req UpdatePrescriptionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "Invalid request body", Detail: err.Error()})
		return
	}

	status := clinical.PrescriptionStatus(req.Status)
	if err := h.clinicalService.UpdatePrescriptionStatus(c.Request.Context(), doctorID, c.Param("id"), status); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "处方状态已更新"})
}

// ListPrescriptions 获取患者的处方列表
// @Summary      获取患者的处方列表
// @Tags         处方
// @Produce      json
// @Param        patient_id  query     string  true   "患者ID"
// @Param        limit       query     int     false  "每页数量"  default(20)
// @Param        offset      query     int     false  "偏移量"   default(0)
// @Success      200        {object}  map[string]interface{}
// @Failure      400        {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/prescriptions [get]
func (h *Handler) ListPrescriptions(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	patientID := c.Query("patient_id")
	if patientID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "patient_id is required"})
		return
	}

	limit, offset := parsePagination(c)
	prescriptions, total, err := h.clinicalService.ListPrescriptions(c.Request.Context(), doctorID, patientID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"prescriptions": prescriptions,
			"total":         total,
		},
	})
}
