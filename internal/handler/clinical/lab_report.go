package clinical

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medkit/internal/model/clinical"
)

// LabResultRequest 检验报告中的单项结果
type LabResultRequest struct {
	Item      string `json:"item" binding:"required"`  // 检验项目（必填）
	Value     string `json:"value" binding:"required"` // 结果值（必填）
	Unit      string `json:"unit"`
	Reference string `json:"reference"` // 参考范围
	Abnormal  bool   `json:"abnormal"`  // 是否异常
}

// CreateLabReportRequest 录入检验报告请求
type CreateLabReportRequest struct {
	PatientID  string             `json:"patient_id" binding:"required"`
	Title      string             `json:"title" binding:"required"` // 报告名称（如 血常规）
	Results    []LabResultRequest `json:"results" binding:"dive"`
	Summary    string             `json:"summary"`     // 结论
	ResourceID string             `json:"resource_id"` // 报告原件资源ID（可选）
	ReportedAt string             `json:"reported_at"` // 出具时间（RFC3339，缺省为当前时间）
}

// CreateLabReport 录入检验报告
// @Summary      录入检验报告
// @Description  录入结构化检验结果；报告原件先通过资源接口上传，再以resource_id关联
// @Tags         检验报告
// @Accept       json
// @Produce      json
// @Param        request  body      CreateLabReportRequest  true  "检验报告"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/lab-reports [post]
func (h *Handler) CreateLabReport(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	var req CreateLabReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "Invalid request body", Detail: err.Error()})
		return
	}

	var reportedAt time.Time
	if req.ReportedAt != "" {
		t, err := time.Parse(time.RFC3339, req.ReportedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "Invalid reported_at, expect RFC3339", Detail: err.Error()})
			return
		}
		reportedAt = t
	}

	results := make([]clinical.LabResult, 0, len(req.Results))
	for _, r := range req.Results {
		results = append(results, clinical.LabResult{
			Item:      r.Item,
			Value:     r.Value,
			Unit:      r.Unit,
			Reference: r.Reference,
			Abnormal:  r.Abnormal,
		})
	}

	report := &clinical.LabReport{
		PatientID:  req.PatientID,
		Title:      req.Title,
		Results:    results,
		Summary:    req.Summary,
		ResourceID: req.ResourceID,
		ReportedAt: reportedAt,
	}

	created, err := h.clinicalService.CreateLabReport(c.Request.Context(), doctorID, report)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "检验报告已录入", "data": created})
}

// GetLabReport 获取检验报告
// @Summary      获取检验报告
// @Tags         检验报告
// @Produce      json
// @Param        id  path      string  true  "报告ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/lab-reports/{id} [get]
func (h *Handler) GetLabReport(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	report, err := h.clinicalService.GetLabReport(c.Request.Context(), doctorID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": report})
}

// ListLabReports 获取患者的检验报告列表
// @Summary      获取患者的检验报告列表
// @Description  按出具时间倒序返回
// @Tags         检验报告
// @Produce      json
// @Param        patient_id  query     string  true   "患者ID"
// @Param        limit       query     int     false  "每页数量"  default(20)
// @Param        offset      query     int     false  "偏移量"   default(0)
// @Success      200        {object}  map[string]interface{}
// @Failure      400        {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/lab-reports [get]
func (h *Handler) ListLabReports(c *gin.Context) {
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
	reports, total, err := h.clinicalService.ListLabReports(c.Request.Context(), doctorID, patientID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"lab_reports": reports,
			"total":       total,
		},
	})
}
