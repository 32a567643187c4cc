package clinical

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medkit/internal/pkg/ctxutil"
	"medkit/internal/service"
)

// Handler 诊疗处理器
// 患者/处方/检验报告/护士相关的Handler方法都通过这个结构体访问Service
type Handler struct {
	clinicalService *service.ClinicalService
}

// NewHandler 创建诊疗处理器
func NewHandler(clinicalService *service.ClinicalService) *Handler {
	return &Handler{
		clinicalService: clinicalService,
	}
}

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// requireDoctorID 从 context 解析当前医生ID，失败时直接写401
func requireDoctorID(c *gin.Context) (string, bool) {
	doctorID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 40101, Message: "未授权"})
		return "", false
	}
	return doctorID, true
}

// parsePagination 解析分页参数，带默认值与上限
func parsePagination(c *gin.Context) (limit, offset int64) {
	limit = 20
	offset = 0
	if v, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	if v, err := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// writeError 将诊疗业务错误映射为HTTP错误响应
func writeError(c *gin.Context, err error) {
	switch err {
	case service.ErrPatientNotFound, service.ErrPrescriptionNotFound,
		service.ErrLabReportNotFound, service.ErrNurseNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Code: 40401, Message: err.Error()})
	case service.ErrInvalidPatient, service.ErrInvalidPrescription,
		service.ErrInvalidLabReport, service.ErrInvalidNurse, service.ErrInvalidStatus:
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40003, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 50001, Message: "Internal server error", Detail: err.Error()})
	}
}
