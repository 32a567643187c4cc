package clinical

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"medkit/internal/model/clinical"
)

// CreateNurseRequest 登记护士请求
type CreateNurseRequest struct {
	Name       string `json:"name" binding:"required"`       // 姓名（必填）
	Department string `json:"department" binding:"required"` // 科室（必填）
	Phone      string `json:"phone"`
	LicenseNo  string `json:"license_no"` // 执业证号
	Status     string `json:"status"`     // active/on_leave/left，缺省active
}

// UpdateNurseRequest 更新护士请求（仅覆盖非空字段）
type UpdateNurseRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Phone      *string `json:"phone"`
	LicenseNo  *string `json:"license_no"`
	Status     *string `json:"status"`
}

// CreateNurse 登记护士档案
// @Summary      登记护士档案
// @Tags         护士
// @Accept       json
// @Produce      json
// @Param        request  body      CreateNurseRequest  true  "护士信息"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/nurses [post]
func (h *Handler) CreateNurse(c *gin.Context) {
	if _, ok := requireDoctorID(c); !ok {
		return
	}

	var req CreateNurseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "Invalid request body", Detail: err.Error()})
		return
	}

	nurse := &clinical.Nurse{
		Name:       req.Name,
		Department: req.Department,
		Phone:      req.Phone,
		LicenseNo:  req.LicenseNo,
		Status:     clinical.NurseStatus(req.Status),
	}

	created, err := h.clinicalService.CreateNurse(c.Request.Context(), nurse)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "护士档案已登记", "data": created})
}

// GetNurse 获取护士档案
// @Summary      获取护士档案
// @Tags         护士
// @Produce      json
// @Param        id  path      string  true  "护士ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/nurses/{id} [get]
func (h *Handler) GetNurse(c *gin.Context) {
	if _, ok := requireDoctorID(c); !ok {
		return
	}

	nurse, err := h.clinicalService.GetNurse(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": nurse})
}

// UpdateNurse 更新护士档案
// @Summary      更新护士档案
// @Tags         护士
// @Accept       json
// @Produce      json
// @Param        id      path      string              true  "护士ID"
// @Param        request  body      UpdateNurseRequest  true  "更新字段"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/nurses/{id} [put]
func (h *Handler) UpdateNurse(c *gin.Context) {
	if _, ok := requireDoctorID(c); !ok {
		return
	}

	var req UpdateNurseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "Invalid request body", Detail: err.Error()})
		return
	}

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Department != nil {
		fields["department"] = *req.Department
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.LicenseNo != nil {
		fields["license_no"] = *req.LicenseNo
	}
	if req.Status != nil {
		fields["status"] = clinical.NurseStatus(*req.Status)
	}

	if err := h.clinicalService.UpdateNurse(c.Request.Context(), c.Param("id"), fields); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "护士档案已更新"})
}

// ListNurses 获取护士列表
// @Summary      获取护士列表
// @Description  全院护士登记，可按科室过滤
// @Tags         护士
// @Produce      json
// @Param        department  query     string  false  "科室"
// @Param        limit       query     int     false  "每页数量"  default(20)
// @Param        offset      query     int     false  "偏移量"   default(0)
// @Success      200        {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/v1/nurses [get]
func (h *Handler) ListNurses(c *gin.Context) {
	if _, ok := requireDoctorID(c); !ok {
		return
	}

	limit, offset := parsePagination(c)
	nurses, total, err := h.clinicalService.ListNurses(c.Request.Context(), c.Query("department"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"nurses": nurses,
			"total":  total,
		},
	})
}
