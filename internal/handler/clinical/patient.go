package clinical

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"medkit/internal/model/clinical"
)

// CreatePatientRequest 创建患者请求
type CreatePatientRequest struct {
	Name           string   `json:"name" binding:"required"` // 姓名（必填）
	Gender         string   `json:"gender"`                  // 性别：male/female/other/unknown
	Age            int      `json:"age" binding:"gte=0"`     // 年龄
	Phone          string   `json:"phone"`
	Address        string   `json:"address"`
	BloodType      string   `json:"blood_type"`
	Allergies      []string `json:"allergies"`       // 过敏史
	MedicalHistory string   `json:"medical_history"` // 既往病史
}

// UpdatePatientRequest 更新患者请求（仅覆盖非空字段）
type UpdatePatientRequest struct {
	Name           *string   `json:"name"`
	Gender         *string   `json:"gender"`
	Age            *int      `json:"age"`
	Phone          *string   `json:"phone"`
	Address        *string   `json:"address"`
	BloodType      *string   `json:"blood_type"`
	Allergies      *[]string `json:"allergies"`
	MedicalHistory *string   `json:"medical_history"`
}

// CreatePatient 创建患者档案
// @Summary      创建患者档案
// @Tags         患者
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePatientRequest  true  "患者信息"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/patients [post]
func (h *Handler) CreatePatient(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	var req CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "Invalid request body", Detail: err.Error()})
		return
	}

	patient := &clinical.Patient{
		Name:           req.Name,
		Gender:         clinical.Gender(req.Gender),
		Age:            req.Age,
		Phone:          req.Phone,
		Address:        req.Address,
		BloodType:      req.BloodType,
		Allergies:      req.Allergies,
		MedicalHistory: req.MedicalHistory,
	}

	created, err := h.clinicalService.CreatePatient(c.Request.Context(), doctorID, patient)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "患者档案已创建", "data": created})
}

// GetPatient 获取患者档案
// @Summary      获取患者档案
// @Tags         患者
// @Produce      json
// @Param        id  path      string  true  "患者ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/patients/{id} [get]
func (h *Handler) GetPatient(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	patient, err := h.clinicalService.GetPatient(c.Request.Context(), doctorID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": patient})
}

// UpdatePatient 更新患者档案
// @Summary      更新患者档案
// @Tags         患者
// @Accept       json
// @Produce      json
// @Param        id      path      string                true  "患者ID"
// @Param        request  body      UpdatePatientRequest  true  "更新字段"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/patients/{id} [put]
func (h *Handler) UpdatePatient(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "Invalid request body", Detail: err.Error()})
		return
	}

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Gender != nil {
		fields["gender"] = clinical.Gender(*req.Gender)
	}
	if req.Age != nil {
		fields["age"] = *req.Age
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.BloodType != nil {
		fields["blood_type"] = *req.BloodType
	}
	if req.Allergies != nil {
		fields["allergies"] = *req.Allergies
	}
	if req.MedicalHistory != nil {
		fields["medical_history"] = *req.MedicalHistory
	}

	if err := h.clinicalService.UpdatePatient(c.Request.Context(), doctorID, c.Param("id"), fields); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "患者档案已更新"})
}

// ListPatients 获取患者列表
// @Summary      获取患者列表
// @Description  返回当前医生名下的患者列表，可按姓名前缀过滤
// @Tags         患者
// @Produce      json
// @Param        name    query     string  false  "姓名前缀"
// @Param        limit   query     int     false  "每页数量"  default(20)
// @Param        offset  query     int     false  "偏移量"   default(0)
// @Success      200     {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/v1/patients [get]
func (h *Handler) ListPatients(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	patients, total, err := h.clinicalService.ListPatients(c.Request.Context(), doctorID, c.Query("name"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"patients": patients,
			"total":    total,
		},
	})
}

// DeletePatient 删除患者档案
// @Summary      删除患者档案
// @Tags         患者
// @Produce      json
// @Param        id  path      string  true  "患者ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/patients/{id} [delete]
func (h *Handler) DeletePatient(c *gin.Context) {
	doctorID, ok := requireDoctorID(c)
	if !ok {
		return
	}

	if err := h.clinicalService.DeletePatient(c.Request.Context(), doctorID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "患者档案已删除"})
}
