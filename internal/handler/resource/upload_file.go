package resource

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"medkit/internal/pkg/ctxutil"
)

// 附件大小上限 32MB
const maxUploadSize = 32 << 20

// allowedExts 允许上传的文件类型（报告原件：PDF与常见图片）
var allowedExts = map[string]bool{
	"pdf": true, "png": true, "jpg": true, "jpeg": true, "webp": true,
}

// UploadFile 上传附件
// @Summary      上传附件
// @Description  上传检验报告原件等附件（multipart/form-data，字段名file），返回资源ID
// @Tags         资源
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "文件"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/resources [post]
func (h *Handler) UploadFile(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctxutil.GetUserID(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 40101, Message: "未授权"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40001, Message: "缺少上传文件", Detail: err.Error()})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40004, Message: "文件超过大小限制"})
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	if !allowedExts[ext] {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 40004, Message: "不支持的文件类型"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 50001, Message: "读取上传文件失败", Detail: err.Error()})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	res, err := h.resourceService.Upload(ctx, userID, fileHeader.Filename, ext, contentType, fileHeader.Size, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 50001, Message: "上传失败", Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "上传成功",
		"data":    res,
	})
}
