package resource

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"medkit/internal/pkg/ctxutil"
	"medkit/internal/service"
)

// 预签名下载URL的默认有效期
const defaultDownloadExpiry = 15 * time.Minute

// GetDownloadURL 获取下载链接
// @Summary      获取下载链接
// @Description  生成资源的预签名下载URL
// @Tags         资源
// @Produce      json
// @Param        id  path      string  true  "资源ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/resources/{id}/download-url [get]
func (h *Handler) GetDownloadURL(c *gin.Context) {
	ctx := c.Request.Context()
	if _, ok := ctxutil.GetUserID(ctx); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 40101, Message: "未授权"})
		return
	}

	url, err := h.resourceService.GetDownloadURL(ctx, c.Param("id"), defaultDownloadExpiry)
	if err != nil {
		if errors.Is(err, service.ErrResourceNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Code: 40401, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 50001, Message: "Internal server error", Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"download_url": url,
			"expires_in":   int(defaultDownloadExpiry.Seconds()),
		},
	})
}

// List 获取资源列表
// @Summary      获取资源列表
// @Description  返回当前医生上传的资源列表
// @Tags         资源
// @Produce      json
// @Param        limit   query     int  false  "每页数量"  default(20)
// @Param        offset  query     int  false  "偏移量"   default(0)
// @Success      200     {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/v1/resources [get]
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := ctxutil.GetUserID(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 40101, Message: "未授权"})
		return
	}

	limit := int64(20)
	offset := int64(0)
	if v, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64); err == nil && v >= 0 {
		offset = v
	}

	resources, total, err := h.resourceService.List(ctx, userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 50001, Message: "Internal server error", Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"resources": resources,
			"total":     total,
		},
	})
}

// Delete 删除资源
// @Summary      删除资源
// @Tags         资源
// @Produce      json
// @Param        id  path      string  true  "资源ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/resources/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	if _, ok := ctxutil.GetUserID(ctx); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 40101, Message: "未授权"})
		return
	}

	if err := h.resourceService.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrResourceNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Code: 40401, Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 50001, Message: "Internal server error", Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "资源已删除"})
}
