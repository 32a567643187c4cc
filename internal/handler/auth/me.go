package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medkit/internal/model/auth"
	"medkit/internal/pkg/ctxutil"
	"medkit/internal/service"
)

// GetMe 获取当前医生信息
// @Summary      获取当前医生信息
// @Description  返回当前登录医生的账号与执业信息（科室、职称、执业证号）
// @Tags         认证
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()

	// 身份已由Auth中间件校验，这里直接取上下文里的医生ID
	userID, ok := ctxutil.GetUserID(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Code:    40101,
				Message: "用户不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "Internal server error",
			Detail:  err.Error(),
		})
		return
	}

	// Token签发后被禁用的账号不再放行
	if user.Status == auth.UserStatusBanned {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Code:    40006,
			Message: "用户已被禁用",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toUserInfo(user),
	})
}
