package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medkit/internal/ai"
	"medkit/internal/model"
	"medkit/internal/pkg/ctxutil"
	chatrepo "medkit/internal/repository/chat"
	"medkit/internal/service"
)

// Chat 发送消息并获取助手回复
// @Summary      医学助手对话
// @Description  在指定对话中发送一条消息，返回本地医学模型的回复；不传conversation_id则新建对话
// @Tags         对话
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChatRequest  true  "对话请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      502     {object}  ErrorResponse
// @Failure      504     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	ownerID, ok := ctxutil.GetUserID(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	resp, err := h.chatService.Chat(ctx, ownerID, &req)
	if err != nil {
		h.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    resp,
	})
}

// writeChatError 将对话业务错误映射为HTTP错误响应
// 推理失败时医生消息已落库，客户端可在同一对话中重试
func (h *Handler) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, ai.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40002,
			Message: "消息不能为空",
		})
	case errors.Is(err, chatrepo.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    40401,
			Message: "对话不存在",
		})
	default:
		var infErr *ai.InferenceError
		if errors.As(err, &infErr) {
			if infErr.Reason == ai.ReasonTimeout {
				c.JSON(http.StatusGatewayTimeout, ErrorResponse{
					Code:    50401,
					Message: "模型推理超时",
					Detail:  infErr.Error(),
				})
				return
			}
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Code:    50201,
				Message: "模型推理失败",
				Detail:  infErr.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "Internal server error",
			Detail:  err.Error(),
		})
	}
}
