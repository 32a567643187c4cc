package chat

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"medkit/internal/pkg/ctxutil"
	chatrepo "medkit/internal/repository/chat"
)

// History 获取对话历史
// @Summary      获取对话历史
// @Description  按插入顺序返回对话的全部消息
// @Tags         对话
// @Produce      json
// @Param        id  path      string  true  "对话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/chat/conversations/{id} [get]
func (h *Handler) History(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctxutil.GetUserID(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 40101, Message: "未授权"})
		return
	}

	conversationID := c.Param("id")
	turns, err := h.chatService.History(ctx, ownerID, conversationID)
	if err != nil {
		if errors.Is(err, chatrepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Code: 40401, Message: "对话不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 50001, Message: "Internal server error", Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"conversation_id": conversationID,
			"turns":           turns,
		},
	})
}

// Clear 清空对话
// @Summary      清空对话
// @Description  清空对话的全部消息，保留对话本身；对话不存在返回404
// @Tags         对话
// @Produce      json
// @Param        id  path      string  true  "对话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/chat/conversations/{id} [delete]
func (h *Handler) Clear(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctxutil.GetUserID(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 40101, Message: "未授权"})
		return
	}

	conversationID := c.Param("id")
	if err := h.chatService.Clear(ctx, ownerID, conversationID); err != nil {
		if errors.Is(err, chatrepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Code: 40401, Message: "对话不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 50001, Message: "Internal server error", Detail: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "对话已清空",
	})
}

// List 获取对话列表
// @Summary      获取对话列表
// @Description  返回当前医生名下的对话列表，按最近更新时间倒序
// @Tags         对话
// @Produce      json
// @Param        limit   query     int  false  "每页数量"  default(20)
// @Param        offset  query     int  false  "偏移量"   default(0)
// @Success      200     {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /api/v1/chat/conversations [get]
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctxutil.GetUserID(ctx)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: 40101, Message: "未授权"})
		return
	}

	limit, offset := parsePagination(c)
	conversations, err := h.chatService.ListConversations(ctx, ownerID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 50001, Message: "Internal server error", Detail: err.Error()})
		return
	}

	// 列表只返回摘要，不带消息体
	type conversationSummary struct {
		ID        string `json:"id"`
		TurnCount int    `json:"turn_count"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	}
	summaries := make([]conversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summaries = append(summaries, conversationSummary{
			ID:        conv.ID,
			TurnCount: conv.TurnCount,
			CreatedAt: conv.CreatedAt.Format(time.RFC3339),
			UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"conversations": summaries,
		},
	})
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
