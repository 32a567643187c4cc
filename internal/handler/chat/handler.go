package chat

import (
	"medkit/internal/service"
)

// Handler 对话处理器
type Handler struct {
	chatService *service.ChatService
}

// NewHandler 创建对话处理器
func NewHandler(chatService *service.ChatService) *Handler {
	return &Handler{
		chatService: chatService,
	}
}

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
