package resource

import (
	"medkit/internal/service"
)

// Handler 资源处理器
// 负责检验报告原件等附件的上传与下载
type Handler struct {
	resourceService *service.ResourceService
}

// NewHandler 创建资源处理器
func NewHandler(resourceService *service.ResourceService) *Handler {
	return &Handler{
		resourceService: resourceService,
	}
}

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
