package model

// ChatRequest 对话请求
// conversation_id 为空时由服务端分配新对话
type ChatRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id,omitempty"`
}
