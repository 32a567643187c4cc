package model

// ChatResponse 对话响应
type ChatResponse struct {
	ConversationID string      `json:"conversation_id"`
	Reply          string      `json:"reply"`
	LatencyMs      int64       `json:"latency_ms"`
	Usage          *TokenUsage `json:"usage,omitempty"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// TokenUsage Token 使用统计
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
