package provider

import "context"

// Prompt 單輪提示；System 為空時只送出使用者訊息
type Prompt struct {
	System    string
	User      string
	MaxTokens int
	// JSON 要求模型只回傳一個 JSON 物件
	JSON bool
}

// Completion 模型回覆
type Completion struct {
	Content     string
	Model       string
	TotalTokens int
}

// Provider 聊天補全提供者
type Provider interface {
	Complete(ctx context.Context, p Prompt) (*Completion, error)
	Model() string
}
