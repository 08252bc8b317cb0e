package models

import "time"

// ChatMessage is a persisted chat message. Real-time delivery happens over the
// platform's pub/sub feed; this service only stores the message and publishes
// it on the channel.
type ChatMessage struct {
	ID        string    `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Channel   string    `json:"channel" db:"channel"`
	UserID    string    `json:"user_id" db:"user_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PostChatMessageRequest posts a message to a channel.
type PostChatMessageRequest struct {
	Channel string `json:"channel" validate:"required"`
	Body    string `json:"body" validate:"required,max=4000"`
}

// ChatMessageListResponse is the response for listing chat messages.
type ChatMessageListResponse struct {
	Items      []ChatMessage `json:"items"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}
