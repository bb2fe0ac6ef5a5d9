// Package model 包含了应用的数据模型定义。
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role 标识消息的发送方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 代表对话中的一轮发言，存储在 Redis 中。
// Content 原样保存，不做任何规范化或截断。
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage 创建一条带有新 ID 与当前时间戳的消息。
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		Role:      role,
		Timestamp: time.Now(),
	}
}

// IsUser 判断消息是否由用户发出。
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}
