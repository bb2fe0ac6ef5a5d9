// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blog-planner-go/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ConversationRepository 定义了对话记录与"正在回复"标记的操作接口。
type ConversationRepository interface {
	GetOrCreateConversationID(ctx context.Context, userID uint) (string, error)
	GetConversationHistory(ctx context.Context, conversationID string) ([]model.Message, error)
	UpdateConversationHistory(ctx context.Context, conversationID string, messages []model.Message) error
	// ResetConversation 丢弃当前对话并为用户分配新的对话 ID。
	ResetConversation(ctx context.Context, userID uint) (string, error)
	// TryMarkResponding 原子地占用对话的回复标记，成功时返回本次占用的令牌，已被占用时返回 false。
	TryMarkResponding(ctx context.Context, conversationID string, ttl time.Duration) (token string, ok bool, err error)
	// ClearResponding 仅当标记仍属于 token 时才删除，过期后被他人重新占用的标记保持不变。
	ClearResponding(ctx context.Context, conversationID, token string) error
	IsResponding(ctx context.Context, conversationID string) (bool, error)
	GetAllUserConversationMappings(ctx context.Context) (map[uint]string, error)
}

type redisConversationRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例，ttl 作用于对话 ID 与消息记录。
func NewConversationRepository(redisClient *redis.Client, ttl time.Duration) ConversationRepository {
	return &redisConversationRepository{redisClient: redisClient, ttl: ttl}
}

func userConversationKey(userID uint) string {
	return fmt.Sprintf("user:%d:current_conversation", userID)
}

func historyKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s", conversationID)
}

func respondingKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:responding", conversationID)
}

// GetOrCreateConversationID 获取或创建一个新的对话ID。
func (r *redisConversationRepository) GetOrCreateConversationID(ctx context.Context, userID uint) (string, error) {
	convID, err := r.redisClient.Get(ctx, userConversationKey(userID)).Result()
	if err == redis.Nil {
		return r.assignConversationID(ctx, userID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get conversation id: %w", err)
	}
	return convID, nil
}

func (r *redisConversationRepository) assignConversationID(ctx context.Context, userID uint) (string, error) {
	convID := uuid.NewString()
	if err := r.redisClient.Set(ctx, userConversationKey(userID), convID, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to set conversation id: %w", err)
	}
	return convID, nil
}

// GetConversationHistory 从 Redis 获取对话记录，按追加顺序返回。
func (r *redisConversationRepository) GetConversationHistory(ctx context.Context, conversationID string) ([]model.Message, error) {
	jsonData, err := r.redisClient.Get(ctx, historyKey(conversationID)).Result()
	if err == redis.Nil {
		return []model.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}
	var messages []model.Message
	if err := json.Unmarshal([]byte(jsonData), &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation history: %w", err)
	}
	return messages, nil
}

// UpdateConversationHistory 整体覆盖对话记录。计划提取依赖完整记录，因此不做截断。
func (r *redisConversationRepository) UpdateConversationHistory(ctx context.Context, conversationID string, messages []model.Message) error {
	jsonData, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation history: %w", err)
	}
	if err := r.redisClient.Set(ctx, historyKey(conversationID), jsonData, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set conversation history: %w", err)
	}
	return nil
}

// ResetConversation 删除旧记录并轮换对话 ID。
func (r *redisConversationRepository) ResetConversation(ctx context.Context, userID uint) (string, error) {
	oldID, err := r.redisClient.Get(ctx, userConversationKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("failed to get conversation id: %w", err)
	}
	if oldID != "" {
		if err := r.redisClient.Del(ctx, historyKey(oldID), respondingKey(oldID)).Err(); err != nil {
			return "", fmt.Errorf("failed to delete conversation history: %w", err)
		}
	}
	return r.assignConversationID(ctx, userID)
}

// clearRespondingScript 比较令牌后再删除，保证只释放自己持有的标记。
var clearRespondingScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (r *redisConversationRepository) TryMarkResponding(ctx context.Context, conversationID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.redisClient.SetNX(ctx, respondingKey(conversationID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to mark conversation responding: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *redisConversationRepository) ClearResponding(ctx context.Context, conversationID, token string) error {
	err := clearRespondingScript.Run(ctx, r.redisClient, []string{respondingKey(conversationID)}, token).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to clear responding flag: %w", err)
	}
	return nil
}

func (r *redisConversationRepository) IsResponding(ctx context.Context, conversationID string) (bool, error) {
	n, err := r.redisClient.Exists(ctx, respondingKey(conversationID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check responding flag: %w", err)
	}
	return n > 0, nil
}

// GetAllUserConversationMappings returns map[userID]conversationID by scanning user:*:current_conversation
func (r *redisConversationRepository) GetAllUserConversationMappings(ctx context.Context) (map[uint]string, error) {
	keys, err := r.redisClient.Keys(ctx, "user:*:current_conversation").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan user conversation keys: %w", err)
	}
	result := make(map[uint]string)
	for _, k := range keys {
		var uid uint
		if _, scanErr := fmt.Sscanf(k, "user:%d:current_conversation", &uid); scanErr != nil {
			continue
		}
		convID, getErr := r.redisClient.Get(ctx, k).Result()
		if getErr != nil {
			continue
		}
		result[uid] = convID
	}
	return result, nil
}
