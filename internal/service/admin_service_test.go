package service

import (
	"context"
	"testing"
	"time"

	"blog-planner-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_Conversations(t *testing.T) {
	users := &memUserRepo{}
	require.NoError(t, users.Create(&model.User{Email: "a@example.com", Name: "A", Role: "USER"}))
	require.NoError(t, users.Create(&model.User{Email: "b@example.com", Name: "B", Role: "ADMIN"}))

	convRepo := newMemConversationRepo()
	ctx := context.Background()
	old := model.NewMessage(model.RoleUser, "old")
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	idA, _ := convRepo.GetOrCreateConversationID(ctx, 1)
	require.NoError(t, convRepo.UpdateConversationHistory(ctx, idA, []model.Message{old, model.NewMessage(model.RoleAssistant, "fresh")}))
	idB, _ := convRepo.GetOrCreateConversationID(ctx, 2)
	require.NoError(t, convRepo.UpdateConversationHistory(ctx, idB, []model.Message{model.NewMessage(model.RoleUser, "hello")}))

	svc := NewAdminService(users, convRepo)

	all, err := svc.GetAllConversations(ctx, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a@example.com", all[0].Email)
	assert.Equal(t, "b@example.com", all[2].Email)

	since := time.Now().Add(-time.Hour)
	uid := uint(1)
	filtered, err := svc.GetAllConversations(ctx, &uid, &since, nil)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "fresh", filtered[0].Content)

	missing := uint(42)
	_, err = svc.GetAllConversations(ctx, &missing, nil, nil)
	assert.Error(t, err)

	mappings, err := svc.ConversationMappings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{1: idA, 2: idB}, mappings)

	list, err := svc.ListUsers()
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "ADMIN", list[1].Role)
}
