package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"blog-planner-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planFixture struct {
	svc       PlanService
	convRepo  *memConversationRepo
	exports   *memExportRepo
	publisher *recordingPublisher
}

func newPlanFixture() *planFixture {
	convRepo := newMemConversationRepo()
	exports := newMemExportRepo()
	publisher := &recordingPublisher{}
	svc := NewPlanService(NewConversationService(convRepo), exports, publisher, stubSigner{}, time.Hour)
	return &planFixture{svc: svc, convRepo: convRepo, exports: exports, publisher: publisher}
}

func (f *planFixture) seed(t *testing.T, userID uint, userLines ...string) {
	t.Helper()
	ctx := context.Background()
	id, err := f.convRepo.GetOrCreateConversationID(ctx, userID)
	require.NoError(t, err)
	var msgs []model.Message
	for _, line := range userLines {
		msgs = append(msgs, model.NewMessage(model.RoleUser, line), model.NewMessage(model.RoleAssistant, "..."))
	}
	require.NoError(t, f.convRepo.UpdateConversationHistory(ctx, id, msgs))
}

func TestGetPlan(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	plan, err := f.svc.GetPlan(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, plan)

	f.seed(t, 1, "Hi", "I want to blog about gardening tips")
	plan, err = f.svc.GetPlan(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "gardening tips", plan.Title)
}

func TestRequestExport_PublishesTask(t *testing.T) {
	f := newPlanFixture()
	f.seed(t, 3, "Hi", "I want to write about Mountain Biking")

	record, err := f.svc.RequestExport(context.Background(), 3, model.ExportHTML)
	require.NoError(t, err)

	assert.Equal(t, model.ExportPending, record.Status)
	assert.Equal(t, "mountain-biking-plan.html", record.FileName)
	assert.Equal(t, "Mountain Biking", record.Title)

	var snapshot model.BlogPlan
	require.NoError(t, json.Unmarshal([]byte(record.PlanJSON), &snapshot))
	assert.Equal(t, "Mountain Biking", snapshot.Title)

	require.Len(t, f.publisher.tasks, 1)
	task := f.publisher.tasks[0]
	assert.Equal(t, record.ID, task.ExportID)
	assert.Equal(t, uint(3), task.UserID)
	assert.Equal(t, model.ExportHTML, task.Format)
	assert.Equal(t, snapshot, task.Plan)
}

func TestRequestExport_LongTitleKeepsFullTitle(t *testing.T) {
	f := newPlanFixture()
	long := strings.TrimSpace(strings.Repeat("slow travel ", 40))
	f.seed(t, 4, "Hi", "I want to blog about "+long)

	record, err := f.svc.RequestExport(context.Background(), 4, model.ExportMarkdown)
	require.NoError(t, err)

	assert.Equal(t, long, record.Title)
	assert.LessOrEqual(t, utf8.RuneCountInString(record.FileName), 255)
	assert.True(t, strings.HasPrefix(record.FileName, "slow-travel-slow-travel"))
	assert.True(t, strings.HasSuffix(record.FileName, "-plan.md"))
}

func TestRequestExport_Rejections(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()

	_, err := f.svc.RequestExport(ctx, 1, model.ExportFormat("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = f.svc.RequestExport(ctx, 1, model.ExportMarkdown)
	assert.ErrorIs(t, err, ErrNoPlan)
	assert.Empty(t, f.exports.records)
}

func TestRequestExport_PublishFailureMarksRecord(t *testing.T) {
	f := newPlanFixture()
	f.publisher.err = errBoom
	f.seed(t, 1, "Hi", "there")

	_, err := f.svc.RequestExport(context.Background(), 1, model.ExportMarkdown)
	assert.ErrorIs(t, err, errBoom)

	require.Len(t, f.exports.records, 1)
	assert.Equal(t, model.ExportFailed, f.exports.records[1].Status)
	assert.Equal(t, "boom", f.exports.records[1].Error)
}

func TestGetExport(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	f.seed(t, 1, "Hi", "I want to blog about chess")

	record, err := f.svc.RequestExport(ctx, 1, model.ExportMarkdown)
	require.NoError(t, err)

	view, err := f.svc.GetExport(ctx, 1, record.ID)
	require.NoError(t, err)
	assert.Empty(t, view.DownloadURL)

	require.NoError(t, f.exports.MarkCompleted(record.ID, "exports/1/1/chess-plan.md"))
	view, err = f.svc.GetExport(ctx, 1, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files.local/exports/1/1/chess-plan.md?as=chess-plan.md", view.DownloadURL)

	_, err = f.svc.GetExport(ctx, 2, record.ID)
	assert.ErrorIs(t, err, ErrExportNotFound)
	_, err = f.svc.GetExport(ctx, 1, 404)
	assert.ErrorIs(t, err, ErrExportNotFound)

	list, err := f.svc.ListExports(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
