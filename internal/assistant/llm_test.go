package assistant

import (
	"context"
	"errors"
	"testing"

	"blog-planner-go/internal/config"
	"blog-planner-go/internal/model"
	"blog-planner-go/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	chunks []string
	err    error
	got    []llm.Message
}

func (f *fakeLLM) StreamChatMessages(_ context.Context, messages []llm.Message, _ *llm.GenerationParams, w llm.MessageWriter) error {
	f.got = messages
	for _, c := range f.chunks {
		if err := w.WriteMessage(1, []byte(c)); err != nil {
			return err
		}
	}
	return f.err
}

func TestLLMResponder_JoinsChunks(t *testing.T) {
	fake := &fakeLLM{chunks: []string{"Who is ", "your audience?"}}
	r := NewLLMResponder(fake, "be brief", nil, "")

	transcript := []model.Message{
		model.NewMessage(model.RoleUser, "hi"),
		model.NewMessage(model.RoleAssistant, "hello"),
		model.NewMessage(model.RoleUser, "I want to blog about tea"),
	}
	reply, err := r.Respond(context.Background(), "I want to blog about tea", transcript)
	require.NoError(t, err)
	assert.Equal(t, "Who is your audience?", reply)

	require.Len(t, fake.got, 4)
	assert.Equal(t, llm.Message{Role: "system", Content: "be brief"}, fake.got[0])
	assert.Equal(t, llm.Message{Role: "user", Content: "I want to blog about tea"}, fake.got[3])
}

func TestLLMResponder_AppendsMissingInput(t *testing.T) {
	fake := &fakeLLM{chunks: []string{"ok"}}
	r := NewLLMResponder(fake, "", nil, "")

	_, err := r.Respond(context.Background(), "new question", nil)
	require.NoError(t, err)
	assert.Equal(t, []llm.Message{{Role: "user", Content: "new question"}}, fake.got)
}

func TestLLMResponder_ErrorFallsBack(t *testing.T) {
	fake := &fakeLLM{chunks: []string{"partial"}, err: errors.New("stream reset")}
	r := NewLLMResponder(fake, "", nil, "")

	reply, err := r.Respond(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultFallback, reply)
}

func TestLLMResponder_EmptyReplyFallsBack(t *testing.T) {
	r := NewLLMResponder(&fakeLLM{chunks: []string{"  "}}, "", nil, "sorry")

	reply, err := r.Respond(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "sorry", reply)
}

func TestNew_Modes(t *testing.T) {
	mock, err := New(config.AssistantConfig{Mode: "mock"}, config.LLMConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockResponder{}, mock)

	remote, err := New(config.AssistantConfig{Mode: "remote", RemoteURL: "http://example.test"}, config.LLMConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RemoteResponder{}, remote)
	assert.Equal(t, DefaultFallback, remote.(*RemoteResponder).fallback)

	viaLLM, err := New(config.AssistantConfig{Mode: "llm"}, config.LLMConfig{}, &fakeLLM{})
	require.NoError(t, err)
	assert.IsType(t, &LLMResponder{}, viaLLM)

	_, err = New(config.AssistantConfig{Mode: "llm"}, config.LLMConfig{}, nil)
	assert.Error(t, err)

	_, err = New(config.AssistantConfig{Mode: "oracle"}, config.LLMConfig{}, nil)
	assert.Error(t, err)
}

func TestLLMResponder_CancelledContextReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := &fakeLLM{chunks: []string{"partial"}, err: context.Canceled}

	reply, err := NewLLMResponder(fake, "", nil, "").Respond(ctx, "hi", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reply)
}
