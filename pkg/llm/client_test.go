package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blog-planner-go/internal/config"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	chunks []string
}

func (c *collector) WriteMessage(_ int, data []byte) error {
	c.chunks = append(c.chunks, string(data))
	return nil
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("skipping HTTP test: local listener unavailable (%v)", r)
			}
		}()
		srv = httptest.NewServer(handler)
	}()
	return srv
}

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"test-model","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`+"\n\n", content)
}

func TestStreamChatMessages_WritesChunks(t *testing.T) {
	var body map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, sseChunk("Hello"))
		_, _ = io.WriteString(w, sseChunk(", planner"))
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	})
	defer srv.Close()

	cfg := config.LLMConfig{APIKey: "k", BaseURL: srv.URL, Model: "test-model"}
	client := NewClient(cfg, option.WithMaxRetries(0))

	out := &collector{}
	temp := 0.2
	err := client.StreamChatMessages(context.Background(), []Message{
		{Role: "system", Content: "rules"},
		{Role: "user", Content: "hi"},
	}, &GenerationParams{Temperature: &temp}, out)
	require.NoError(t, err)

	assert.Equal(t, "Hello, planner", strings.Join(out.chunks, ""))
	assert.Equal(t, "test-model", body["model"])
	assert.Equal(t, true, body["stream"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-9)
}

func TestStreamChatMessages_ErrorStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	})
	defer srv.Close()

	client := NewClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"}, option.WithMaxRetries(0))
	err := client.StreamChatMessages(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil, &collector{})
	assert.Error(t, err)
}

func TestGenerationFromConfig(t *testing.T) {
	assert.Nil(t, GenerationFromConfig(config.LLMGenerationConfig{}))

	gp := GenerationFromConfig(config.LLMGenerationConfig{Temperature: 0.7, MaxTokens: 300})
	require.NotNil(t, gp)
	assert.Equal(t, 0.7, *gp.Temperature)
	assert.Nil(t, gp.TopP)
	assert.Equal(t, 300, *gp.MaxTokens)
}
