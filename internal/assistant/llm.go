package assistant

import (
	"context"
	"strings"

	"blog-planner-go/internal/model"
	"blog-planner-go/pkg/llm"
	"blog-planner-go/pkg/log"
)

// LLMResponder 把完整对话交给大模型，失败时与 RemoteResponder 一样退回道歉语。
type LLMResponder struct {
	client       llm.Client
	systemPrompt string
	gen          *llm.GenerationParams
	fallback     string
}

// NewLLMResponder 创建一个 LLMResponder。
func NewLLMResponder(client llm.Client, systemPrompt string, gen *llm.GenerationParams, fallback string) *LLMResponder {
	if fallback == "" {
		fallback = DefaultFallback
	}
	return &LLMResponder{client: client, systemPrompt: systemPrompt, gen: gen, fallback: fallback}
}

// chunkCollector 把流式分块拼接成完整回复。
type chunkCollector struct {
	sb strings.Builder
}

func (c *chunkCollector) WriteMessage(_ int, data []byte) error {
	c.sb.Write(data)
	return nil
}

// Respond 调用大模型生成回复。只有调用方取消或超时才返回错误。
func (r *LLMResponder) Respond(ctx context.Context, input string, transcript []model.Message) (string, error) {
	collector := &chunkCollector{}
	if err := r.client.StreamChatMessages(ctx, r.compose(input, transcript), r.gen, collector); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		log.Errorf("[LLMResponder] 调用大模型失败: %v", err)
		return r.fallback, nil
	}
	reply := strings.TrimSpace(collector.sb.String())
	if reply == "" {
		log.Warnf("[LLMResponder] 大模型返回空回复")
		return r.fallback, nil
	}
	return reply, nil
}

func (r *LLMResponder) compose(input string, transcript []model.Message) []llm.Message {
	msgs := make([]llm.Message, 0, len(transcript)+2)
	if r.systemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: r.systemPrompt})
	}
	for _, m := range transcript {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	// 调用方未把本轮输入写入记录时补上
	if n := len(transcript); n == 0 || !transcript[n-1].IsUser() || transcript[n-1].Content != input {
		msgs = append(msgs, llm.Message{Role: "user", Content: input})
	}
	return msgs
}
