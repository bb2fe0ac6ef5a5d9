// Package assistant 提供助手回复的三种来源：
// 带模拟延迟的模板回复、固定远程文本接口，以及 OpenAI 兼容的大模型。
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-planner-go/internal/config"
	"blog-planner-go/internal/model"
	"blog-planner-go/internal/planner"
	"blog-planner-go/pkg/llm"
)

// DefaultFallback 是远程回复失败时替代的道歉语。
const DefaultFallback = "I'm sorry, I encountered an error processing your request. Please try again later."

// ErrResponseUnavailable 表示远程回复不可用（非 2xx 或传输失败）。
// 它只用于日志，不会返回给调用方。
var ErrResponseUnavailable = errors.New("assistant response unavailable")

// Responder 根据最新的用户输入与完整对话记录生成助手回复内容。
// transcript 已包含本轮的用户消息。
type Responder interface {
	Respond(ctx context.Context, input string, transcript []model.Message) (string, error)
}

// New 按配置的 mode 构建 Responder。llmClient 仅在 llm 模式下使用。
func New(cfg config.AssistantConfig, llmCfg config.LLMConfig, llmClient llm.Client) (Responder, error) {
	fallback := cfg.FallbackMessage
	if fallback == "" {
		fallback = DefaultFallback
	}

	switch cfg.Mode {
	case "", "mock":
		return NewMockResponder(planner.NewSelector(planner.DefaultTemplates()), MockOptions{
			MinDelay: time.Duration(cfg.DelayMinMs) * time.Millisecond,
			MaxDelay: time.Duration(cfg.DelayMaxMs) * time.Millisecond,
		}), nil
	case "remote":
		return NewRemoteResponder(cfg.RemoteURL, WithFallback(fallback)), nil
	case "llm":
		if llmClient == nil {
			return nil, errors.New("llm mode requires an llm client")
		}
		return NewLLMResponder(llmClient, llmCfg.Prompt.Rules, llm.GenerationFromConfig(llmCfg.Generation), fallback), nil
	default:
		return nil, fmt.Errorf("unknown assistant mode %q", cfg.Mode)
	}
}
