package assistant

import (
	"context"
	"math/rand/v2"
	"time"

	"blog-planner-go/internal/model"
	"blog-planner-go/internal/planner"
)

// MockOptions 配置模拟网络延迟，零值表示立即返回。
type MockOptions struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// MockResponder 用模板表回复，并在返回前等待一段模拟延迟。
type MockResponder struct {
	selector *planner.Selector
	opts     MockOptions
}

// NewMockResponder 创建一个 MockResponder。
func NewMockResponder(selector *planner.Selector, opts MockOptions) *MockResponder {
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	return &MockResponder{selector: selector, opts: opts}
}

// Respond 在延迟结束后返回模板回复，只会因 ctx 取消而失败。
func (m *MockResponder) Respond(ctx context.Context, input string, transcript []model.Message) (string, error) {
	reply := m.selector.Select(input, transcript)

	delay := m.delay()
	if delay <= 0 {
		return reply, nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *MockResponder) delay() time.Duration {
	spread := m.opts.MaxDelay - m.opts.MinDelay
	if spread <= 0 {
		return m.opts.MinDelay
	}
	return m.opts.MinDelay + rand.N(spread+1)
}
