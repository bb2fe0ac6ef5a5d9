package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"blog-planner-go/internal/model"
)

// loadTranscript 读取 JSON 数组形式的对话记录，"-" 表示标准输入。
func loadTranscript(app *App, path string) ([]model.Message, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return nil, errors.New("--transcript 不能为空")
	case "-":
		data, err = io.ReadAll(app.In)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("读取对话记录失败: %w", err)
	}
	return decodeTranscript(data)
}

func decodeTranscript(data []byte) ([]model.Message, error) {
	var msgs []model.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("解析对话记录失败: %w", err)
	}
	for i, m := range msgs {
		if m.Role != model.RoleUser && m.Role != model.RoleAssistant {
			return nil, fmt.Errorf("第 %d 条消息的 role %q 无效", i+1, m.Role)
		}
	}
	return msgs, nil
}
