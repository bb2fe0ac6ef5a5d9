package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"blog-planner-go/internal/model"
	"blog-planner-go/internal/planner"

	"github.com/spf13/cobra"
)

func newChatCmd(app *App, preRun func(*cobra.Command, []string) error) *cobra.Command {
	var save string

	cmd := &cobra.Command{
		Use:     "chat",
		Short:   "Chat with the planning assistant on stdin",
		PreRunE: preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, app, save)
		},
	}

	cmd.Flags().StringVar(&save, "save", "", "Write the transcript JSON here on exit")
	return cmd
}

// maxLineBytes 是单行输入的上限，粘贴的长段落也能整行读入。
const maxLineBytes = 1 << 20

// runChat 逐行读取用户输入。/plan 打印当前计划，/reset 清空对话，/quit 退出。
// 消息按原样保存，去空白只用于判断空行和命令。
func runChat(cmd *cobra.Command, app *App, save string) error {
	ctx := cmd.Context()
	var transcript []model.Message
	var last *model.BlogPlan

	scanner := bufio.NewScanner(app.In)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case "":
			continue
		case "/quit":
			return saveTranscript(app, save, transcript)
		case "/reset":
			transcript, last = nil, nil
			fmt.Fprintln(app.Out, "-- new conversation --")
			continue
		case "/plan":
			if last == nil {
				fmt.Fprintln(app.Out, "(no plan yet)")
			} else {
				fmt.Fprintln(app.Out, planner.RenderText(*last))
			}
			continue
		}

		transcript = append(transcript, model.NewMessage(model.RoleUser, line))
		reply, err := app.Responder.Respond(ctx, line, transcript)
		if err != nil {
			return err
		}
		transcript = append(transcript, model.NewMessage(model.RoleAssistant, reply))
		fmt.Fprintf(app.Out, "assistant> %s\n", reply)

		if plan := planner.Extract(transcript); plan != nil {
			if last == nil || planner.RenderText(*last) != planner.RenderText(*plan) {
				fmt.Fprintf(app.Out, "plan> %s\n", strings.ReplaceAll(planner.RenderText(*plan), "\n", " | "))
			}
			last = plan
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("读取输入失败: %w", err)
	}
	return saveTranscript(app, save, transcript)
}

func saveTranscript(app *App, path string, transcript []model.Message) error {
	if path == "" {
		return nil
	}
	if transcript == nil {
		transcript = []model.Message{}
	}
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("保存对话记录失败: %w", err)
	}
	fmt.Fprintf(app.Out, "transcript saved to %s\n", path)
	return nil
}
