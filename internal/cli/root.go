// Package cli 实现离线规划命令行 planctl，复用服务端的回复与计划提取逻辑。
package cli

import (
	"io"

	"blog-planner-go/internal/assistant"

	"github.com/spf13/cobra"
)

// ResponderFactory 根据配置文件路径与模式覆盖构建回复来源。
type ResponderFactory func(configPath, mode string) (assistant.Responder, error)

// App 持有命令运行所需的依赖。
// Responder 为空时在命令执行前通过 NewResponder 构建。
type App struct {
	Responder    assistant.Responder
	NewResponder ResponderFactory
	In           io.Reader
	Out          io.Writer
}

// NewRootCmd 创建顶层 planctl 命令并注册全部子命令。
func NewRootCmd(app *App) *cobra.Command {
	var configPath, mode string

	root := &cobra.Command{
		Use:           "planctl",
		Short:         "Plan a blog from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (optional)")
	root.PersistentFlags().StringVar(&mode, "mode", "", "Assistant mode override: mock, remote or llm")

	ensureResponder := func(cmd *cobra.Command, _ []string) error {
		if app.Responder != nil || app.NewResponder == nil {
			return nil
		}
		r, err := app.NewResponder(configPath, mode)
		if err != nil {
			return err
		}
		app.Responder = r
		return nil
	}

	root.AddCommand(
		newChatCmd(app, ensureResponder),
		newRespondCmd(app, ensureResponder),
		newExtractCmd(app),
		newExportCmd(app),
	)

	root.SetIn(app.In)
	root.SetOut(app.Out)
	return root
}
