package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"blog-planner-go/internal/model"
	"blog-planner-go/internal/planner"

	"github.com/spf13/cobra"
)

func newExtractCmd(app *App) *cobra.Command {
	var transcriptPath, format string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Derive the blog plan from a saved transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := loadTranscript(app, transcriptPath)
			if err != nil {
				return err
			}
			return runExtract(app, msgs, format)
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Transcript JSON file, or - for stdin")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, text, md or html")
	return cmd
}

// runExtract 在 json 格式下对过短的对话输出 null，其余格式视为错误。
func runExtract(app *App, msgs []model.Message, format string) error {
	plan := planner.Extract(msgs)
	if plan == nil {
		if format == "json" {
			_, err := fmt.Fprintln(app.Out, "null")
			return err
		}
		return errTooShort(msgs)
	}

	rendered, err := renderPlan(*plan, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(app.Out, rendered)
	return err
}

func newExportCmd(app *App) *cobra.Command {
	var transcriptPath, format, outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the plan file ({slug}-plan.md|html) for a saved transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			msgs, err := loadTranscript(app, transcriptPath)
			if err != nil {
				return err
			}
			path, err := runExport(msgs, model.ExportFormat(format), outDir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(app.Out, "已写入 %s\n", path)
			return err
		},
	}

	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "Transcript JSON file, or - for stdin")
	cmd.Flags().StringVar(&format, "format", string(model.ExportMarkdown), "Export format: md or html")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	return cmd
}

func runExport(msgs []model.Message, format model.ExportFormat, outDir string) (string, error) {
	if !format.Valid() {
		return "", fmt.Errorf("不支持的导出格式 %q", format)
	}
	plan := planner.Extract(msgs)
	if plan == nil {
		return "", errTooShort(msgs)
	}
	content, err := planner.Render(*plan, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("创建目录 %s 失败: %w", outDir, err)
	}
	path := filepath.Join(outDir, planner.FileName(*plan, format))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return path, nil
}

func errTooShort(msgs []model.Message) error {
	return fmt.Errorf("对话过短（%d 条消息），至少需要 %d 条才能生成计划", len(msgs), planner.MinTranscriptLen)
}

func renderPlan(plan model.BlogPlan, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "text":
		return planner.RenderText(plan), nil
	default:
		return planner.Render(plan, model.ExportFormat(format))
	}
}
