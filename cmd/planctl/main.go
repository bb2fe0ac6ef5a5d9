package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blog-planner-go/internal/assistant"
	"blog-planner-go/internal/cli"
	"blog-planner-go/internal/config"
	"blog-planner-go/pkg/llm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		NewResponder: newResponder,
		In:           os.Stdin,
		Out:          os.Stdout,
	}
	if err := cli.NewRootCmd(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newResponder 未指定配置文件时使用无延迟的模板回复。
func newResponder(configPath, mode string) (assistant.Responder, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg.Assistant.Mode = "mock"
	}
	if mode != "" {
		cfg.Assistant.Mode = mode
	}

	var client llm.Client
	if cfg.Assistant.Mode == "llm" {
		client = llm.NewClient(cfg.LLM)
	}
	return assistant.New(cfg.Assistant, cfg.LLM, client)
}
