// Package log 封装了基于 zap 的全局结构化日志记录器。
package log

import (
	"fmt"
	"os"
	"path/filepath"

	"blog-planner-go/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 在 Init 之前使用 no-op logger，便于库代码与测试直接调用。
var sugar = zap.NewNop().Sugar()

// Init 按日志配置构建全局 logger。
func Init(cfg config.LogConfig) error {
	zapConfig, err := buildConfig(cfg)
	if err != nil {
		return err
	}
	logger, err := zapConfig.Build()
	if err != nil {
		return fmt.Errorf("构建 logger 失败: %w", err)
	}
	sugar = logger.Sugar()
	return nil
}

// buildConfig 把 level/format/output_path 映射为 zap.Config。
// 无法识别的级别退回 info；console 格式使用开发配置与彩色级别。
func buildConfig(cfg config.LogConfig) (zap.Config, error) {
	var zapConfig zap.Config
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Encoding = "json"
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}
	zapConfig.Level = level

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.OutputPath != "" {
		// 同时输出到 stdout 与 {output_path}/app.log
		if err := os.MkdirAll(cfg.OutputPath, 0o755); err != nil {
			return zap.Config{}, fmt.Errorf("创建日志目录失败: %w", err)
		}
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, filepath.Join(cfg.OutputPath, "app.log"))
	}
	return zapConfig, nil
}

func Info(msg string) {
	sugar.Info(msg)
}

func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

// Infow 使用键值对记录一条 info 级别的结构化日志。
func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

// Error 记录一条 error 级别的日志，并附带 error 信息
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}

// Fatal 记录日志后退出进程。
func Fatal(msg string, err error) {
	sugar.Fatalw(msg, "error", err)
}

func Fatalf(template string, args ...interface{}) {
	sugar.Fatalf(template, args...)
}

// Sync 刷新缓冲区，进程退出前调用。
func Sync() {
	_ = sugar.Sync()
}
