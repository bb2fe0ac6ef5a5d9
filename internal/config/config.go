// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 环境变量前缀，例如 BLOGPLANNER_JWT_SECRET 覆盖 jwt.secret。
const envPrefix = "BLOGPLANNER"

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Assistant     AssistantConfig     `mapstructure:"assistant"`
	Conversation  ConversationConfig  `mapstructure:"conversation"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储导出任务队列的配置。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig 存储博客计划索引的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储导出文件对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	URLExpireHours  int    `mapstructure:"url_expire_hours"`
}

// LLMConfig 存储 llm 助手模式所用大模型的配置。
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
	Prompt     LLMPromptConfig     `mapstructure:"prompt"`
}

// LLMGenerationConfig 配置生成相关参数（可选，零值表示不传）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// LLMPromptConfig 配置系统提示。
type LLMPromptConfig struct {
	Rules string `mapstructure:"rules"`
}

// AssistantConfig 决定助手回复的来源。
// Mode 取值 mock / remote / llm。
type AssistantConfig struct {
	Mode                 string `mapstructure:"mode"`
	DelayMinMs           int    `mapstructure:"delay_min_ms"`
	DelayMaxMs           int    `mapstructure:"delay_max_ms"`
	RemoteURL            string `mapstructure:"remote_url"`
	FallbackMessage      string `mapstructure:"fallback_message"`
	RespondingTTLSeconds int    `mapstructure:"responding_ttl_seconds"`
}

// RespondingTTL 返回“助手回复中”标志的兜底过期时间。
func (a AssistantConfig) RespondingTTL() time.Duration {
	return time.Duration(a.RespondingTTLSeconds) * time.Second
}

// ConversationConfig 存储对话记录的保留策略。
type ConversationConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// TTL 返回对话在 Redis 中的保留时长。
func (c ConversationConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("jwt.refresh_token_expire_days", 7)
	v.SetDefault("kafka.topic", "blog-plan-exports")
	v.SetDefault("kafka.group_id", "blog-planner-export-consumer")
	v.SetDefault("elasticsearch.index_name", "blog_plans")
	v.SetDefault("minio.bucket_name", "blog-plans")
	v.SetDefault("minio.url_expire_hours", 1)
	v.SetDefault("assistant.mode", "mock")
	v.SetDefault("assistant.delay_min_ms", 800)
	v.SetDefault("assistant.delay_max_ms", 1000)
	v.SetDefault("assistant.fallback_message", "I'm sorry, I encountered an error processing your request. Please try again later.")
	v.SetDefault("assistant.responding_ttl_seconds", 120)
	v.SetDefault("conversation.ttl_hours", 7*24)
}

// Load 读取 YAML 配置文件，并叠加 .env 与环境变量覆盖。
func Load(configPath string) (Config, error) {
	// .env 仅在存在时加载，已有的环境变量优先
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("加载 .env 失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Assistant.Mode {
	case "mock", "remote", "llm":
	default:
		return fmt.Errorf("未知的 assistant.mode: %q", c.Assistant.Mode)
	}
	if c.Assistant.Mode == "remote" && c.Assistant.RemoteURL == "" {
		return errors.New("assistant.mode=remote 时必须配置 assistant.remote_url")
	}
	if c.Assistant.DelayMaxMs < c.Assistant.DelayMinMs {
		return fmt.Errorf("assistant.delay_max_ms (%d) 小于 delay_min_ms (%d)", c.Assistant.DelayMaxMs, c.Assistant.DelayMinMs)
	}
	return nil
}

// Init 加载配置到全局 Conf，失败时 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
