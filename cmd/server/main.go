// Package main 是应用程序的入口点。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-planner-go/internal/assistant"
	"blog-planner-go/internal/config"
	"blog-planner-go/internal/handler"
	"blog-planner-go/internal/model"
	"blog-planner-go/internal/pipeline"
	"blog-planner-go/internal/repository"
	"blog-planner-go/internal/service"
	"blog-planner-go/pkg/database"
	"blog-planner-go/pkg/es"
	"blog-planner-go/pkg/kafka"
	"blog-planner-go/pkg/llm"
	"blog-planner-go/pkg/log"
	"blog-planner-go/pkg/storage"
	"blog-planner-go/pkg/token"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置
	config.Init(*configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	if err := log.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与外部存储
	database.InitMySQL(cfg.Database.MySQL.DSN, &model.User{}, &model.ExportRecord{})
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	producer := kafka.NewProducer(cfg.Kafka)
	defer func() {
		if err := producer.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}()

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	exportRepo := repository.NewExportRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.RDB, cfg.Conversation.TTL())
	blacklist := repository.NewTokenBlacklist(database.RDB)

	// 5. 初始化 Service (依赖注入)
	var llmClient llm.Client
	if cfg.Assistant.Mode == "llm" {
		llmClient = llm.NewClient(cfg.LLM)
	}
	responder, err := assistant.New(cfg.Assistant, cfg.LLM, llmClient)
	if err != nil {
		log.Fatal("初始化助手失败", err)
	}
	log.Infof("助手模式: %s", cfg.Assistant.Mode)

	store := storage.NewStore(storage.MinioClient, cfg.MinIO.BucketName)
	planIndex := es.NewPlanIndex(es.ESClient, cfg.Elasticsearch.IndexName)
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		// 未配置密钥时使用进程内随机密钥，重启后已签发的 token 全部失效
		jwtSecret = token.GenerateRandomString(32)
		log.Warnf("jwt.secret 未配置，已生成临时密钥")
	}
	jwtManager := token.NewJWTManager(jwtSecret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)

	userService := service.NewUserService(userRepo, blacklist, jwtManager)
	conversationService := service.NewConversationService(conversationRepo)
	services := handler.Services{
		User:         userService,
		Conversation: conversationService,
		Chat:         service.NewChatService(responder, conversationRepo, cfg.Assistant.RespondingTTL()),
		Plan:         service.NewPlanService(conversationService, exportRepo, producer, store, time.Duration(cfg.MinIO.URLExpireHours)*time.Hour),
		Search:       service.NewSearchService(planIndex),
		Admin:        service.NewAdminService(userRepo, conversationRepo),
	}

	if err := userService.EnsureDemoUser(); err != nil {
		log.Errorf("创建演示账号失败: %v", err)
	}

	// 6. 启动后台导出消费者
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	processor := pipeline.NewProcessor(store, planIndex, exportRepo)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		kafka.StartConsumer(consumerCtx, cfg.Kafka, processor, database.RDB)
	}()

	// 7. 注册路由并启动 HTTP 服务器
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: handler.NewRouter(cfg.Server.Mode, jwtManager, services),
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	stopConsumer()
	select {
	case <-consumerDone:
	case <-ctx.Done():
		log.Warnf("等待 Kafka 消费者退出超时")
	}
	log.Info("服务已优雅关闭")
}
