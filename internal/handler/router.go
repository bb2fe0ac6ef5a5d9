package handler

import (
	"blog-planner-go/internal/middleware"
	"blog-planner-go/internal/service"
	"blog-planner-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// Services 汇总路由需要的业务服务。
type Services struct {
	User         service.UserService
	Conversation service.ConversationService
	Chat         service.ChatService
	Plan         service.PlanService
	Search       service.SearchService
	Admin        service.AdminService
}

// NewRouter 创建 Gin 引擎并注册全部路由。
func NewRouter(mode string, jwtManager *token.JWTManager, svc Services) *gin.Engine {
	gin.SetMode(mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	userHandler := NewUserHandler(svc.User)
	chatHandler := NewChatHandler(svc.Chat, svc.User, jwtManager)
	planHandler := NewPlanHandler(svc.Plan)
	conversationHandler := NewConversationHandler(svc.Conversation)
	authed := middleware.AuthMiddleware(jwtManager, svc.User)

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", NewAuthHandler(svc.User).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			users.GET("/me", authed, userHandler.GetProfile)
			users.POST("/logout", authed, userHandler.Logout)
		}

		conversation := apiV1.Group("/conversation")
		conversation.Use(authed)
		{
			conversation.GET("", conversationHandler.GetConversation)
			conversation.DELETE("", conversationHandler.ResetConversation)
		}

		chat := apiV1.Group("/chat")
		chat.Use(authed)
		{
			chat.POST("/messages", chatHandler.SendMessage)
		}

		plan := apiV1.Group("/plan")
		plan.Use(authed)
		{
			plan.GET("", planHandler.GetPlan)
			plan.GET("/markdown", planHandler.DownloadMarkdown)
			plan.GET("/text", planHandler.GetText)
			plan.GET("/search", NewSearchHandler(svc.Search).SearchPlans)
			plan.POST("/exports", planHandler.RequestExport)
			plan.GET("/exports", planHandler.ListExports)
			plan.GET("/exports/:id", planHandler.GetExport)
		}

		admin := apiV1.Group("/admin")
		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin.Use(authed, middleware.AdminAuthMiddleware())
		{
			adminHandler := NewAdminHandler(svc.Admin)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/conversations", adminHandler.ConversationMappings)
			admin.GET("/conversations/messages", adminHandler.GetAllConversations)
		}
	}

	// WebSocket 无法携带 Authorization 头，token 放在路径中
	r.GET("/chat/:token", chatHandler.Handle)
	return r
}
