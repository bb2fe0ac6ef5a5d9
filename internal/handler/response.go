package handler

import (
	"net/http"

	"blog-planner-go/internal/middleware"
	"blog-planner-go/internal/model"

	"github.com/gin-gonic/gin"
)

// respond 以统一的 {"code","message","data"} 结构返回。
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": data})
}

// currentUser 取出 AuthMiddleware 注入的用户，缺失时直接写出 500 并返回 false。
func currentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(middleware.ContextUser)
	if !exists {
		respond(c, http.StatusInternalServerError, "无法获取用户信息", nil)
		return nil, false
	}
	user, ok := value.(*model.User)
	if !ok || user == nil {
		respond(c, http.StatusInternalServerError, "用户数据类型错误", nil)
		return nil, false
	}
	return user, true
}
