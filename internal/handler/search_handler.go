// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"

	"blog-planner-go/internal/service"
	"blog-planner-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SearchHandler 负责处理计划搜索请求。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchPlans 在用户导出过的计划中搜索。
func (h *SearchHandler) SearchPlans(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	query := c.Query("q")
	topK, err := strconv.Atoi(c.DefaultQuery("topK", "10"))
	if err != nil {
		respond(c, http.StatusBadRequest, "无效的 topK 参数", nil)
		return
	}

	results, err := h.searchService.SearchPlans(c.Request.Context(), user.ID, query, topK)
	if err != nil {
		log.Errorf("SearchPlans: user %d, query '%s', error: %v", user.ID, query, err)
		respond(c, http.StatusInternalServerError, "搜索失败", nil)
		return
	}
	respond(c, http.StatusOK, "success", results)
}
