package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"blog-planner-go/internal/model"
	"blog-planner-go/internal/planner"
	"blog-planner-go/internal/service"
	"blog-planner-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// PlanHandler 负责计划的读取、下载与异步导出。
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler 创建一个新的 PlanHandler。
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// GetPlan 返回当前计划，对话过短时 data 为 null。
func (h *PlanHandler) GetPlan(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), user.ID)
	if err != nil {
		log.Errorf("GetPlan: user %d, error: %v", user.ID, err)
		respond(c, http.StatusInternalServerError, "获取计划失败", nil)
		return
	}
	respond(c, http.StatusOK, "success", plan)
}

// DownloadMarkdown 以附件形式返回 Markdown 计划。
func (h *PlanHandler) DownloadMarkdown(c *gin.Context) {
	plan, ok := h.requirePlan(c)
	if !ok {
		return
	}
	fileName := planner.FileName(*plan, model.ExportMarkdown)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, planner.ContentType(model.ExportMarkdown), []byte(planner.RenderMarkdown(*plan)))
}

// GetText 返回用于复制到剪贴板的纯文本计划。
func (h *PlanHandler) GetText(c *gin.Context) {
	plan, ok := h.requirePlan(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, planner.RenderText(*plan))
}

func (h *PlanHandler) requirePlan(c *gin.Context) (*model.BlogPlan, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), user.ID)
	if err != nil {
		log.Errorf("requirePlan: user %d, error: %v", user.ID, err)
		respond(c, http.StatusInternalServerError, "获取计划失败", nil)
		return nil, false
	}
	if plan == nil {
		respond(c, http.StatusNotFound, "对话尚未形成计划", nil)
		return nil, false
	}
	return plan, true
}

// ExportRequest 定义了导出 API 的请求体结构。
type ExportRequest struct {
	Format model.ExportFormat `json:"format" binding:"required"`
}

// RequestExport 创建异步导出任务。
func (h *PlanHandler) RequestExport(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "无效的请求负载：format 不能为空", nil)
		return
	}

	record, err := h.planService.RequestExport(c.Request.Context(), user.ID, req.Format)
	switch {
	case errors.Is(err, service.ErrUnsupportedFormat):
		respond(c, http.StatusBadRequest, "不支持的导出格式", nil)
	case errors.Is(err, service.ErrNoPlan):
		respond(c, http.StatusNotFound, "对话尚未形成计划", nil)
	case err != nil:
		log.Errorf("RequestExport: user %d, error: %v", user.ID, err)
		respond(c, http.StatusInternalServerError, "创建导出任务失败", nil)
	default:
		respond(c, http.StatusAccepted, "导出任务已提交", record)
	}
}

// GetExport 查询导出状态，完成后附带下载链接。
func (h *PlanHandler) GetExport(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respond(c, http.StatusBadRequest, "无效的导出 ID", nil)
		return
	}

	view, err := h.planService.GetExport(c.Request.Context(), user.ID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrExportNotFound) {
			respond(c, http.StatusNotFound, "导出记录不存在", nil)
			return
		}
		log.Errorf("GetExport: user %d, export %d, error: %v", user.ID, id, err)
		respond(c, http.StatusInternalServerError, "查询导出记录失败", nil)
		return
	}
	respond(c, http.StatusOK, "success", view)
}

// ListExports 列出当前用户的导出记录。
func (h *PlanHandler) ListExports(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	records, err := h.planService.ListExports(c.Request.Context(), user.ID)
	if err != nil {
		respond(c, http.StatusInternalServerError, "查询导出记录失败", nil)
		return
	}
	if records == nil {
		records = []model.ExportRecord{}
	}
	respond(c, http.StatusOK, "success", records)
}
