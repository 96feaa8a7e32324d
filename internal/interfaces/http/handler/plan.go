package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"layr-ai-api/internal/domain/entity"
	"layr-ai-api/internal/interfaces/http/dto"
	"layr-ai-api/pkg/errors"
	"layr-ai-api/pkg/logger"
)

const markdownContentType = "text/markdown; charset=utf-8"

// PlanHandler 计划处理器
type PlanHandler struct {
	plans PlanService
}

// NewPlanHandler 创建计划处理器
func NewPlanHandler(plans PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// GeneratePlan 生成计划
// @Summary 生成项目计划
// @Tags Plans
// @Accept json
// @Produce json
// @Param body body dto.GeneratePlanRequest true "需求描述"
// @Param include_markdown query bool false "同时返回 Markdown"
// @Success 200 {object} dto.Response[dto.PlanResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 412 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/plans [post]
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	plan, ok := h.generate(c)
	if !ok {
		return
	}

	resp := dto.PlanResponse{ProjectPlan: plan}
	if include, _ := strconv.ParseBool(c.Query("include_markdown")); include {
		resp.Markdown = h.plans.RenderMarkdown(plan)
	}
	dto.Success(c, resp)
}

// GenerateMarkdown 生成计划并直接返回 Markdown 文档
// @Summary 生成 Markdown 计划
// @Tags Plans
// @Accept json
// @Produce text/markdown
// @Param body body dto.GeneratePlanRequest true "需求描述"
// @Success 200 {string} string
// @Router /v1/plans/markdown [post]
func (h *PlanHandler) GenerateMarkdown(c *gin.Context) {
	plan, ok := h.generate(c)
	if !ok {
		return
	}
	h.writeMarkdown(c, plan)
}

func (h *PlanHandler) generate(c *gin.Context) (*entity.ProjectPlan, bool) {
	ctx := c.Request.Context()

	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return nil, false
	}
	genReq, err := req.ToGenerateRequest()
	if err != nil {
		dto.AppError(c, err)
		return nil, false
	}

	plan, err := h.plans.GeneratePlan(ctx, req.Prompt, genReq)
	if err != nil {
		if !errors.IsAppError(err) {
			logger.Error(ctx, "failed to generate plan", err)
		}
		dto.AppError(c, err)
		return nil, false
	}
	return plan, true
}

// ListPlans 列出归档计划
// @Summary 列出归档计划
// @Tags Plans
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.PlanRecordListResponse]
// @Router /v1/plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	ctx := c.Request.Context()
	page := dto.BindPage(c)

	result, err := h.plans.ListPlans(ctx, page.Page, page.PageSize)
	if err != nil {
		logger.Error(ctx, "failed to list plans", err)
		dto.AppError(c, err)
		return
	}

	dto.SuccessWithPage(c, dto.ToPlanRecordListResponse(result.Items), dto.PageMetaOf(result))
}

// GetPlan 获取归档计划
// @Summary 获取归档计划
// @Tags Plans
// @Produce json
// @Param id path string true "计划 ID"
// @Success 200 {object} dto.Response[dto.PlanResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/plans/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, ok := h.load(c)
	if !ok {
		return
	}
	dto.Success(c, dto.PlanResponse{ProjectPlan: plan})
}

// GetPlanMarkdown 以 Markdown 返回归档计划
// @Summary 获取归档计划的 Markdown
// @Tags Plans
// @Produce text/markdown
// @Param id path string true "计划 ID"
// @Success 200 {string} string
// @Router /v1/plans/{id}/markdown [get]
func (h *PlanHandler) GetPlanMarkdown(c *gin.Context) {
	plan, ok := h.load(c)
	if !ok {
		return
	}
	h.writeMarkdown(c, plan)
}

func (h *PlanHandler) load(c *gin.Context) (*entity.ProjectPlan, bool) {
	ctx := c.Request.Context()
	plan, err := h.plans.GetPlan(ctx, dto.BindPlanID(c))
	if err != nil {
		if !errors.IsAppError(err) {
			logger.Error(ctx, "failed to get plan", err)
		}
		dto.AppError(c, err)
		return nil, false
	}
	return plan, true
}

func (h *PlanHandler) writeMarkdown(c *gin.Context, plan *entity.ProjectPlan) {
	if plan.ID != "" {
		c.Header("X-Plan-ID", plan.ID)
	}
	c.Data(http.StatusOK, markdownContentType, []byte(h.plans.RenderMarkdown(plan)))
}
