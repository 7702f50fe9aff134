package controller

import (
	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/service"
	"dating_scan_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// @Summary 测评列表
// @Description 已发布的测评定义
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.DefinitionSummary}
// @Router /definitions [get]
func (c *AssessmentController) ListDefinitions(ctx *gin.Context) {
	defs, err := c.Service.ListDefinitions(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, defs)
}

// @Summary 获取题目
// @Description 按顺序返回题目，不包含计分维度
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评定义ID"
// @Success 200 {object} util.Response{data=model.QuestionSheet}
// @Failure 404 {object} util.Response
// @Router /definitions/{id}/questions [get]
func (c *AssessmentController) QuestionSheet(ctx *gin.Context) {
	sheet, err := c.Service.QuestionSheet(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, sheet)
}

// @Summary 重测状态
// @Description 当前用户是否可以开始新的测评
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.RetakeStatus}
// @Router /assessments/retake-status [get]
func (c *AssessmentController) RetakeStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.Service.RetakeStatus(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary 测评记录
// @Description 当前用户的测评记录，按开始时间倒序
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Assessment}
// @Router /assessments [get]
func (c *AssessmentController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.Service.History(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 开始测评
// @Tags 测评
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body model.StartAssessmentRequest true "要参加的测评"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 409 {object} util.Response "已有进行中的测评或处于冷却期"
// @Router /assessments [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req model.StartAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.StartAssessment(ctx.Request.Context(), user.UserID, req.DefinitionID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// @Summary 测评进度
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评记录ID"
// @Success 200 {object} util.Response{data=model.ProgressReport}
// @Router /assessments/{id} [get]
func (c *AssessmentController) Progress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	p, err := c.Service.Progress(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 提交答案
// @Description 保存或覆盖单题答案
// @Tags 测评
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评记录ID"
// @Param questionId path string true "题目ID"
// @Param body body model.SubmitResponseRequest true "陈述题填 likertValue，情景题填 selectedOptionId"
// @Success 200 {object} util.Response{data=model.AssessmentResponse}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "测评不在进行中"
// @Router /assessments/{id}/responses/{questionId} [put]
func (c *AssessmentController) SubmitResponse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req model.SubmitResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	row, err := c.Service.SubmitResponse(ctx.Request.Context(), user.UserID, ctx.Param("id"), ctx.Param("questionId"), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, row)
}

// @Summary 完成测评
// @Description 完成测评，返回维度得分和有效性报告
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评记录ID"
// @Success 200 {object} util.Response{data=model.FinalizeResult}
// @Failure 422 {object} util.Response "存在未作答的必答题"
// @Router /assessments/{id}/finalize [post]
func (c *AssessmentController) Finalize(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	out, err := c.Service.FinalizeAssessment(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, out)
}

// @Summary 预览结果
// @Description 按已作答题目计算结果，不完成测评
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评记录ID"
// @Success 200 {object} util.Response{data=scoring.Result}
// @Router /assessments/{id}/preview [post]
func (c *AssessmentController) Preview(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.Service.Preview(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 风格分类
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评记录ID"
// @Success 200 {object} util.Response{data=scoring.ClassificationResult}
// @Router /assessments/{id}/classification [get]
func (c *AssessmentController) Classification(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.Service.Classify(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 盲点分析
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评记录ID"
// @Success 200 {object} util.Response{data=scoring.BlindspotReport}
// @Router /assessments/{id}/blindspots [get]
func (c *AssessmentController) Blindspots(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.Service.ComputeBlindspots(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 完整结果
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评记录ID"
// @Success 200 {object} util.Response{data=scoring.Result}
// @Router /assessments/{id}/result [get]
func (c *AssessmentController) Result(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.Service.GetResult(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 结果解读
// @Description 调用 AI 接口生成已完成测评的文字解读
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评记录ID"
// @Success 200 {object} util.Response{data=model.NarrativeResult}
// @Failure 503 {object} util.Response "未配置结果解读"
// @Router /assessments/{id}/narrative [get]
func (c *AssessmentController) Narrative(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.Service.Narrative(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 刷新题库缓存
// @Description 清除单个测评的题库缓存，id 为 all 时清除全部
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评定义ID或all"
// @Success 200 {object} util.Response
// @Router /admin/definitions/{id}/invalidate [post]
func (c *AssessmentController) InvalidateBank(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "all" {
		id = ""
	}
	c.Service.Banks.Invalidate(id)
	util.Success(ctx, gin.H{"invalidated": ctx.Param("id")})
}

// @Summary 清理超时测评
// @Description 将超时未完成的测评标记为已放弃
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /admin/assessments/abandon-stale [post]
func (c *AssessmentController) AbandonStale(ctx *gin.Context) {
	n, err := c.Service.AbandonStale(ctx.Request.Context())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"abandoned": n})
}

// @Summary 结果分布
// @Description 按主要风格统计已保存的结果
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评定义ID"
// @Success 200 {object} util.Response{data=model.DefinitionStats}
// @Failure 404 {object} util.Response
// @Router /admin/definitions/{id}/stats [get]
func (c *AssessmentController) DefinitionStats(ctx *gin.Context) {
	stats, err := c.Service.DefinitionStats(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
