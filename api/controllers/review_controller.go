/*
 * @module api/controllers/review_controller
 * @description 评审摘要控制器，对校验产物目录生成人读评审视图（JSON 或 Markdown）
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow HTTP请求 -> 产物目录解析 -> 摘要聚合 -> 响应返回
 * @rules 摘要是产物文件的只读视图，接口不修改任何产物
 * @dependencies service/review
 * @refs api/routes.go
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/render"

	"datacheck-service/service/review"
)

// ReviewController 评审摘要控制器
type ReviewController struct{}

// NewReviewController 创建评审摘要控制器
func NewReviewController() *ReviewController {
	return &ReviewController{}
}

// GetSummary 获取评审摘要
// @Summary 获取评审摘要
// @Description 聚合产物目录下的校验输出和lint报告，返回总体结论、状态计数、失败样本和波动异常
// @Tags 评审
// @Produce json
// @Param output_dir query string true "产物目录路径"
// @Success 200 {object} APIResponse{data=review.ReviewSummary} "查询成功"
// @Failure 400 {object} APIResponse "产物目录缺失或校验输出不存在"
// @Router /review/summary [get]
func (c *ReviewController) GetSummary(w http.ResponseWriter, r *http.Request) {
	outputDir := r.URL.Query().Get("output_dir")
	if outputDir == "" {
		render.JSON(w, r, BadRequestResponse("output_dir不能为空", nil))
		return
	}
	summary, err := review.BuildSummary(outputDir)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("评审摘要生成失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", summary))
}

// GetMarkdown 获取 Markdown 格式的评审报告
// @Summary 获取Markdown评审报告
// @Description 以text/markdown返回评审摘要的人读版本，可直接附在导入PR上
// @Tags 评审
// @Produce plain
// @Param output_dir query string true "产物目录路径"
// @Success 200 {string} string "Markdown报告"
// @Failure 400 {object} APIResponse "产物目录缺失或校验输出不存在"
// @Router /review/markdown [get]
func (c *ReviewController) GetMarkdown(w http.ResponseWriter, r *http.Request) {
	outputDir := r.URL.Query().Get("output_dir")
	if outputDir == "" {
		render.JSON(w, r, BadRequestResponse("output_dir不能为空", nil))
		return
	}
	summary, err := review.BuildSummary(outputDir)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("评审摘要生成失败", err))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(summary.RenderMarkdown()))
}
