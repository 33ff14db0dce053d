/*
 * @module api/controllers/validation_controller
 * @description 校验运行控制器，提供触发校验、运行台账查询、warn_only 后处理
 *              和周期任务管理等接口
 * @architecture 分层架构 - 控制器层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow HTTP请求 -> 参数验证 -> 流水线/存储调用 -> 响应返回
 * @rules
 *   - 规则失败不是HTTP错误：触发接口执行完成即返回200，结论放在响应体
 *   - 同一数据集并发触发时返回409，由分布式锁保证互斥
 *   - 台账类接口在数据库未配置时返回503
 * @dependencies service/pipeline, service/database, service/validation, service/distributed_lock
 * @refs api/routes.go
 */

package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"datacheck-service/service"
	"datacheck-service/service/csvcheck"
	"datacheck-service/service/database"
	"datacheck-service/service/distributed_lock"
	"datacheck-service/service/importtool"
	"datacheck-service/service/models"
	"datacheck-service/service/pipeline"
	"datacheck-service/service/validation"
)

// runLockTTL 同步触发的运行锁有效期，与调度器保持一致
const runLockTTL = 10 * time.Minute

// ValidationController 校验运行控制器
type ValidationController struct {
	pipeline      *pipeline.Service
	runStore      *database.RunStore
	scheduleStore *database.ScheduleStore
}

// NewValidationController 创建校验运行控制器
func NewValidationController() *ValidationController {
	return &ValidationController{
		pipeline:      service.GlobalPipeline,
		runStore:      service.GlobalRunStore,
		scheduleStore: service.GlobalScheduleStore,
	}
}

// RunCreateRequest 触发校验请求
type RunCreateRequest struct {
	Dataset      string   `json:"dataset" example:"us_census_pep"`
	ConfigPath   string   `json:"config_path" binding:"required" example:"/data/configs/rules.json"`
	OutputDir    string   `json:"output_dir" binding:"required" example:"/data/output/us_census_pep"`
	WarnOnlyPath string   `json:"warn_only_path,omitempty" example:"/data/configs/warn_only.json"`
	DifferOutput *string  `json:"differ_output,omitempty"`
	IncludeRules []string `json:"include_rules,omitempty"`
	ExcludeRules []string `json:"exclude_rules,omitempty"`
}

// RunCreateResponse 触发校验响应
type RunCreateResponse struct {
	RunID          string                    `json:"run_id"`
	ExitStatus     int                       `json:"exit_status"`
	HasBlockers    bool                      `json:"has_blockers"`
	PartialOutput  bool                      `json:"partial_output"`
	ConvertedCount int                       `json:"converted_count"`
	Results        []models.ValidationResult `json:"results"`
}

// CreateRun 触发一次校验
// @Summary 触发校验运行
// @Description 按规则配置对产物目录执行一次完整校验，规则失败体现在exit_status而非HTTP状态码
// @Tags 校验运行
// @Accept json
// @Produce json
// @Param run body RunCreateRequest true "校验运行参数"
// @Success 200 {object} APIResponse{data=RunCreateResponse} "执行完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 409 {object} APIResponse "该数据集的校验正在运行中"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /validation/runs [post]
func (c *ValidationController) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req RunCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}
	if req.ConfigPath == "" || req.OutputDir == "" {
		render.JSON(w, r, BadRequestResponse("config_path和output_dir不能为空", nil))
		return
	}

	artifacts := importtool.ResolveArtifacts(req.OutputDir)
	sourceCSV := ""
	if report, err := importtool.LoadLintReport(artifacts.LintReport); err == nil && report != nil {
		sourceCSV = importtool.FindSourceCSV(report)
	}

	request := pipeline.Request{
		Dataset:          req.Dataset,
		ConfigPath:       req.ConfigPath,
		OutputPath:       artifacts.ValidationOutput,
		StatsSummaryPath: artifacts.StatsSummary,
		LintReportPath:   artifacts.LintReport,
		SourceCSVPath:    sourceCSV,
		DifferOutput:     req.DifferOutput,
		WarnOnlyPath:     req.WarnOnlyPath,
		IncludeRules:     req.IncludeRules,
		ExcludeRules:     req.ExcludeRules,
	}

	var result *pipeline.Result
	var err error
	if service.GlobalLockExecutor != nil && req.Dataset != "" {
		// 同一数据集的运行（含调度触发）互斥，锁被占用时直接报冲突
		err = service.GlobalLockExecutor.ExecuteWithLock(r.Context(), req.Dataset, runLockTTL, func() error {
			result, err = c.pipeline.Execute(r.Context(), request)
			return err
		})
	} else {
		result, err = c.pipeline.Execute(r.Context(), request)
	}
	if err != nil {
		if errors.Is(err, distributed_lock.ErrRunInProgress) {
			render.JSON(w, r, ConflictResponse("该数据集的校验正在运行中"))
			return
		}
		render.JSON(w, r, InternalErrorResponse("校验执行失败", err))
		return
	}

	render.JSON(w, r, SuccessResponse("校验执行完成", RunCreateResponse{
		RunID:          result.RunID,
		ExitStatus:     result.ExitStatus,
		HasBlockers:    result.HasBlockers,
		PartialOutput:  result.Outcome.PartialOutput,
		ConvertedCount: result.ConvertedCount,
		Results:        result.Outcome.Results,
	}))
}

// ListRuns 查询运行台账
// @Summary 查询运行台账
// @Description 分页查询历史校验运行记录，支持按数据集过滤
// @Tags 校验运行
// @Produce json
// @Param dataset query string false "数据集名称"
// @Param page query int false "页码，默认1"
// @Param size query int false "页大小，默认10"
// @Success 200 {object} PaginatedResponse{data=[]models.ValidationRun} "查询成功"
// @Failure 503 {object} APIResponse "数据库未配置"
// @Router /validation/runs [get]
func (c *ValidationController) ListRuns(w http.ResponseWriter, r *http.Request) {
	if c.runStore == nil {
		render.JSON(w, r, ServiceUnavailableResponse("运行台账依赖数据库，当前未配置"))
		return
	}
	page := parseIntQuery(r, "page", 1)
	size := parseIntQuery(r, "size", 10)
	dataset := r.URL.Query().Get("dataset")

	runs, total, err := c.runStore.ListRuns(dataset, size, (page-1)*size)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("查询运行台账失败", err))
		return
	}
	render.JSON(w, r, &PaginatedResponse{
		Status: 0,
		Msg:    "查询成功",
		Data:   runs,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetRun 查询单次运行详情
// @Summary 查询运行详情
// @Tags 校验运行
// @Produce json
// @Param id path string true "运行ID"
// @Success 200 {object} APIResponse{data=models.ValidationRun} "查询成功"
// @Failure 404 {object} APIResponse "运行记录不存在"
// @Router /validation/runs/{id} [get]
func (c *ValidationController) GetRun(w http.ResponseWriter, r *http.Request) {
	if c.runStore == nil {
		render.JSON(w, r, ServiceUnavailableResponse("运行台账依赖数据库，当前未配置"))
		return
	}
	id := chi.URLParam(r, "id")
	run, err := c.runStore.GetRun(id)
	if err != nil {
		render.JSON(w, r, NotFoundResponse("运行记录不存在"))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", run))
}

// WarnOnlyApplyRequest warn_only 后处理请求
type WarnOnlyApplyRequest struct {
	OutputPath   string `json:"output_path" binding:"required"`
	WarnOnlyPath string `json:"warn_only_path" binding:"required"`
	Dataset      string `json:"dataset" binding:"required"`
}

// WarnOnlyApplyResponse warn_only 后处理响应
type WarnOnlyApplyResponse struct {
	ConvertedCount int  `json:"converted_count"`
	HasBlockers    bool `json:"has_blockers"`
}

// ApplyWarnOnly 对已有校验输出执行 warn_only 降级
// @Summary 应用warn_only降级
// @Description 将命中数据集warn_only配置的FAILED结果降级为WARNING，并返回剩余阻断情况
// @Tags 校验运行
// @Accept json
// @Produce json
// @Param request body WarnOnlyApplyRequest true "降级参数"
// @Success 200 {object} APIResponse{data=WarnOnlyApplyResponse} "处理完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /validation/warn-only/apply [post]
func (c *ValidationController) ApplyWarnOnly(w http.ResponseWriter, r *http.Request) {
	var req WarnOnlyApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}
	if req.OutputPath == "" || req.WarnOnlyPath == "" || req.Dataset == "" {
		render.JSON(w, r, BadRequestResponse("output_path、warn_only_path和dataset不能为空", nil))
		return
	}

	warnOnly, err := validation.LoadWarnOnlyConfig(req.WarnOnlyPath)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("warn_only配置加载失败", err))
		return
	}
	converted, err := validation.ApplyWarnOnly(req.OutputPath, warnOnly, req.Dataset)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("warn_only降级失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("处理完成", WarnOnlyApplyResponse{
		ConvertedCount: converted,
		HasBlockers:    validation.HasBlockers(req.OutputPath),
	}))
}

// ConfigValidateRequest 配置校验请求
type ConfigValidateRequest struct {
	ConfigPath string `json:"config_path" binding:"required"`
}

// ValidateConfig 校验规则配置文件形状
// @Summary 校验规则配置
// @Description 检查规则配置文件的结构问题，返回全部问题列表，空列表表示通过
// @Tags 规则配置
// @Accept json
// @Produce json
// @Param request body ConfigValidateRequest true "配置路径"
// @Success 200 {object} APIResponse{data=[]string} "检查完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /validation/config/validate [post]
func (c *ValidationController) ValidateConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}
	problems, err := validation.ValidateConfigFile(req.ConfigPath)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("配置文件读取失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("检查完成", problems))
}

// CSVQualityRequest CSV质量检查请求
type CSVQualityRequest struct {
	CSVPath string `json:"csv_path" binding:"required"`
}

// CheckCSVQuality 对 CSV 文件执行质量顾问检查
// @Summary CSV质量检查
// @Description 检查重复列、空列、重复行和非数值Value，结果仅供参考，不阻断入库
// @Tags 质量顾问
// @Accept json
// @Produce json
// @Param request body CSVQualityRequest true "CSV路径"
// @Success 200 {object} APIResponse{data=[]models.AdvisoryIssue} "检查完成"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /validation/csv-quality [post]
func (c *ValidationController) CheckCSVQuality(w http.ResponseWriter, r *http.Request) {
	var req CSVQualityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}
	issues, err := csvcheck.ValidateCSVQuality(req.CSVPath)
	if err != nil {
		render.JSON(w, r, BadRequestResponse("CSV读取失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("检查完成", issues))
}

// ScheduleUpsertRequest 周期任务登记请求
type ScheduleUpsertRequest struct {
	Dataset        string `json:"dataset" binding:"required" example:"us_census_pep"`
	CronExpression string `json:"cron_expression" binding:"required" example:"0 0 2 * * *"`
	ConfigPath     string `json:"config_path" binding:"required"`
	OutputDir      string `json:"output_dir" binding:"required"`
	IsEnabled      *bool  `json:"is_enabled,omitempty"`
}

// UpsertSchedule 登记或更新周期校验任务
// @Summary 登记周期校验任务
// @Description 按数据集登记周期重校验，已存在时更新配置并重载调度器
// @Tags 周期任务
// @Accept json
// @Produce json
// @Param schedule body ScheduleUpsertRequest true "周期任务配置"
// @Success 200 {object} APIResponse{data=models.ScheduledValidation} "登记成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 503 {object} APIResponse "数据库未配置"
// @Router /validation/schedules [post]
func (c *ValidationController) UpsertSchedule(w http.ResponseWriter, r *http.Request) {
	if c.scheduleStore == nil {
		render.JSON(w, r, ServiceUnavailableResponse("周期任务依赖数据库，当前未配置"))
		return
	}
	var req ScheduleUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.JSON(w, r, BadRequestResponse("请求参数解析失败", err))
		return
	}
	if req.Dataset == "" || req.CronExpression == "" || req.ConfigPath == "" || req.OutputDir == "" {
		render.JSON(w, r, BadRequestResponse("dataset、cron_expression、config_path和output_dir不能为空", nil))
		return
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	schedule := &models.ScheduledValidation{
		ID:             uuid.New().String(),
		Dataset:        req.Dataset,
		CronExpression: req.CronExpression,
		ConfigPath:     filepath.Clean(req.ConfigPath),
		OutputDir:      filepath.Clean(req.OutputDir),
		IsEnabled:      enabled,
	}
	if err := c.scheduleStore.Upsert(schedule); err != nil {
		render.JSON(w, r, InternalErrorResponse("登记周期任务失败", err))
		return
	}
	if service.GlobalScheduler != nil {
		if err := service.GlobalScheduler.Reload(); err != nil {
			render.JSON(w, r, InternalErrorResponse("重载调度器失败", err))
			return
		}
	}
	render.JSON(w, r, SuccessResponse("登记成功", schedule))
}

// ListSchedules 查询全部周期任务
// @Summary 查询周期任务列表
// @Tags 周期任务
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.ScheduledValidation} "查询成功"
// @Failure 503 {object} APIResponse "数据库未配置"
// @Router /validation/schedules [get]
func (c *ValidationController) ListSchedules(w http.ResponseWriter, r *http.Request) {
	if c.scheduleStore == nil {
		render.JSON(w, r, ServiceUnavailableResponse("周期任务依赖数据库，当前未配置"))
		return
	}
	schedules, err := c.scheduleStore.ListAll()
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("查询周期任务失败", err))
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", schedules))
}

// DeleteSchedule 删除周期任务
// @Summary 删除周期校验任务
// @Tags 周期任务
// @Produce json
// @Param dataset path string true "数据集名称"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 503 {object} APIResponse "数据库未配置"
// @Router /validation/schedules/{dataset} [delete]
func (c *ValidationController) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if c.scheduleStore == nil {
		render.JSON(w, r, ServiceUnavailableResponse("周期任务依赖数据库，当前未配置"))
		return
	}
	dataset := chi.URLParam(r, "dataset")
	if err := c.scheduleStore.Delete(dataset); err != nil {
		render.JSON(w, r, InternalErrorResponse("删除周期任务失败", err))
		return
	}
	if service.GlobalScheduler != nil {
		if err := service.GlobalScheduler.Reload(); err != nil {
			render.JSON(w, r, InternalErrorResponse("重载调度器失败", err))
			return
		}
	}
	render.JSON(w, r, SuccessResponse("删除成功", nil))
}

// parseIntQuery 解析整型查询参数，缺省或非法时返回默认值
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
