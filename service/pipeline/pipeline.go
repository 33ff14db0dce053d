/*
 * @module service/pipeline/pipeline
 * @description 校验流水线服务：串起配置加载、规则编排、warn_only 后处理、
 *              运行台账落库和完成通知，是 CLI、API 和调度器共用的执行入口
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/import_validation_req.md
 * @stateFlow 配置加载 -> 编排运行 -> warn_only 降级 -> 台账落库 -> 完成通知
 * @rules
 *   - 台账落库和通知都是尽力而为，失败只记日志，不改变退出码
 *   - warn_only 转换数非零时必须对操作者可见
 * @dependencies datacheck-service/service/{validation,importtool,database,notifier,models}
 * @refs service/scheduler/validation_scheduler.go, cmd/datacheck
 */

package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"datacheck-service/service/database"
	"datacheck-service/service/importtool"
	"datacheck-service/service/models"
	"datacheck-service/service/notifier"
	"datacheck-service/service/validation"
)

// Request 一次流水线执行的全部输入
type Request struct {
	Dataset          string
	ConfigPath       string
	OutputPath       string
	StatsSummaryPath string
	LintReportPath   string
	SourceCSVPath    string
	DifferOutput     *string
	WarnOnlyPath     string
	// IncludeRules/ExcludeRules 规则ID过滤，至多提供一侧
	IncludeRules []string
	ExcludeRules []string
}

// Result 一次流水线执行的结论
type Result struct {
	RunID          string
	Outcome        *validation.RunOutcome
	ConvertedCount int
	HasBlockers    bool
	ExitStatus     int
}

// Service 校验流水线
type Service struct {
	orchestrator *validation.Orchestrator
	runStore     *database.RunStore     // 可为 nil：无数据库时只出文件产物
	notifier     *notifier.KafkaNotifier // 可为 nil：通知是可选能力
}

// NewService 创建流水线服务。runStore/notify 允许为 nil
func NewService(orchestrator *validation.Orchestrator, runStore *database.RunStore, notify *notifier.KafkaNotifier) *Service {
	return &Service{
		orchestrator: orchestrator,
		runStore:     runStore,
		notifier:     notify,
	}
}

// Execute 执行一次完整校验。配置文件缺失等用法错误通过 error 返回，
// 规则失败不是 error，体现在 Result.ExitStatus
func (s *Service) Execute(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()

	config, err := validation.LoadRuleConfig(req.ConfigPath)
	if err != nil {
		return nil, err
	}
	if len(req.IncludeRules) > 0 || len(req.ExcludeRules) > 0 {
		config, err = validation.FilterConfig(config, req.IncludeRules, req.ExcludeRules)
		if err != nil {
			return nil, err
		}
	}

	outcome, err := s.orchestrator.Run(ctx, config, validation.RunInputs{
		OutputPath:       req.OutputPath,
		StatsSummaryPath: req.StatsSummaryPath,
		LintReportPath:   req.LintReportPath,
		SourceCSVPath:    req.SourceCSVPath,
		DifferOutput:     req.DifferOutput,
	})
	if err != nil {
		return nil, err
	}

	converted := 0
	if req.WarnOnlyPath != "" && req.Dataset != "" {
		warnOnly, err := validation.LoadWarnOnlyConfig(req.WarnOnlyPath)
		if err != nil {
			return nil, err
		}
		converted, err = validation.ApplyWarnOnly(req.OutputPath, warnOnly, req.Dataset)
		if err != nil {
			return nil, err
		}
	}

	hasBlockers := validation.HasBlockers(req.OutputPath)
	exitStatus := validation.ExitOK
	if outcome.PartialOutput || hasBlockers {
		exitStatus = validation.ExitFailed
	}

	result := &Result{
		RunID:          uuid.New().String(),
		Outcome:        outcome,
		ConvertedCount: converted,
		HasBlockers:    hasBlockers,
		ExitStatus:     exitStatus,
	}

	s.recordRun(req, result, time.Since(startTime))
	s.publishCompletion(ctx, req, result)
	return result, nil
}

// recordRun 运行台账落库，尽力而为
func (s *Service) recordRun(req Request, result *Result, duration time.Duration) {
	if s.runStore == nil {
		return
	}
	counts := countByStatus(result.Outcome.Results)
	overall := "PASS"
	if result.ExitStatus != validation.ExitOK {
		overall = "FAIL"
	}
	run := &models.ValidationRun{
		ID:             result.RunID,
		Dataset:        req.Dataset,
		Overall:        overall,
		BlockerCount:   counts[models.StatusFailed],
		WarningCount:   counts[models.StatusWarning] + result.ConvertedCount,
		PassedCount:    counts[models.StatusPassed],
		ConvertedCount: result.ConvertedCount,
		Results:        resultsAsJSONB(result.Outcome.Results),
		ExitCode:       result.ExitStatus,
		Duration:       duration,
	}
	if err := s.runStore.SaveRun(run); err != nil {
		slog.Error("运行台账落库失败", "dataset", req.Dataset, "error", err)
	}
}

// publishCompletion 发布运行完成事件，尽力而为
func (s *Service) publishCompletion(ctx context.Context, req Request, result *Result) {
	if s.notifier == nil {
		return
	}
	counts := countByStatus(result.Outcome.Results)
	overall := "PASS"
	if result.ExitStatus != validation.ExitOK {
		overall = "FAIL"
	}
	event := &notifier.RunCompletedEvent{
		RunID:          result.RunID,
		Dataset:        req.Dataset,
		Overall:        overall,
		BlockerCount:   counts[models.StatusFailed],
		WarningCount:   counts[models.StatusWarning],
		ConvertedCount: result.ConvertedCount,
		ExitCode:       result.ExitStatus,
		OutputDir:      req.OutputPath,
	}
	if err := s.notifier.PublishRunCompleted(ctx, event); err != nil {
		slog.Error("发布运行完成事件失败", "dataset", req.Dataset, "error", err)
	}
}

func countByStatus(results []models.ValidationResult) map[string]int {
	counts := make(map[string]int)
	for i := range results {
		counts[results[i].Status]++
	}
	return counts
}

func resultsAsJSONB(results []models.ValidationResult) models.JSONBArray {
	out := make(models.JSONBArray, 0, len(results))
	for i := range results {
		out = append(out, models.JSONB{
			"validation_name":   results[i].ValidationName,
			"status":            results[i].Status,
			"message":           results[i].Message,
			"details":           results[i].Details,
			"validation_params": results[i].ValidationParams,
		})
	}
	return out
}

// BuildDefaultOrchestrator 组装默认编排器：本地注册表 + 环境变量外部运行器。
// requireExternal 为 true 且 DATA_REPO 未配置时返回错误
func BuildDefaultOrchestrator(requireExternal bool) (*validation.Orchestrator, error) {
	var external validation.ExternalRunner
	runner, err := importtool.NewToolRunnerFromEnv()
	if err != nil {
		if requireExternal {
			return nil, err
		}
		slog.Warn("外部工具未配置，仅本地规则可用", "reason", err)
	} else {
		external = runner
	}
	return validation.NewOrchestrator(
		validation.NewRegistry(nil),
		external,
		importtool.LoadLintReport,
	), nil
}

// ExitStatusForError 用法错误（配置缺失、环境未就绪）统一映射为退出码 2
func ExitStatusForError(err error) int {
	if err == nil {
		return validation.ExitOK
	}
	return validation.ExitUsage
}
